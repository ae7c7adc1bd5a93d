// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package rpc converts request and reply metadata between the legacy wire
// encoding, where metadata rides as ordinary fields on the command or reply
// document and as bits in the query-flags word, and the modern encoding,
// where metadata travels in a dedicated document alongside the command.
//
// Metadata consists of information independent of any particular command:
//
//	Request/Reply | legacy location                   | metadata document
//	--------------------------------------------------------------------------
//	Request       | the SecondaryOK flag bit          | $secondaryOk
//	Request       | $readPreference field of command  | $readPreference
//	Request       | $impersonatedUsers on command     | $impersonatedUsers
//	Request       | $impersonatedRoles on command     | $impersonatedRoles
//	Request       | maxTimeMS on command              | $maxTimeMS
//	Reply         | gleStats field on command reply   | $gleStats
//
// The four converters are pure functions: inputs are never mutated, fields
// outside the table are copied through unchanged and in order, and any error
// discards the partially built output entirely.
package rpc

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/drunklite/mongo/wiremessage"
)

// Metadata document keys. These are wire-exact and case-sensitive.
const (
	SecondaryOKKey       = "$secondaryOk"
	ReadPreferenceKey    = "$readPreference"
	ImpersonatedUsersKey = "$impersonatedUsers"
	ImpersonatedRolesKey = "$impersonatedRoles"
	MaxTimeMSKey         = "$maxTimeMS"
	GLEStatsKey          = "$gleStats"
)

// legacySecondaryOKField is the boolean command-field spelling of the
// secondary-read concept. The SecondaryOK flag bit is the canonical legacy
// location; the field spelling is accepted on upconvert only.
const legacySecondaryOKField = "slaveOk"

// metadataField maps one metadata concept between its location in the
// legacy document and its key in the metadata document.
type metadataField struct {
	legacyKey   string
	metadataKey string
	kinds       []bsontype.Type
}

// accepts reports whether t is one of the field's accepted value kinds.
func (f metadataField) accepts(t bsontype.Type) bool {
	for _, k := range f.kinds {
		if k == t {
			return true
		}
	}
	return false
}

// secondaryOKField describes the secondary-read concept for kind checking.
// It is not part of requestFields because its legacy location is the flag
// bit, not a relocated document field.
var secondaryOKField = metadataField{
	legacyKey:   legacySecondaryOKField,
	metadataKey: SecondaryOKKey,
	kinds:       []bsontype.Type{bsontype.Boolean},
}

// requestFields is the request-direction mapping table. All four converters
// and the context bridge consult it, so adding a concept is a single change
// here.
var requestFields = []metadataField{
	{legacyKey: "$readPreference", metadataKey: ReadPreferenceKey, kinds: []bsontype.Type{bsontype.EmbeddedDocument}},
	{legacyKey: "$impersonatedUsers", metadataKey: ImpersonatedUsersKey, kinds: []bsontype.Type{bsontype.Array}},
	{legacyKey: "$impersonatedRoles", metadataKey: ImpersonatedRolesKey, kinds: []bsontype.Type{bsontype.Array}},
	{legacyKey: "maxTimeMS", metadataKey: MaxTimeMSKey, kinds: []bsontype.Type{bsontype.Int32, bsontype.Int64, bsontype.Double}},
}

// replyFields is the reply-direction mapping table.
var replyFields = []metadataField{
	{legacyKey: "gleStats", metadataKey: GLEStatsKey, kinds: []bsontype.Type{bsontype.EmbeddedDocument}},
}

func fieldByLegacyKey(fields []metadataField, key string) (metadataField, bool) {
	for _, f := range fields {
		if f.legacyKey == key {
			return f, true
		}
	}
	return metadataField{}, false
}

func fieldByMetadataKey(fields []metadataField, key string) (metadataField, bool) {
	for _, f := range fields {
		if f.metadataKey == key {
			return f, true
		}
	}
	return metadataField{}, false
}

// CommandAndMetadata is a command document and its corresponding metadata
// document.
type CommandAndMetadata struct {
	Command  bsoncore.Document
	Metadata bsoncore.Document
}

// LegacyCommandAndFlags is a legacy command document and its query-flags
// word. The legacy command may still contain metadata fields, so it cannot
// safely be handed to command execution.
type LegacyCommandAndFlags struct {
	Command bsoncore.Document
	Flags   wiremessage.QueryFlag
}

// ReplyAndMetadata is a command reply and its corresponding metadata
// document.
type ReplyAndMetadata struct {
	Reply    bsoncore.Document
	Metadata bsoncore.Document
}

// MakeEmptyMetadata returns an empty metadata document.
func MakeEmptyMetadata() bsoncore.Document {
	return bsoncore.NewDocumentBuilder().Build()
}

// UpconvertRequestMetadata parses the metadata fields out of a legacy
// command document and query-flags word and moves them into a new metadata
// document. Fields outside the mapping table are copied to the returned
// command in their original order; absence of a mapped field is a no-op.
func UpconvertRequestMetadata(legacyCmd bsoncore.Document, flags wiremessage.QueryFlag) (CommandAndMetadata, error) {
	elems, err := legacyCmd.Elements()
	if err != nil {
		return CommandAndMetadata{}, errors.Wrap(err, "unable to iterate legacy command document")
	}

	idx, cmd := bsoncore.AppendDocumentStart(nil)
	meta := bsoncore.NewDocumentBuilder()
	secondaryOK := flags&wiremessage.SecondaryOK == wiremessage.SecondaryOK

	for _, elem := range elems {
		key := elem.Key()
		val := elem.Value()

		if key == legacySecondaryOKField {
			ok, isBool := val.BooleanOK()
			if !isBool {
				return CommandAndMetadata{}, MalformedMetadataFieldError{
					Field:    key,
					Location: locationCommand,
					Expected: secondaryOKField.kinds,
					Actual:   val.Type,
				}
			}
			secondaryOK = secondaryOK || ok
			continue
		}

		field, mapped := fieldByLegacyKey(requestFields, key)
		if !mapped {
			cmd = bsoncore.AppendValueElement(cmd, key, val)
			continue
		}
		if !field.accepts(val.Type) {
			return CommandAndMetadata{}, MalformedMetadataFieldError{
				Field:    key,
				Location: locationCommand,
				Expected: field.kinds,
				Actual:   val.Type,
			}
		}
		meta.AppendValue(field.metadataKey, val)
	}

	if secondaryOK {
		meta.AppendBoolean(SecondaryOKKey, true)
	}

	cmd, err = bsoncore.AppendDocumentEnd(cmd, idx)
	if err != nil {
		return CommandAndMetadata{}, errors.Wrap(err, "unable to build stripped command document")
	}
	return CommandAndMetadata{Command: cmd, Metadata: meta.Build()}, nil
}

// DownconvertRequestMetadata folds a metadata document back into a command
// document and query-flags word. $secondaryOk true sets the SecondaryOK bit;
// every other mapped field is appended to the legacy command at its legacy
// key. A metadata key outside the table has no legacy location and is an
// UnknownMetadataFieldError rather than being silently dropped.
func DownconvertRequestMetadata(cmd, metadata bsoncore.Document) (LegacyCommandAndFlags, error) {
	cmdElems, err := cmd.Elements()
	if err != nil {
		return LegacyCommandAndFlags{}, errors.Wrap(err, "unable to iterate command document")
	}
	metaElems, err := metadata.Elements()
	if err != nil {
		return LegacyCommandAndFlags{}, errors.Wrap(err, "unable to iterate metadata document")
	}

	idx, legacy := bsoncore.AppendDocumentStart(nil)
	for _, elem := range cmdElems {
		legacy = bsoncore.AppendValueElement(legacy, elem.Key(), elem.Value())
	}

	var flags wiremessage.QueryFlag
	for _, elem := range metaElems {
		key := elem.Key()
		val := elem.Value()

		if key == SecondaryOKKey {
			ok, isBool := val.BooleanOK()
			if !isBool {
				return LegacyCommandAndFlags{}, MalformedMetadataFieldError{
					Field:    key,
					Location: locationMetadata,
					Expected: secondaryOKField.kinds,
					Actual:   val.Type,
				}
			}
			if ok {
				flags |= wiremessage.SecondaryOK
			}
			continue
		}

		field, mapped := fieldByMetadataKey(requestFields, key)
		if !mapped {
			return LegacyCommandAndFlags{}, UnknownMetadataFieldError{Key: key}
		}
		if !field.accepts(val.Type) {
			return LegacyCommandAndFlags{}, MalformedMetadataFieldError{
				Field:    key,
				Location: locationMetadata,
				Expected: field.kinds,
				Actual:   val.Type,
			}
		}
		legacy = bsoncore.AppendValueElement(legacy, field.legacyKey, val)
	}

	legacy, err = bsoncore.AppendDocumentEnd(legacy, idx)
	if err != nil {
		return LegacyCommandAndFlags{}, errors.Wrap(err, "unable to build legacy command document")
	}
	return LegacyCommandAndFlags{Command: legacy, Flags: flags}, nil
}

// UpconvertReplyMetadata strips the metadata fields from a legacy command
// reply and moves them into a new metadata document.
func UpconvertReplyMetadata(legacyReply bsoncore.Document) (ReplyAndMetadata, error) {
	elems, err := legacyReply.Elements()
	if err != nil {
		return ReplyAndMetadata{}, errors.Wrap(err, "unable to iterate legacy reply document")
	}

	idx, reply := bsoncore.AppendDocumentStart(nil)
	meta := bsoncore.NewDocumentBuilder()

	for _, elem := range elems {
		key := elem.Key()
		val := elem.Value()

		field, mapped := fieldByLegacyKey(replyFields, key)
		if !mapped {
			reply = bsoncore.AppendValueElement(reply, key, val)
			continue
		}
		if !field.accepts(val.Type) {
			return ReplyAndMetadata{}, MalformedMetadataFieldError{
				Field:    key,
				Location: locationReply,
				Expected: field.kinds,
				Actual:   val.Type,
			}
		}
		meta.AppendValue(field.metadataKey, val)
	}

	reply, err = bsoncore.AppendDocumentEnd(reply, idx)
	if err != nil {
		return ReplyAndMetadata{}, errors.Wrap(err, "unable to build stripped reply document")
	}
	return ReplyAndMetadata{Reply: reply, Metadata: meta.Build()}, nil
}

// DownconvertReplyMetadata folds a reply metadata document back into the
// reply, reconstructing the legacy reply document. There is no flags word on
// the reply side.
func DownconvertReplyMetadata(reply, metadata bsoncore.Document) (bsoncore.Document, error) {
	replyElems, err := reply.Elements()
	if err != nil {
		return nil, errors.Wrap(err, "unable to iterate reply document")
	}
	metaElems, err := metadata.Elements()
	if err != nil {
		return nil, errors.Wrap(err, "unable to iterate metadata document")
	}

	idx, legacy := bsoncore.AppendDocumentStart(nil)
	for _, elem := range replyElems {
		legacy = bsoncore.AppendValueElement(legacy, elem.Key(), elem.Value())
	}

	for _, elem := range metaElems {
		key := elem.Key()
		val := elem.Value()

		field, mapped := fieldByMetadataKey(replyFields, key)
		if !mapped {
			return nil, UnknownMetadataFieldError{Key: key}
		}
		if !field.accepts(val.Type) {
			return nil, MalformedMetadataFieldError{
				Field:    key,
				Location: locationMetadata,
				Expected: field.kinds,
				Actual:   val.Type,
			}
		}
		legacy = bsoncore.AppendValueElement(legacy, field.legacyKey, val)
	}

	legacy, err = bsoncore.AppendDocumentEnd(legacy, idx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to build legacy reply document")
	}
	return legacy, nil
}
