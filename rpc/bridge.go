// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package rpc

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/drunklite/mongo/optx"
	"github.com/drunklite/mongo/readpref"
)

// Hook list names used in HookError.
const (
	hookRequestWriter = "request metadata writer"
	hookRequestReader = "request metadata reader"
	hookReplyReader   = "reply metadata reader"
)

// ReadRequestMetadata applies the mapped request fields of metadata onto oc,
// then runs reg's request readers in registration order against the same
// document. The first reader failure aborts the sequence; attributes applied
// before the failure stay applied. Keys outside the mapping table are left
// to the readers and are not an error here.
func ReadRequestMetadata(oc *optx.OperationContext, metadata bsoncore.Document, reg *HookRegistry) error {
	elems, err := metadata.Elements()
	if err != nil {
		return errors.Wrap(err, "unable to iterate metadata document")
	}

	for _, elem := range elems {
		key := elem.Key()
		val := elem.Value()

		switch key {
		case SecondaryOKKey:
			ok, isBool := val.BooleanOK()
			if !isBool {
				return MalformedMetadataFieldError{
					Field:    key,
					Location: locationMetadata,
					Expected: secondaryOKField.kinds,
					Actual:   val.Type,
				}
			}
			if ok {
				oc.SetSecondaryOK(true)
			}
		case ReadPreferenceKey:
			field, _ := fieldByMetadataKey(requestFields, key)
			doc, isDoc := val.DocumentOK()
			if !isDoc {
				return MalformedMetadataFieldError{
					Field:    key,
					Location: locationMetadata,
					Expected: field.kinds,
					Actual:   val.Type,
				}
			}
			mode := readpref.PrimaryMode
			if modeVal, lerr := doc.LookupErr("mode"); lerr == nil {
				modeStr, isStr := modeVal.StringValueOK()
				if !isStr {
					return errors.Errorf("%s mode must be a string, got %s", key, modeVal.Type)
				}
				mode, err = readpref.ModeFromString(modeStr)
				if err != nil {
					return errors.Wrapf(err, "unable to parse %s", key)
				}
			}
			oc.SetReadPref(doc, mode)
			// A non-primary read preference grants the secondary-read
			// permission, matching the legacy slaveOk rule.
			if mode.SecondaryAllowed() {
				oc.SetSecondaryOK(true)
			}
		case MaxTimeMSKey:
			field, _ := fieldByMetadataKey(requestFields, key)
			if !field.accepts(val.Type) {
				return MalformedMetadataFieldError{
					Field:    key,
					Location: locationMetadata,
					Expected: field.kinds,
					Actual:   val.Type,
				}
			}
			ms, _ := val.AsInt64OK()
			oc.SetMaxTimeMS(ms)
		case ImpersonatedUsersKey:
			arr, isArr := val.ArrayOK()
			if !isArr {
				field, _ := fieldByMetadataKey(requestFields, key)
				return MalformedMetadataFieldError{
					Field:    key,
					Location: locationMetadata,
					Expected: field.kinds,
					Actual:   val.Type,
				}
			}
			oc.SetImpersonatedUsers(arr)
		case ImpersonatedRolesKey:
			arr, isArr := val.ArrayOK()
			if !isArr {
				field, _ := fieldByMetadataKey(requestFields, key)
				return MalformedMetadataFieldError{
					Field:    key,
					Location: locationMetadata,
					Expected: field.kinds,
					Actual:   val.Type,
				}
			}
			oc.SetImpersonatedRoles(arr)
		}
	}

	if reg == nil {
		return nil
	}
	for i, read := range reg.requestReaders {
		if err := read(metadata); err != nil {
			return HookError{Hook: hookRequestReader, Index: i, Err: err}
		}
	}
	return nil
}

// WriteRequestMetadata serializes oc's attributes into builder, then runs
// reg's request writers in registration order against the same builder. The
// first writer failure aborts the sequence and is returned; fields written
// by earlier writers remain in the builder, as builders are append-only and
// not transactional.
func WriteRequestMetadata(oc *optx.OperationContext, builder *bsoncore.DocumentBuilder, reg *HookRegistry) error {
	if oc.SecondaryOK() {
		builder.AppendBoolean(SecondaryOKKey, true)
	}
	if rp := oc.ReadPref(); len(rp) > 0 {
		builder.AppendDocument(ReadPreferenceKey, rp)
	}
	if users := oc.ImpersonatedUsers(); len(users) > 0 {
		builder.AppendArray(ImpersonatedUsersKey, users)
	}
	if roles := oc.ImpersonatedRoles(); len(roles) > 0 {
		builder.AppendArray(ImpersonatedRolesKey, roles)
	}
	if ms := oc.MaxTimeMS(); ms > 0 {
		builder.AppendInt64(MaxTimeMSKey, ms)
	}

	if reg == nil {
		return nil
	}
	for i, write := range reg.requestWriters {
		if err := write(builder); err != nil {
			return HookError{Hook: hookRequestWriter, Index: i, Err: err}
		}
	}
	return nil
}

// ReadReplyMetadata runs reg's reply readers in registration order against a
// reply's metadata document. addr is the address of the server that sent the
// reply. The first reader failure aborts the sequence.
func ReadReplyMetadata(metadata bsoncore.Document, addr string, reg *HookRegistry) error {
	if reg == nil {
		return nil
	}
	for i, read := range reg.replyReaders {
		if err := read(metadata, addr); err != nil {
			return HookError{Hook: hookReplyReader, Index: i, Err: err}
		}
	}
	return nil
}
