// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package rpc

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Locations a malformed metadata field can be reported against.
const (
	locationCommand  = "command document"
	locationMetadata = "metadata document"
	locationReply    = "reply document"
)

// MalformedMetadataFieldError occurs when a mapped metadata field is present
// with a value kind its mapping does not accept.
type MalformedMetadataFieldError struct {
	Field    string
	Location string
	Expected []bsontype.Type
	Actual   bsontype.Type
}

// Error implements the error interface.
func (e MalformedMetadataFieldError) Error() string {
	kinds := make([]string, 0, len(e.Expected))
	for _, k := range e.Expected {
		kinds = append(kinds, k.String())
	}
	return fmt.Sprintf("malformed metadata field %q in %s: expected %s, got %s",
		e.Field, e.Location, strings.Join(kinds, " or "), e.Actual.String())
}

// UnknownMetadataFieldError occurs when downconversion encounters a metadata
// key with no legacy location to carry it.
type UnknownMetadataFieldError struct {
	Key string
}

// Error implements the error interface.
func (e UnknownMetadataFieldError) Error() string {
	return fmt.Sprintf("metadata field %q has no legacy location", e.Key)
}

// HookError occurs when a registered hook reports failure. Index is the
// failing hook's position, in registration order, within the list named by
// Hook.
type HookError struct {
	Hook  string
	Index int
	Err   error
}

// Error implements the error interface.
func (e HookError) Error() string {
	return fmt.Sprintf("%s %d failed: %v", e.Hook, e.Index, e.Err)
}

// Unwrap returns the hook's own error.
func (e HookError) Unwrap() error { return e.Err }
