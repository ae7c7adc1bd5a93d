// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package optx provides the per-call operation context that request
// metadata is projected onto and serialized from.
package optx

import (
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/drunklite/mongo/readpref"
)

// OperationContext holds the call-scoped request attributes mirrored by the
// request metadata document. A context belongs to exactly one in-flight call
// and must not be shared between goroutines; contexts of distinct calls are
// fully independent.
type OperationContext struct {
	secondaryOK       bool
	readPref          bsoncore.Document
	readPrefMode      readpref.Mode
	maxTimeMS         int64
	impersonatedUsers bsoncore.Array
	impersonatedRoles bsoncore.Array
}

// New returns an OperationContext with no attributes set.
func New() *OperationContext {
	return &OperationContext{}
}

// SecondaryOK returns whether the call may execute against a non-primary.
func (oc *OperationContext) SecondaryOK() bool {
	return oc.secondaryOK
}

// SetSecondaryOK sets whether the call may execute against a non-primary.
func (oc *OperationContext) SetSecondaryOK(secondaryOK bool) {
	oc.secondaryOK = secondaryOK
}

// ReadPref returns the raw read preference document for the call, if any.
func (oc *OperationContext) ReadPref() bsoncore.Document {
	return oc.readPref
}

// ReadPrefMode returns the parsed mode of the call's read preference. The
// zero Mode means no read preference has been applied.
func (oc *OperationContext) ReadPrefMode() readpref.Mode {
	return oc.readPrefMode
}

// SetReadPref sets the call's read preference document and its parsed mode.
func (oc *OperationContext) SetReadPref(rp bsoncore.Document, mode readpref.Mode) {
	oc.readPref = rp
	oc.readPrefMode = mode
}

// MaxTimeMS returns the server-side execution bound for the call in
// milliseconds. Zero means unbounded.
func (oc *OperationContext) MaxTimeMS() int64 {
	return oc.maxTimeMS
}

// SetMaxTimeMS sets the server-side execution bound for the call.
func (oc *OperationContext) SetMaxTimeMS(ms int64) {
	oc.maxTimeMS = ms
}

// ImpersonatedUsers returns the users asserted on behalf of the call, if any.
func (oc *OperationContext) ImpersonatedUsers() bsoncore.Array {
	return oc.impersonatedUsers
}

// SetImpersonatedUsers sets the users asserted on behalf of the call.
func (oc *OperationContext) SetImpersonatedUsers(users bsoncore.Array) {
	oc.impersonatedUsers = users
}

// ImpersonatedRoles returns the roles asserted on behalf of the call, if any.
func (oc *OperationContext) ImpersonatedRoles() bsoncore.Array {
	return oc.impersonatedRoles
}

// SetImpersonatedRoles sets the roles asserted on behalf of the call.
func (oc *OperationContext) SetImpersonatedRoles(roles bsoncore.Array) {
	oc.impersonatedRoles = roles
}
