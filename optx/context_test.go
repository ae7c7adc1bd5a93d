// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package optx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/drunklite/mongo/readpref"
)

func TestOperationContext(t *testing.T) {
	t.Parallel()

	t.Run("new context has no attributes set", func(t *testing.T) {
		t.Parallel()
		oc := New()
		assert.False(t, oc.SecondaryOK())
		assert.Empty(t, oc.ReadPref())
		assert.Equal(t, readpref.Mode(0), oc.ReadPrefMode())
		assert.Zero(t, oc.MaxTimeMS())
		assert.Empty(t, oc.ImpersonatedUsers())
		assert.Empty(t, oc.ImpersonatedRoles())
	})
	t.Run("attributes round trip through their accessors", func(t *testing.T) {
		t.Parallel()
		rp := bsoncore.NewDocumentBuilder().AppendString("mode", "nearest").Build()
		users := bsoncore.NewArrayBuilder().AppendString("admin").Build()

		oc := New()
		oc.SetSecondaryOK(true)
		oc.SetReadPref(rp, readpref.NearestMode)
		oc.SetMaxTimeMS(100)
		oc.SetImpersonatedUsers(users)

		assert.True(t, oc.SecondaryOK())
		assert.Equal(t, rp, oc.ReadPref())
		assert.Equal(t, readpref.NearestMode, oc.ReadPrefMode())
		assert.Equal(t, int64(100), oc.MaxTimeMS())
		assert.Equal(t, users, oc.ImpersonatedUsers())
	})
}
