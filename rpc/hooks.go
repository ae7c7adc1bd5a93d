// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package rpc

import "go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

// RequestMetadataWriter writes additional fields into a request metadata
// document under construction.
type RequestMetadataWriter func(*bsoncore.DocumentBuilder) error

// RequestMetadataReader consumes a request metadata document.
type RequestMetadataReader func(bsoncore.Document) error

// ReplyMetadataReader consumes a reply metadata document. The second
// argument is the address of the server that executed the command, for
// diagnostics and attribution.
type ReplyMetadataReader func(bsoncore.Document, string) error

// HookRegistry is an immutable, ordered collection of metadata hooks.
// Hooks run in registration order; ordering is part of the contract, as a
// hook may depend on the output of an earlier one. A built registry is safe
// for concurrent use.
type HookRegistry struct {
	requestWriters []RequestMetadataWriter
	requestReaders []RequestMetadataReader
	replyReaders   []ReplyMetadataReader
}

// HookRegistryBuilder accumulates hooks during setup. It is not safe for
// concurrent use; registration is a single-threaded setup step that ends
// when Build is called.
type HookRegistryBuilder struct {
	requestWriters []RequestMetadataWriter
	requestReaders []RequestMetadataReader
	replyReaders   []ReplyMetadataReader
}

// NewHookRegistryBuilder creates a new empty HookRegistryBuilder.
func NewHookRegistryBuilder() *HookRegistryBuilder {
	return &HookRegistryBuilder{}
}

// RegisterRequestWriter appends w to the request metadata writers.
func (hrb *HookRegistryBuilder) RegisterRequestWriter(w RequestMetadataWriter) *HookRegistryBuilder {
	hrb.requestWriters = append(hrb.requestWriters, w)
	return hrb
}

// RegisterRequestReader appends r to the request metadata readers.
func (hrb *HookRegistryBuilder) RegisterRequestReader(r RequestMetadataReader) *HookRegistryBuilder {
	hrb.requestReaders = append(hrb.requestReaders, r)
	return hrb
}

// RegisterReplyReader appends r to the reply metadata readers.
func (hrb *HookRegistryBuilder) RegisterReplyReader(r ReplyMetadataReader) *HookRegistryBuilder {
	hrb.replyReaders = append(hrb.replyReaders, r)
	return hrb
}

// Build copies the registered hooks into an immutable HookRegistry. Hooks
// registered after Build do not affect registries already built.
func (hrb *HookRegistryBuilder) Build() *HookRegistry {
	return &HookRegistry{
		requestWriters: append([]RequestMetadataWriter(nil), hrb.requestWriters...),
		requestReaders: append([]RequestMetadataReader(nil), hrb.requestReaders...),
		replyReaders:   append([]ReplyMetadataReader(nil), hrb.replyReaders...),
	}
}
