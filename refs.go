// Copyright 2013 Seth Bunce. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package boson

import "reflect"

// encodeRefs is the encoder-side reference table (spec.md §3). It is owned
// exclusively by one top-level Encode call and discarded when that call
// returns (spec.md §5 reentrancy rule). Keys are the identity of the
// in-memory value, not anything derived from its own (possibly cyclic,
// possibly infinite-looping) Equal/Hash behavior.
type encodeRefs struct {
	ids  map[identityKey]int32
	next int32
}

// identityKey is a pointer-kind value's address plus its type, so that a
// *A and a *B that happen to share an address (impossible in practice, but
// defensive) never collide, and so the map key itself never touches the
// pointee's contents.
type identityKey struct {
	typ reflect.Type
	ptr uintptr
}

func newEncodeRefs() *encodeRefs {
	return &encodeRefs{ids: make(map[identityKey]int32)}
}

// keyOf returns the identity key for rv, which must be a pointer-kind
// Value (encodeRecord calls idFor only for records reached through a
// pointer; struct values get no identity entry).
func keyOf(rv reflect.Value) identityKey {
	return identityKey{typ: rv.Type(), ptr: rv.Pointer()}
}

// idFor returns the previously assigned reference id for rv, if any, and
// whether one already existed. When absent, idFor allocates the next id
// and records it before the caller descends into rv's fields, satisfying
// I2 ("before its child values are written").
func (r *encodeRefs) idFor(rv reflect.Value) (id int32, existed bool) {
	k := keyOf(rv)
	if id, ok := r.ids[k]; ok {
		return id, true
	}
	id = r.next
	r.next++
	r.ids[k] = id
	return id, false
}

// decodeRefs is the decoder-side reference table (spec.md §3). A record is
// registered here immediately after its tag, reference id, class name and
// field count are read, and before any field payload is read (I3) — this
// is what lets a cyclic field resolve to the record itself.
type decodeRefs struct {
	byID map[int32]interface{}
}

func newDecodeRefs() *decodeRefs {
	return &decodeRefs{byID: make(map[int32]interface{})}
}

func (r *decodeRefs) register(id int32, v interface{}) {
	r.byID[id] = v
}

func (r *decodeRefs) resolve(id int32) (interface{}, bool) {
	v, ok := r.byID[id]
	return v, ok
}
