// Copyright 2013 Seth Bunce. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package boson

import (
	"reflect"
	"strings"
	"sync"
	"unsafe"
)

// maxEmbedDepth guards against runaway recursion while flattening embedded
// (anonymous) struct fields, per spec.md §4.4's "recursion depth guard".
const maxEmbedDepth = 32

// slot is one included field of a record, as produced by the Field
// Introspector (spec.md §4.4).
type slot struct {
	name     string // external wire name, after rename directives
	index    []int  // reflect field-index path; len > 1 for promoted fields
	exported bool
	typ      reflect.Type
}

// structDescriptor is the cached, ordered set of slots for one struct
// type.
type structDescriptor struct {
	slots []slot
}

// descriptorCache is the process-wide, read-mostly slot cache required by
// spec.md §4.4/§5. Keyed by reflect.Type so two distinct registered names
// that happen to share a Go type still share one descriptor.
var descriptorCache sync.Map // reflect.Type -> *structDescriptor

// describe returns (building and caching, if necessary) the slot
// descriptor for struct type t.
func describe(t reflect.Type) *structDescriptor {
	if v, ok := descriptorCache.Load(t); ok {
		return v.(*structDescriptor)
	}
	d := &structDescriptor{slots: buildSlots(t, nil, 0)}
	actual, _ := descriptorCache.LoadOrStore(t, d)
	return actual.(*structDescriptor)
}

// buildSlots walks t's fields, honoring the boson struct tag directive and
// promoting embedded struct fields in place of a separate "ignore
// inherited slots" directive (see SPEC_FULL.md §4.4).
func buildSlots(t reflect.Type, prefix []int, depth int) []slot {
	if depth > maxEmbedDepth {
		return nil
	}
	slots := make([]slot, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int{}, prefix...), i)

		name := sf.Name
		ignore := false
		if tag, ok := sf.Tag.Lookup("boson"); ok {
			tok := strings.SplitN(tag, ",", 2)
			if tok[0] == "-" {
				ignore = true
			} else if tok[0] != "" {
				name = tok[0]
			}
			if len(tok) == 2 && strings.TrimSpace(tok[1]) == "ignore" {
				ignore = true
			}
		}
		if ignore {
			continue
		}

		embedType := sf.Type
		for embedType.Kind() == reflect.Ptr {
			embedType = embedType.Elem()
		}
		if sf.Anonymous && embedType.Kind() == reflect.Struct {
			slots = append(slots, buildSlots(embedType, index, depth+1)...)
			continue
		}

		slots = append(slots, slot{
			name:     name,
			index:    index,
			exported: sf.PkgPath == "",
			typ:      sf.Type,
		})
	}
	return slots
}

// fieldByIndex walks an index path produced by buildSlots, allocating
// nil embedded pointers along the way when alloc is true (decode side)
// and returning the zero Value when it can't proceed (encode side,
// reading through a nil embedded pointer means every promoted field is
// simply absent).
func fieldByIndex(v reflect.Value, index []int, alloc bool) reflect.Value {
	for i, x := range index {
		if i > 0 {
			if v.Kind() == reflect.Ptr {
				if v.IsNil() {
					if !alloc || !v.CanSet() {
						return reflect.Value{}
					}
					v.Set(reflect.New(v.Type().Elem()))
				}
				v = v.Elem()
			}
		}
		v = v.Field(x)
	}
	return v
}

// forceAccessible returns a Value for an unexported field that can be
// read (and, on the decode side, set) via reflect. This is the standard
// unsafe-pointer trick used throughout the Go ecosystem's marshaling code
// to reach fields reflect normally refuses; it requires v to be
// addressable, which holds whenever the root record was reached through
// a pointer (always true during decode, and true during encode whenever
// the caller passed a pointer or addressable value).
func forceAccessible(v reflect.Value) reflect.Value {
	if !v.CanAddr() {
		return v
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}
