// Copyright 2013 Seth Bunce. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package boson

import (
	"reflect"
	"sync"
)

// Enum is implemented by wire-level enum constants (tag 17). Go has no
// native enum kind; a type registered with RegisterEnum and implementing
// this interface is encoded/decoded the way a Java enum constant is.
type Enum interface {
	// EnumTypeName is the wire CLASSNAME written for every constant of
	// this type.
	EnumTypeName() string
	// EnumConstantName is this constant's wire CONSTANT-NAME.
	EnumConstantName() string
}

// typeRegistry and enumRegistry are the only process-wide state besides
// the field descriptor cache (field.go). Both are read-mostly: populated a
// handful of times at program init, then read concurrently for the
// lifetime of the process. RegisterType and RegisterEnum write with
// sync.Map's Store, so registering a name again replaces the earlier entry.
var typeRegistry sync.Map       // string -> reflect.Type
var typeRegistryRev sync.Map    // reflect.Type -> string
var enumRegistry sync.Map       // string -> *enumDescriptor
var enumRegistryByType sync.Map // reflect.Type -> *enumDescriptor

type enumDescriptor struct {
	typ       reflect.Type
	byName    map[string]Enum
	zeroValue Enum
}

// RegisterType associates name with the struct type of zero so the decoder
// can resolve a wire CLASSNAME back into a Go type (spec.md §4.3 step 4;
// Go has no Class.forName analogue). zero may be a struct value or a
// pointer to one.
func RegisterType(name string, zero interface{}) {
	t := reflect.TypeOf(zero)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	typeRegistry.Store(name, t)
	typeRegistryRev.Store(t, name)
}

// lookupType resolves a wire CLASSNAME to a registered struct type.
func lookupType(name string) (reflect.Type, bool) {
	v, ok := typeRegistry.Load(name)
	if !ok {
		return nil, false
	}
	return v.(reflect.Type), true
}

// classNameOf returns the wire CLASSNAME registered for t, or t's own
// package-qualified name when nothing was registered (best effort, used
// only for diagnostics and for encoding against a registry the caller
// hasn't fully populated yet).
func classNameOf(t reflect.Type) string {
	if v, ok := typeRegistryRev.Load(t); ok {
		return v.(string)
	}
	return t.String()
}

// RegisterEnum associates the Go type of zero with its full set of
// constants, keyed by EnumConstantName. zero itself is used only to derive
// the type and as the fallback value for an unrecognized constant name.
func RegisterEnum(zero Enum, constants ...Enum) {
	d := &enumDescriptor{
		typ:       reflect.TypeOf(zero),
		byName:    make(map[string]Enum, len(constants)),
		zeroValue: zero,
	}
	for _, c := range constants {
		d.byName[c.EnumConstantName()] = c
	}
	enumRegistry.Store(zero.EnumTypeName(), d)
	enumRegistryByType.Store(d.typ, d)
}

func lookupEnum(typeName string) (*enumDescriptor, bool) {
	v, ok := enumRegistry.Load(typeName)
	if !ok {
		return nil, false
	}
	return v.(*enumDescriptor), true
}

func lookupEnumByType(t reflect.Type) (*enumDescriptor, bool) {
	v, ok := enumRegistryByType.Load(t)
	if !ok {
		return nil, false
	}
	return v.(*enumDescriptor), true
}
