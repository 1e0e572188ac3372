// Copyright 2013 Seth Bunce. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package boson

import (
	"bytes"
	"errors"
	"testing"
)

type errNoCtor struct {
	X int
}

func TestDecodeCannotConstructWhenTargetNotPointer(t *testing.T) {
	RegisterType("errNoCtor", errNoCtor{})
	wire, err := Encode(errNoCtor{X: 1})
	if err != nil {
		t.Fatal(err)
	}
	_, err = DecodeReader(bytes.NewReader(wire), WithTarget(errNoCtor{}))
	if _, ok := err.(*CannotConstructError); !ok {
		t.Fatalf("expected *CannotConstructError, got %T: %v", err, err)
	}
}

type strictEnumColor struct {
	name string
}

func (c strictEnumColor) EnumTypeName() string     { return "strictEnumColor" }
func (c strictEnumColor) EnumConstantName() string { return c.name }

type strictEnumBox struct {
	C strictEnumColor
}

// TestDecodeStrictEnumsRejectsUnknownConstant exercises spec.md §9's open
// question on missing enum constants: by default the decoder substitutes
// the fallback value registered as RegisterEnum's first argument and logs
// a warning; WithStrictEnums
// turns the same condition into *UnknownEnumConstantError.
func TestDecodeStrictEnumsRejectsUnknownConstant(t *testing.T) {
	fallback := strictEnumColor{"Unset"}
	known := strictEnumColor{"Known"}
	RegisterEnum(fallback, fallback, known)
	RegisterType("strictEnumBox", strictEnumBox{})

	wire, err := Encode(strictEnumBox{C: known})
	if err != nil {
		t.Fatal(err)
	}

	// Patch the encoded constant name to one that was never registered,
	// as if decoding against an older schema than the one that wrote it.
	patched := append([]byte(nil), wire...)
	replaceASCII(patched, "Known", "Missn")

	_, err = Decode(patched, WithStrictEnums())
	if _, ok := err.(*UnknownEnumConstantError); !ok {
		t.Fatalf("expected *UnknownEnumConstantError, got %T: %v", err, err)
	}

	out, err := Decode(patched)
	if err != nil {
		t.Fatalf("lenient decode should not fail: %v", err)
	}
	b := out.(*strictEnumBox)
	if b.C != fallback {
		t.Fatalf("expected fallback-value substitution %+v, got %+v", fallback, b.C)
	}
}

func replaceASCII(b []byte, from, to string) {
	if len(from) != len(to) {
		panic("replaceASCII requires equal-length strings")
	}
	idx := bytes.Index(b, []byte(from))
	if idx < 0 {
		panic("replaceASCII: " + from + " not found")
	}
	copy(b[idx:idx+len(to)], to)
}

func TestUnsupportedValueWrapsErrorInterface(t *testing.T) {
	_, err := Encode(errors.New("boom"))
	if _, ok := err.(*UnsupportedValueError); !ok {
		t.Fatalf("expected *UnsupportedValueError, got %T: %v", err, err)
	}
}

func TestTruncatedErrorUnwraps(t *testing.T) {
	_, err := Decode([]byte{version, tagString, 0, 0, 0, 5, 'h', 'i'})
	te, ok := err.(*TruncatedError)
	if !ok {
		t.Fatalf("expected *TruncatedError, got %T: %v", err, err)
	}
	if te.Unwrap() == nil {
		t.Fatalf("expected TruncatedError to unwrap to the underlying I/O error")
	}
}

func TestInvalidDataNegativeLength(t *testing.T) {
	_, err := Decode([]byte{version, tagString, 0xFF, 0xFF, 0xFF, 0xFF})
	if _, ok := err.(*InvalidDataError); !ok {
		t.Fatalf("expected *InvalidDataError, got %T: %v", err, err)
	}
}

func TestMalformedDurationIsInvalidData(t *testing.T) {
	wire := []byte{version, tagDuration, 0, 0, 0, 3, 'b', 'a', 'd'}
	_, err := Decode(wire)
	if _, ok := err.(*InvalidDataError); !ok {
		t.Fatalf("expected *InvalidDataError, got %T: %v", err, err)
	}
}
