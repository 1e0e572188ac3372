// Copyright 2013 Seth Bunce. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package boson

import (
	"bytes"
	"testing"
)

func TestEncodePrimitives(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want []byte
	}{
		{"null", nil, []byte{version, tagNull}},
		{"bool-true", true, []byte{version, tagBoolean, 1}},
		{"bool-false", false, []byte{version, tagBoolean, 0}},
		{"int8", int8(-1), []byte{version, tagByte, 0xFF}},
		{"int32", int32(1), []byte{version, tagInt, 0, 0, 0, 1}},
		{"int64", int64(1), []byte{version, tagLong, 0, 0, 0, 0, 0, 0, 0, 1}},
		{"string", "hi", []byte{version, tagString, 0, 0, 0, 2, 'h', 'i'}},
		{"char", Char('A'), []byte{version, tagChar, 0, 'A'}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Encode(c.in)
			if err != nil {
				t.Fatalf("Encode(%v): %v", c.in, err)
			}
			if !bytes.Equal(got, c.want) {
				t.Fatalf("Encode(%v) = % X, want % X", c.in, got, c.want)
			}
		})
	}
}

func TestEncodeUintWidensToLong(t *testing.T) {
	got, err := Encode(uint32(7))
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{version, tagLong, 0, 0, 0, 0, 0, 0, 0, 7}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % X want % X", got, want)
	}
}

func TestEncodeSetVsMapDispatch(t *testing.T) {
	set := map[string]struct{}{"a": {}}
	b, err := Encode(set)
	if err != nil {
		t.Fatal(err)
	}
	if b[1] != tagSet {
		t.Fatalf("map[T]struct{} should dispatch to tagSet, got tag %d", b[1])
	}

	m := map[string]int{"a": 1}
	b, err = Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	if b[1] != tagMap {
		t.Fatalf("map[T]V (V non-zero-size) should dispatch to tagMap, got tag %d", b[1])
	}
}

func TestEncodeByteSliceIsByteArray(t *testing.T) {
	b, err := Encode([]byte{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{version, tagByteArray, 0, 0, 0, 3, 1, 2, 3}
	if !bytes.Equal(b, want) {
		t.Fatalf("got % X want % X", b, want)
	}
}

type encErrStruct struct{}

func (encErrStruct) Error() string { return "boom" }

func TestEncodeRejectsError(t *testing.T) {
	_, err := Encode(encErrStruct{})
	if _, ok := err.(*UnsupportedValueError); !ok {
		t.Fatalf("expected UnsupportedValueError, got %T: %v", err, err)
	}
}

type cyclicNode struct {
	Name string
	Next *cyclicNode
}

func TestEncodeSelfCycleWritesReference(t *testing.T) {
	RegisterType("cyclicNode", cyclicNode{})
	n := &cyclicNode{Name: "root"}
	n.Next = n

	b, err := Encode(n)
	if err != nil {
		t.Fatal(err)
	}
	// Next is the record's last field, so its payload (tag + 4-byte ref
	// id) is the last 5 bytes written; root is reference id 0.
	tail := b[len(b)-5:]
	want := []byte{tagReference, 0, 0, 0, 0}
	if !bytes.Equal(tail, want) {
		t.Fatalf("expected the self-reference payload % X at the tail, got % X", want, tail)
	}
}
