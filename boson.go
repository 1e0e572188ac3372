// Copyright 2013 Seth Bunce. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package boson implements the Boson binary serialization protocol: a
self-describing, language-independent wire format for arbitrary in-memory
object graphs, including graphs containing cycles.

 Wire Grammar

 message      := version payload
 version      := byte 0x01
 payload      := tag body(tag)
 body(byte)   := int8
 body(short)  := int16 big-endian
 body(int)    := int32 big-endian
 body(long)   := int64 big-endian
 body(float)  := ieee754-32 big-endian
 body(double) := ieee754-64 big-endian
 body(boolean):= byte (0 or 1; any non-zero decodes true)
 body(char)   := uint16 big-endian (UTF-16 code unit)
 body(null)   := ε
 body(string) := int32 N ; N bytes UTF-8
 body(array)  := int32 N ; string COMPONENT-TYPE-NAME ; N × payload
 body(byte-array) := int32 N ; N bytes
 body(list)   := int32 N ; N × payload
 body(set)    := int32 N ; N × payload
 body(map)    := int32 N ; N × (payload-key payload-value)
 body(record) := int32 REF ; string CLASSNAME ; int32 M ; M × (string FIELDNAME payload)
 body(reference) := int32 REF
 body(enum)   := string CLASSNAME ; string CONSTANT-NAME

 Go Type Mapping

 Boson has no runtime type tag for "struct" the way a Go value does for a
 slice or a map; every record travels under an explicit CLASSNAME that must
 be registered with RegisterType before Decode can resolve it back to a Go
 struct. Enum constants (tag 17) likewise require RegisterEnum.

 Unordered-unique collections (tag 16, "set") are Go's idiomatic
 map[T]struct{} — the dispatcher tells a set from a map by checking whether
 the map's value type has zero size, not by requiring a separate wrapper
 type.

 Struct Tags:
	Field int `boson:"-"`        // Ignored (transient).
	Field int `boson:"myName"`   // Encoded with key "myName".
	Field int `boson:",ignore"`  // Ignored, same as "-".

 Unexported struct fields are excluded by default (Boson's analogue of "a
 slot declared immutable after construction" — see SPEC_FULL.md §4.2) and
 included only when WithSerializeFinalFields is passed to Encode.

 Cycles and Shared Substructure

 Encoding keys every record by the identity of the pointer that reaches
 it, not by the record's own equality. The first time a given pointer is
 seen, Encode assigns it the next reference id and writes a RECORD; every
 later occurrence of the same pointer writes a REFERENCE to that id
 instead. Decode mirrors this: a record's reference-table entry exists
 before any of its fields are decoded, so a field that points back to the
 record itself resolves to the same Go value rather than recursing
 forever.
*/
package boson

import (
	"bytes"
	"io"
)

// Logger receives the non-fatal diagnostics spec.md §7 calls for: an
// unknown field name encountered while decoding a record, or a value that
// couldn't be coerced into a field's declared type. Decode and
// DecodeReader use a no-op Logger unless WithLogger supplies one.
type Logger interface {
	Warnf(format string, args ...interface{})
}

type discardLogger struct{}

func (discardLogger) Warnf(string, ...interface{}) {}

// encodeOptions carries the tunables accepted by Encode, built through the
// functional-options pattern already idiomatic across the retrieved
// corpus's encoder/decoder constructors.
type encodeOptions struct {
	serializeFinalFields bool
	sortFields           bool
}

// Option configures a call to Encode.
type Option func(*encodeOptions)

// WithSerializeFinalFields includes a record's unexported fields on the
// wire (spec.md §4.2's serializeFinalFields flag; see SPEC_FULL.md §4.2
// for why unexported fields stand in for "immutable after construction").
func WithSerializeFinalFields() Option {
	return func(o *encodeOptions) { o.serializeFinalFields = true }
}

// WithSortFields writes a record's fields in external-name order instead
// of the Field Introspector's natural (declaration) order (spec.md §9's
// canonical-output open question). Only record fields are sorted: map and
// set entries are still written in Go's map iteration order, which can
// differ from run to run.
func WithSortFields() Option {
	return func(o *encodeOptions) { o.sortFields = true }
}

// decodeOptions carries the tunables accepted by Decode/DecodeReader.
type decodeOptions struct {
	readRecordsAsMap bool
	target           interface{}
	logger           Logger
	strictEnums      bool
}

// ReadOption configures a call to Decode or DecodeReader.
type ReadOption func(*decodeOptions)

// WithReadRecordsAsMap toggles record-mode decoding to produce
// string-keyed maps instead of instances (spec.md §6's ReadOptions flag).
func WithReadRecordsAsMap() ReadOption {
	return func(o *decodeOptions) { o.readRecordsAsMap = true }
}

// WithStrictEnums turns a missing enum constant (spec.md §9's open
// question) into an *UnknownEnumConstantError instead of the lenient
// default of substituting the fallback value given as RegisterEnum's first
// argument and logging a warning.
func WithStrictEnums() ReadOption {
	return func(o *decodeOptions) { o.strictEnums = true }
}

// WithTarget lets the caller hand the decoder a pointer to the expected
// root Go value, skipping the Domain Registry lookup for the root record
// only (nested records are still resolved by CLASSNAME).
func WithTarget(dst interface{}) ReadOption {
	return func(o *decodeOptions) { o.target = dst }
}

// WithLogger installs l as the receiver for slot-level decode diagnostics.
func WithLogger(l Logger) ReadOption {
	return func(o *decodeOptions) { o.logger = l }
}

// Encode serializes value to Boson's binary wire format.
func Encode(value interface{}, opts ...Option) ([]byte, error) {
	o := &encodeOptions{}
	for _, apply := range opts {
		apply(o)
	}
	e := &encoder{
		buf:  bytes.NewBuffer(make([]byte, 0, 256)),
		refs: newEncodeRefs(),
		opts: o,
	}
	if err := e.buf.WriteByte(version); err != nil {
		return nil, wrapIO(err, "writing version byte")
	}
	if err := e.encodeValue("", value); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

// MustEncode is Encode, panicking on error.
func MustEncode(value interface{}, opts ...Option) []byte {
	b, err := Encode(value, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// Decode deserializes a Boson message previously produced by Encode.
func Decode(data []byte, opts ...ReadOption) (interface{}, error) {
	return DecodeReader(bytes.NewReader(data), opts...)
}

// DecodeReader is Decode, reading from an io.Reader instead of a byte
// slice.
func DecodeReader(r io.Reader, opts ...ReadOption) (interface{}, error) {
	o := &decodeOptions{logger: discardLogger{}}
	for _, apply := range opts {
		apply(o)
	}
	if o.logger == nil {
		o.logger = discardLogger{}
	}
	d := &decoder{
		rd:   newByteReader(r),
		refs: newDecodeRefs(),
		opts: o,
	}
	v, err := d.readVersion()
	if err != nil {
		return nil, err
	}
	_ = v
	return d.decodeValue("", o.target)
}
