// Copyright 2013 Seth Bunce. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package boson

import (
	"fmt"

	"github.com/pkg/errors"
)

// VersionMismatchError signals that the first byte of input was not the
// expected Boson version id.
type VersionMismatchError struct {
	Got byte
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("boson: version mismatch, want %d got %d", version, e.Got)
}

// UnsupportedTagError signals a tag byte outside the defined set.
type UnsupportedTagError struct {
	Path string
	Tag  byte
}

func (e *UnsupportedTagError) Error() string {
	return fmt.Sprintf("boson: %v, unsupported tag 0x%X", e.Path, e.Tag)
}

// TruncatedError signals a read that would exceed the available input.
type TruncatedError struct {
	Path string
	Err  error
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("boson: %v, truncated: %v", e.Path, e.Err)
}

func (e *TruncatedError) Unwrap() error { return e.Err }

// DanglingReferenceError signals a REFERENCE tag whose id was never
// registered (I4).
type DanglingReferenceError struct {
	Path string
	Ref  int32
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("boson: %v, dangling reference %d", e.Path, e.Ref)
}

// CannotConstructError signals that a class named by a record could not be
// turned into a usable zero value.
type CannotConstructError struct {
	ClassName string
	Reason    string
}

func (e *CannotConstructError) Error() string {
	return fmt.Sprintf("boson: cannot construct %q: %v", e.ClassName, e.Reason)
}

// MissingClassError signals that a class name on the wire has no
// corresponding entry in the Domain Registry.
type MissingClassError struct {
	ClassName string
}

func (e *MissingClassError) Error() string {
	return fmt.Sprintf("boson: class %q is not registered", e.ClassName)
}

// UnsupportedValueError signals an attempt to encode a value of a kind the
// encoder refuses outright: values implementing error, and kinds with no
// wire tag (channels, functions, complex numbers, ...).
type UnsupportedValueError struct {
	Path  string
	Value interface{}
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("boson: %v, cannot encode %T", e.Path, e.Value)
}

// SerializationError wraps an underlying I/O failure encountered while
// writing or reading the wire stream.
type SerializationError struct {
	cause error
}

func (e *SerializationError) Error() string { return e.cause.Error() }
func (e *SerializationError) Unwrap() error { return e.cause }

// wrapIO turns an I/O failure into a SerializationError, preserving a
// stack via github.com/pkg/errors for diagnosability.
func wrapIO(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &SerializationError{cause: errors.Wrap(err, msg)}
}

// InvalidDataError signals structural corruption in the input that isn't
// better described by one of the more specific kinds above.
type InvalidDataError struct {
	Path   string
	Reason string
}

func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("boson: %v, invalid data: %v", e.Path, e.Reason)
}

// UnknownEnumConstantError is returned when WithStrictEnums is set and a
// decoded enum constant name has no match in the registered descriptor.
// The lenient default path never returns this; it logs and substitutes the
// fallback value given as RegisterEnum's first argument instead (spec.md's
// "open question", resolved towards
// strictness only when the caller opts in).
type UnknownEnumConstantError struct {
	TypeName     string
	ConstantName string
}

func (e *UnknownEnumConstantError) Error() string {
	return fmt.Sprintf("boson: enum %q has no constant %q", e.TypeName, e.ConstantName)
}
