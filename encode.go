// Copyright 2013 Seth Bunce. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package boson

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
	"sort"
	"time"
)

// encoder walks a Go value graph and writes it as a Boson message. One
// encoder is created per top-level Encode call and never reused (spec.md
// §5's reentrancy rule): its reference table is only valid for the single
// graph it was built for.
type encoder struct {
	buf  *bytes.Buffer
	refs *encodeRefs
	opts *encodeOptions
}

// specialStructTypes holds the struct-kind Go types that carry their own
// wire tag instead of falling through to RECORD, so that a pointer to one
// of them (e.g. *time.Time) isn't mistaken for a user record.
var specialStructTypes = map[reflect.Type]bool{
	reflect.TypeOf(time.Time{}):         true,
	reflect.TypeOf(LocalDate{}):         true,
	reflect.TypeOf(LocalDateTime{}):     true,
	reflect.TypeOf(Period{}):            true,
	reflect.TypeOf(JodaDateTime{}):      true,
	reflect.TypeOf(JodaLocalDate{}):     true,
	reflect.TypeOf(JodaLocalDateTime{}): true,
	reflect.TypeOf(JodaPeriod{}):        true,
	reflect.TypeOf(JodaInterval{}):      true,
}

// encodeValue is the public entry point used by Encode: it lifts value
// into a reflect.Value and dispatches from there.
func (e *encoder) encodeValue(path string, value interface{}) error {
	return e.encodeReflect(path, reflect.ValueOf(value))
}

// encodeReflect is the dispatch ladder: interfaces and non-struct pointers
// are unwrapped first, recognized concrete types (temporal values, Char,
// UUID, byte slices) are matched next, and everything else falls through
// to a reflect.Kind switch that covers the remaining primitive and
// container shapes.
func (e *encoder) encodeReflect(path string, rv reflect.Value) error {
	if !rv.IsValid() {
		return e.writeNull()
	}
	for rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return e.writeNull()
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return e.writeNull()
		}
		if err, ok := rv.Interface().(error); ok {
			return &UnsupportedValueError{Path: path, Value: err}
		}
		elem := rv.Elem()
		if elem.Kind() == reflect.Struct && !specialStructTypes[elem.Type()] {
			return e.encodeRecord(path, elem, &rv)
		}
		rv = elem
	}

	switch v := rv.Interface().(type) {
	case error:
		return &UnsupportedValueError{Path: path, Value: v}
	case UUID:
		return e.writeUUID(v)
	case Char:
		return e.writeChar(v)
	case Period:
		return e.writePeriod(v)
	case JodaPeriod:
		return e.writeJodaPeriod(v)
	case LocalDate:
		return e.writeLocalDate(v)
	case LocalDateTime:
		return e.writeLocalDateTime(v)
	case LocalTime:
		return e.writeLocalTime(v)
	case JodaLocalDate:
		return e.writeJodaLocalDate(v)
	case JodaLocalDateTime:
		return e.writeJodaLocalDateTime(v)
	case JodaLocalTime:
		return e.writeJodaLocalTime(v)
	case JodaDateTime:
		return e.writeJodaDateTime(v)
	case JodaInterval:
		return e.writeJodaInterval(v)
	}

	if t, ok := rv.Interface().(time.Time); ok {
		return e.writeDate(t)
	}
	if d, ok := rv.Interface().(time.Duration); ok {
		return e.writeDuration(d)
	}
	if jd, ok := rv.Interface().(JodaDuration); ok {
		return e.writeJodaDuration(jd)
	}

	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return e.writeByteArray(rv.Bytes())
	}

	if en, ok := rv.Interface().(Enum); ok {
		if _, registered := lookupEnumByType(rv.Type()); registered {
			return e.writeEnum(en)
		}
	}

	switch rv.Kind() {
	case reflect.Int8:
		return e.writeByte(int8(rv.Int()))
	case reflect.Int16:
		return e.writeShort(int16(rv.Int()))
	case reflect.Int32:
		return e.writeInt(int32(rv.Int()))
	case reflect.Int, reflect.Int64:
		return e.writeLong(rv.Int())
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint, reflect.Uint64:
		return e.writeLong(int64(rv.Uint()))
	case reflect.Float32:
		return e.writeFloat(float32(rv.Float()))
	case reflect.Float64:
		return e.writeDouble(rv.Float())
	case reflect.Bool:
		return e.writeBoolean(rv.Bool())
	case reflect.String:
		return e.writeString(rv.String())
	case reflect.Slice:
		return e.writeList(path, rv)
	case reflect.Array:
		return e.writeArray(path, rv)
	case reflect.Map:
		if rv.Type().Elem().Size() == 0 {
			return e.writeSet(path, rv)
		}
		return e.writeMap(path, rv)
	case reflect.Struct:
		return e.encodeRecord(path, rv, nil)
	}
	return &UnsupportedValueError{Path: path, Value: rv.Interface()}
}

// encodeRecord writes a RECORD payload, or a REFERENCE if identity (the
// address rv was reached through) has already been written once this
// call. identity is nil for a struct value reached without a pointer
// (embedded-by-value, a map value, ...), which Go's type system already
// guarantees cannot contain itself, so no reference bookkeeping applies.
func (e *encoder) encodeRecord(path string, structVal reflect.Value, identity *reflect.Value) error {
	var id int32
	if identity != nil {
		var existed bool
		id, existed = e.refs.idFor(*identity)
		if existed {
			return e.writeReference(id)
		}
	} else {
		id = e.refs.next
		e.refs.next++
	}

	t := structVal.Type()
	desc := describe(t)

	type fieldOut struct {
		name string
		val  reflect.Value
	}
	out := make([]fieldOut, 0, len(desc.slots))
	for _, s := range desc.slots {
		if !s.exported && !e.opts.serializeFinalFields {
			continue
		}
		fv := fieldByIndex(structVal, s.index, false)
		if !fv.IsValid() {
			continue
		}
		if !s.exported {
			fv = forceAccessible(fv)
		}
		out = append(out, fieldOut{name: s.name, val: fv})
	}
	if e.opts.sortFields {
		sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	}

	if err := e.writeTag(tagRecord); err != nil {
		return err
	}
	if err := e.writeRawInt32(id); err != nil {
		return err
	}
	if err := e.rawString(classNameOf(t)); err != nil {
		return err
	}
	if err := e.writeRawInt32(int32(len(out))); err != nil {
		return err
	}
	for _, f := range out {
		if err := e.rawString(f.name); err != nil {
			return err
		}
		if err := e.encodeReflect(catpath(path, f.name), f.val); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeList(path string, rv reflect.Value) error {
	n := rv.Len()
	if err := e.writeTag(tagList); err != nil {
		return err
	}
	if err := e.writeRawInt32(int32(n)); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := e.encodeReflect(catpath(path, fmt.Sprintf("[%d]", i)), rv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeArray(path string, rv reflect.Value) error {
	n := rv.Len()
	if err := e.writeTag(tagArray); err != nil {
		return err
	}
	if err := e.writeRawInt32(int32(n)); err != nil {
		return err
	}
	if err := e.rawString(componentTypeName(rv.Type().Elem())); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := e.encodeReflect(catpath(path, fmt.Sprintf("[%d]", i)), rv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeSet(path string, rv reflect.Value) error {
	keys := rv.MapKeys()
	if err := e.writeTag(tagSet); err != nil {
		return err
	}
	if err := e.writeRawInt32(int32(len(keys))); err != nil {
		return err
	}
	for i, k := range keys {
		if err := e.encodeReflect(catpath(path, fmt.Sprintf("{%d}", i)), k); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeMap(path string, rv reflect.Value) error {
	keys := rv.MapKeys()
	if err := e.writeTag(tagMap); err != nil {
		return err
	}
	if err := e.writeRawInt32(int32(len(keys))); err != nil {
		return err
	}
	for i, k := range keys {
		if err := e.encodeReflect(catpath(path, fmt.Sprintf("<key%d>", i)), k); err != nil {
			return err
		}
		if err := e.encodeReflect(catpath(path, fmt.Sprintf("<val%d>", i)), rv.MapIndex(k)); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeEnum(en Enum) error {
	if err := e.writeTag(tagEnum); err != nil {
		return err
	}
	if err := e.rawString(en.EnumTypeName()); err != nil {
		return err
	}
	return e.rawString(en.EnumConstantName())
}

// --- low-level writers. All multi-byte scalars are big-endian (spec.md
// §4.1), unlike the teacher's little-endian BSON codec this package is
// descended from. ---

func (e *encoder) writeTag(tag byte) error {
	if err := e.buf.WriteByte(tag); err != nil {
		return wrapIO(err, "writing tag")
	}
	return nil
}

func (e *encoder) writeRawInt32(v int32) error {
	if err := binary.Write(e.buf, binary.BigEndian, v); err != nil {
		return wrapIO(err, "writing int32")
	}
	return nil
}

func (e *encoder) writeRawInt64(v int64) error {
	if err := binary.Write(e.buf, binary.BigEndian, v); err != nil {
		return wrapIO(err, "writing int64")
	}
	return nil
}

// rawString writes a length-prefixed UTF-8 string body with no leading
// tag byte, for use inside RECORD/ARRAY/ENUM bodies where the grammar
// calls for a bare string (spec.md §4.1, I6: length is counted in bytes).
func (e *encoder) rawString(s string) error {
	if err := e.writeRawInt32(int32(len(s))); err != nil {
		return err
	}
	if _, err := e.buf.WriteString(s); err != nil {
		return wrapIO(err, "writing string body")
	}
	return nil
}

func (e *encoder) writeNull() error {
	return e.writeTag(tagNull)
}

func (e *encoder) writeByte(v int8) error {
	if err := e.writeTag(tagByte); err != nil {
		return err
	}
	return e.buf.WriteByte(byte(v))
}

func (e *encoder) writeShort(v int16) error {
	if err := e.writeTag(tagShort); err != nil {
		return err
	}
	return wrapIO(binary.Write(e.buf, binary.BigEndian, v), "writing short")
}

func (e *encoder) writeInt(v int32) error {
	if err := e.writeTag(tagInt); err != nil {
		return err
	}
	return e.writeRawInt32(v)
}

func (e *encoder) writeLong(v int64) error {
	if err := e.writeTag(tagLong); err != nil {
		return err
	}
	return e.writeRawInt64(v)
}

func (e *encoder) writeFloat(v float32) error {
	if err := e.writeTag(tagFloat); err != nil {
		return err
	}
	return wrapIO(binary.Write(e.buf, binary.BigEndian, v), "writing float")
}

func (e *encoder) writeDouble(v float64) error {
	if err := e.writeTag(tagDouble); err != nil {
		return err
	}
	return wrapIO(binary.Write(e.buf, binary.BigEndian, v), "writing double")
}

func (e *encoder) writeBoolean(v bool) error {
	if err := e.writeTag(tagBoolean); err != nil {
		return err
	}
	var b byte
	if v {
		b = 1
	}
	return e.buf.WriteByte(b)
}

func (e *encoder) writeChar(v Char) error {
	if err := e.writeTag(tagChar); err != nil {
		return err
	}
	return wrapIO(binary.Write(e.buf, binary.BigEndian, uint16(v)), "writing char")
}

func (e *encoder) writeString(s string) error {
	if err := e.writeTag(tagString); err != nil {
		return err
	}
	return e.rawString(s)
}

func (e *encoder) writeByteArray(b []byte) error {
	if err := e.writeTag(tagByteArray); err != nil {
		return err
	}
	if err := e.writeRawInt32(int32(len(b))); err != nil {
		return err
	}
	if _, err := e.buf.Write(b); err != nil {
		return wrapIO(err, "writing byte array body")
	}
	return nil
}

func (e *encoder) writeReference(id int32) error {
	if err := e.writeTag(tagReference); err != nil {
		return err
	}
	return e.writeRawInt32(id)
}

func (e *encoder) writeUUID(u UUID) error {
	if err := e.writeTag(tagUUID); err != nil {
		return err
	}
	if _, err := e.buf.Write(u[:]); err != nil {
		return wrapIO(err, "writing uuid")
	}
	return nil
}

func (e *encoder) writeDate(t time.Time) error {
	if err := e.writeTag(tagDate); err != nil {
		return err
	}
	return e.writeRawInt64(t.UnixNano() / 1e6)
}

func (e *encoder) writeLocalDate(d LocalDate) error {
	if err := e.writeTag(tagLocalDate); err != nil {
		return err
	}
	return e.writeRawInt64(epochDay(time.Time(d)))
}

func (e *encoder) writeLocalDateTime(d LocalDateTime) error {
	if err := e.writeTag(tagLocalDateTime); err != nil {
		return err
	}
	return e.rawString(time.Time(d).Format(isoDateTimeLayout))
}

func (e *encoder) writeLocalTime(lt LocalTime) error {
	if err := e.writeTag(tagLocalTime); err != nil {
		return err
	}
	return e.rawString(formatLocalTime(time.Duration(lt)))
}

func (e *encoder) writeDuration(d time.Duration) error {
	if err := e.writeTag(tagDuration); err != nil {
		return err
	}
	return e.rawString(formatISODuration(d))
}

func (e *encoder) writePeriod(p Period) error {
	if err := e.writeTag(tagPeriod); err != nil {
		return err
	}
	return e.rawString(formatISOPeriod(p))
}

func (e *encoder) writeJodaDateTime(t JodaDateTime) error {
	if err := e.writeTag(tagJodaDateTime); err != nil {
		return err
	}
	return e.writeRawInt64(time.Time(t).UnixNano() / 1e6)
}

func (e *encoder) writeJodaLocalDate(d JodaLocalDate) error {
	if err := e.writeTag(tagJodaLocalDate); err != nil {
		return err
	}
	return e.rawString(time.Time(d).Format(isoDateLayout))
}

func (e *encoder) writeJodaLocalTime(lt JodaLocalTime) error {
	if err := e.writeTag(tagJodaLocalTime); err != nil {
		return err
	}
	return e.rawString(formatLocalTime(time.Duration(lt)))
}

func (e *encoder) writeJodaLocalDateTime(d JodaLocalDateTime) error {
	if err := e.writeTag(tagJodaLocalDateTime); err != nil {
		return err
	}
	return e.rawString(time.Time(LocalDateTime(d)).Format(isoDateTimeLayout))
}

func (e *encoder) writeJodaDuration(d JodaDuration) error {
	if err := e.writeTag(tagJodaDuration); err != nil {
		return err
	}
	return e.rawString(formatISODuration(time.Duration(d)))
}

func (e *encoder) writeJodaPeriod(p JodaPeriod) error {
	if err := e.writeTag(tagJodaPeriod); err != nil {
		return err
	}
	return e.rawString(formatISOPeriod(Period(p)))
}

func (e *encoder) writeJodaInterval(iv JodaInterval) error {
	if err := e.writeTag(tagJodaInterval); err != nil {
		return err
	}
	s := iv.Start.Format(isoDateTimeLayout) + "/" + iv.End.Format(isoDateTimeLayout)
	return e.rawString(s)
}

// componentTypeName derives the COMPONENT-TYPE-NAME written for an ARRAY
// payload: the registered class name for a struct element type, or the
// element's reflect.Kind name for everything else. typeFromName (decode.go)
// maps these names back to Go types; the mapping is not exact (see there).
func componentTypeName(t reflect.Type) string {
	if t.Kind() == reflect.Struct && !specialStructTypes[t] {
		return classNameOf(t)
	}
	return t.Kind().String()
}
