// Copyright 2013 Seth Bunce. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package boson

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"
	"time"
)

// byteReader is the decoder's low-level cursor over the wire stream. It
// exists separately from decoder itself so newByteReader can wrap any
// io.Reader, not just a byte slice, per spec.md §6's DecodeReader entry
// point.
type byteReader struct {
	br *bufio.Reader
}

func newByteReader(r io.Reader) *byteReader {
	return &byteReader{br: bufio.NewReader(r)}
}

func (r *byteReader) readByte(path string) (byte, error) {
	b, err := r.br.ReadByte()
	if err != nil {
		return 0, &TruncatedError{Path: path, Err: err}
	}
	return b, nil
}

func (r *byteReader) readFull(path string, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return nil, &TruncatedError{Path: path, Err: err}
	}
	return buf, nil
}

func (r *byteReader) readInt32(path string) (int32, error) {
	b, err := r.readFull(path, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (r *byteReader) readInt64(path string) (int64, error) {
	b, err := r.readFull(path, 8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func (r *byteReader) readUint16(path string) (uint16, error) {
	b, err := r.readFull(path, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// readString reads a bare length-prefixed UTF-8 string body, the inverse
// of encoder.rawString.
func (r *byteReader) readString(path string) (string, error) {
	n, err := r.readInt32(path)
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", &InvalidDataError{Path: path, Reason: "negative string length"}
	}
	b, err := r.readFull(path, int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decoder mirrors encoder on the read side: one per top-level Decode or
// DecodeReader call, holding the reference table that a record field
// pointing back to an ancestor resolves against.
type decoder struct {
	rd   *byteReader
	refs *decodeRefs
	opts *decodeOptions
}

// readVersion consumes and validates the leading version byte (I1).
func (d *decoder) readVersion() (byte, error) {
	b, err := d.rd.readByte("version")
	if err != nil {
		return 0, err
	}
	if b != version {
		return 0, &VersionMismatchError{Got: b}
	}
	return b, nil
}

// decodeValue reads one tagged payload. target is only consulted when the
// payload turns out to be a RECORD at the root of the call tree (spec.md
// §6's WithTarget); every recursive call passes nil.
func (d *decoder) decodeValue(path string, target interface{}) (interface{}, error) {
	tag, err := d.rd.readByte(path)
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagNull:
		return nil, nil
	case tagByte:
		b, err := d.rd.readByte(path)
		if err != nil {
			return nil, err
		}
		return int8(b), nil
	case tagShort:
		b, err := d.rd.readFull(path, 2)
		if err != nil {
			return nil, err
		}
		return int16(binary.BigEndian.Uint16(b)), nil
	case tagInt:
		return d.rd.readInt32(path)
	case tagLong:
		return d.rd.readInt64(path)
	case tagFloat:
		b, err := d.rd.readFull(path, 4)
		if err != nil {
			return nil, err
		}
		return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
	case tagDouble:
		b, err := d.rd.readFull(path, 8)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	case tagBoolean:
		b, err := d.rd.readByte(path)
		if err != nil {
			return nil, err
		}
		return b != 0, nil
	case tagChar:
		u, err := d.rd.readUint16(path)
		if err != nil {
			return nil, err
		}
		return Char(u), nil
	case tagString:
		return d.rd.readString(path)
	case tagByteArray:
		n, err := d.rd.readInt32(path)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, &InvalidDataError{Path: path, Reason: "negative byte array length"}
		}
		return d.rd.readFull(path, int(n))
	case tagUUID:
		b, err := d.rd.readFull(path, 16)
		if err != nil {
			return nil, err
		}
		var u UUID
		copy(u[:], b)
		return u, nil
	case tagDate:
		return d.decodeMillis(path, func(t time.Time) interface{} { return t })
	case tagJodaDateTime:
		return d.decodeMillis(path, func(t time.Time) interface{} { return JodaDateTime(t) })
	case tagLocalDate:
		day, err := d.rd.readInt64(path)
		if err != nil {
			return nil, err
		}
		return LocalDate(dateFromEpochDay(day)), nil
	case tagLocalDateTime:
		return d.decodeISODateTime(path, func(t time.Time) interface{} { return LocalDateTime(t) })
	case tagLocalTime:
		return d.decodeISOTime(path, func(dur time.Duration) interface{} { return LocalTime(dur) })
	case tagDuration:
		s, err := d.rd.readString(path)
		if err != nil {
			return nil, err
		}
		dur, perr := parseISODuration(s)
		if perr != nil {
			return nil, &InvalidDataError{Path: path, Reason: perr.Error()}
		}
		return dur, nil
	case tagPeriod:
		s, err := d.rd.readString(path)
		if err != nil {
			return nil, err
		}
		p, perr := parseISOPeriod(s)
		if perr != nil {
			return nil, &InvalidDataError{Path: path, Reason: perr.Error()}
		}
		return p, nil
	case tagJodaLocalDate:
		s, err := d.rd.readString(path)
		if err != nil {
			return nil, err
		}
		t, perr := time.Parse(isoDateLayout, s)
		if perr != nil {
			return nil, &InvalidDataError{Path: path, Reason: perr.Error()}
		}
		return JodaLocalDate(t), nil
	case tagJodaLocalDateTime:
		return d.decodeISODateTime(path, func(t time.Time) interface{} { return JodaLocalDateTime(t) })
	case tagJodaLocalTime:
		return d.decodeISOTime(path, func(dur time.Duration) interface{} { return JodaLocalTime(dur) })
	case tagJodaDuration:
		s, err := d.rd.readString(path)
		if err != nil {
			return nil, err
		}
		dur, perr := parseISODuration(s)
		if perr != nil {
			return nil, &InvalidDataError{Path: path, Reason: perr.Error()}
		}
		return JodaDuration(dur), nil
	case tagJodaPeriod:
		s, err := d.rd.readString(path)
		if err != nil {
			return nil, err
		}
		p, perr := parseISOPeriod(s)
		if perr != nil {
			return nil, &InvalidDataError{Path: path, Reason: perr.Error()}
		}
		return JodaPeriod(p), nil
	case tagJodaInterval:
		return d.decodeInterval(path)
	case tagArray:
		return d.decodeArray(path)
	case tagList:
		return d.decodeList(path)
	case tagSet:
		return d.decodeSet(path)
	case tagMap:
		return d.decodeMap(path)
	case tagEnum:
		return d.decodeEnum(path)
	case tagReference:
		return d.decodeReference(path)
	case tagRecord:
		return d.decodeRecord(path, target)
	default:
		return nil, &UnsupportedTagError{Path: path, Tag: tag}
	}
}

func (d *decoder) decodeMillis(path string, wrap func(time.Time) interface{}) (interface{}, error) {
	ms, err := d.rd.readInt64(path)
	if err != nil {
		return nil, err
	}
	return wrap(time.Unix(0, ms*int64(time.Millisecond)).UTC()), nil
}

func (d *decoder) decodeISODateTime(path string, wrap func(time.Time) interface{}) (interface{}, error) {
	s, err := d.rd.readString(path)
	if err != nil {
		return nil, err
	}
	t, perr := time.Parse(isoDateTimeLayout, s)
	if perr != nil {
		return nil, &InvalidDataError{Path: path, Reason: perr.Error()}
	}
	return wrap(t), nil
}

func (d *decoder) decodeISOTime(path string, wrap func(time.Duration) interface{}) (interface{}, error) {
	s, err := d.rd.readString(path)
	if err != nil {
		return nil, err
	}
	dur, perr := parseLocalTime(s)
	if perr != nil {
		return nil, &InvalidDataError{Path: path, Reason: perr.Error()}
	}
	return wrap(dur), nil
}

func (d *decoder) decodeInterval(path string) (interface{}, error) {
	s, err := d.rd.readString(path)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return nil, &InvalidDataError{Path: path, Reason: "malformed interval"}
	}
	start, err1 := time.Parse(isoDateTimeLayout, parts[0])
	end, err2 := time.Parse(isoDateTimeLayout, parts[1])
	if err1 != nil || err2 != nil {
		return nil, &InvalidDataError{Path: path, Reason: "malformed interval timestamp"}
	}
	return JodaInterval{Start: start, End: end}, nil
}

// decodeArray reconstructs a fixed-length Go array of the named component
// type, falling back to interface{} elements when the component class was
// never registered.
func (d *decoder) decodeArray(path string) (interface{}, error) {
	n, err := d.rd.readInt32(path)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, &InvalidDataError{Path: path, Reason: "negative array length"}
	}
	compName, err := d.rd.readString(path)
	if err != nil {
		return nil, err
	}
	compType := typeFromName(compName)
	arrType := reflect.ArrayOf(int(n), compType)
	out := reflect.New(arrType).Elem()
	for i := 0; i < int(n); i++ {
		v, err := d.decodeValue(catpath(path, fmt.Sprintf("[%d]", i)), nil)
		if err != nil {
			return nil, err
		}
		if err := assignInto(out.Index(i), v); err != nil {
			return nil, &InvalidDataError{Path: path, Reason: err.Error()}
		}
	}
	return out.Interface(), nil
}

func (d *decoder) decodeList(path string) (interface{}, error) {
	n, err := d.rd.readInt32(path)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, &InvalidDataError{Path: path, Reason: "negative list length"}
	}
	out := make([]interface{}, n)
	for i := range out {
		v, err := d.decodeValue(catpath(path, fmt.Sprintf("[%d]", i)), nil)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (d *decoder) decodeSet(path string) (interface{}, error) {
	n, err := d.rd.readInt32(path)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, &InvalidDataError{Path: path, Reason: "negative set length"}
	}
	out := make(map[interface{}]struct{}, n)
	for i := 0; i < int(n); i++ {
		v, err := d.decodeValue(catpath(path, fmt.Sprintf("{%d}", i)), nil)
		if err != nil {
			return nil, err
		}
		out[v] = struct{}{}
	}
	return out, nil
}

func (d *decoder) decodeMap(path string) (interface{}, error) {
	n, err := d.rd.readInt32(path)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, &InvalidDataError{Path: path, Reason: "negative map length"}
	}
	out := make(map[interface{}]interface{}, n)
	for i := 0; i < int(n); i++ {
		k, err := d.decodeValue(catpath(path, fmt.Sprintf("<key%d>", i)), nil)
		if err != nil {
			return nil, err
		}
		v, err := d.decodeValue(catpath(path, fmt.Sprintf("<val%d>", i)), nil)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (d *decoder) decodeEnum(path string) (interface{}, error) {
	typeName, err := d.rd.readString(path)
	if err != nil {
		return nil, err
	}
	constName, err := d.rd.readString(path)
	if err != nil {
		return nil, err
	}
	desc, ok := lookupEnum(typeName)
	if !ok {
		d.opts.logger.Warnf("boson: %s: enum type %q is not registered, yielding constant name only", path, typeName)
		return constName, nil
	}
	v, ok := desc.byName[constName]
	if !ok {
		if d.opts.strictEnums {
			return nil, &UnknownEnumConstantError{TypeName: typeName, ConstantName: constName}
		}
		d.opts.logger.Warnf("boson: %s: enum %q has no constant %q, substituting zero value", path, typeName, constName)
		return desc.zeroValue, nil
	}
	return v, nil
}

func (d *decoder) decodeReference(path string) (interface{}, error) {
	id, err := d.rd.readInt32(path)
	if err != nil {
		return nil, err
	}
	v, ok := d.refs.resolve(id)
	if !ok {
		return nil, &DanglingReferenceError{Path: path, Ref: id}
	}
	return v, nil
}

// decodeRecord is the load-bearing piece spec.md §4.3 describes: the
// reference-table entry is registered the instant the class is resolved
// and a blank instance allocated, strictly before any field payload is
// read, so a field that points back to this same record resolves to the
// same Go pointer instead of recursing (I3).
func (d *decoder) decodeRecord(path string, target interface{}) (interface{}, error) {
	id, err := d.rd.readInt32(path)
	if err != nil {
		return nil, err
	}
	className, err := d.rd.readString(path)
	if err != nil {
		return nil, err
	}
	fieldCount, err := d.rd.readInt32(path)
	if err != nil {
		return nil, err
	}
	if fieldCount < 0 {
		return nil, &InvalidDataError{Path: path, Reason: "negative field count"}
	}

	if d.opts.readRecordsAsMap && target == nil {
		m := make(map[string]interface{}, fieldCount)
		d.refs.register(id, m)
		for i := 0; i < int(fieldCount); i++ {
			name, err := d.rd.readString(path)
			if err != nil {
				return nil, err
			}
			v, err := d.decodeValue(catpath(path, name), nil)
			if err != nil {
				return nil, err
			}
			m[name] = v
		}
		return m, nil
	}

	var rv reflect.Value
	if target != nil {
		tv := reflect.ValueOf(target)
		if tv.Kind() != reflect.Ptr || tv.IsNil() {
			return nil, &CannotConstructError{ClassName: className, Reason: "target must be a non-nil pointer"}
		}
		rv = tv.Elem()
	} else {
		t, ok := lookupType(className)
		if !ok {
			return nil, &MissingClassError{ClassName: className}
		}
		rv = reflect.New(t).Elem()
	}

	ptr := rv.Addr().Interface()
	d.refs.register(id, ptr)

	desc := describe(rv.Type())
	byName := make(map[string]slot, len(desc.slots))
	for _, s := range desc.slots {
		byName[s.name] = s
	}

	for i := 0; i < int(fieldCount); i++ {
		name, err := d.rd.readString(path)
		if err != nil {
			return nil, err
		}
		fieldPath := catpath(path, name)
		s, known := byName[name]
		if !known {
			if _, err := d.decodeValue(fieldPath, nil); err != nil {
				return nil, err
			}
			d.opts.logger.Warnf("boson: %s: unknown field %q on %s, skipping", path, name, className)
			continue
		}
		fv := fieldByIndex(rv, s.index, true)
		if !fv.IsValid() {
			if _, err := d.decodeValue(fieldPath, nil); err != nil {
				return nil, err
			}
			continue
		}
		dst := fv
		if !s.exported {
			dst = forceAccessible(fv)
		}
		val, err := d.decodeValue(fieldPath, nil)
		if err != nil {
			return nil, err
		}
		if err := assignInto(dst, val); err != nil {
			d.opts.logger.Warnf("boson: %s: %v, leaving zero value", fieldPath, err)
		}
	}
	return ptr, nil
}

// typeFromName maps a wire COMPONENT-TYPE-NAME (see componentTypeName)
// back to the Go type used to build a decoded ARRAY. "int" and "uint"
// become int64 and uint64; any name that isn't a recognized primitive kind
// or a class registered with RegisterType (for example "ptr", "slice" or
// "interface") becomes interface{}.
func typeFromName(name string) reflect.Type {
	switch name {
	case "int8":
		return reflect.TypeOf(int8(0))
	case "int16":
		return reflect.TypeOf(int16(0))
	case "int32":
		return reflect.TypeOf(int32(0))
	case "int", "int64":
		return reflect.TypeOf(int64(0))
	case "uint8":
		return reflect.TypeOf(uint8(0))
	case "uint16":
		return reflect.TypeOf(uint16(0))
	case "uint32":
		return reflect.TypeOf(uint32(0))
	case "uint", "uint64":
		return reflect.TypeOf(uint64(0))
	case "float32":
		return reflect.TypeOf(float32(0))
	case "float64":
		return reflect.TypeOf(float64(0))
	case "bool":
		return reflect.TypeOf(false)
	case "string":
		return reflect.TypeOf("")
	}
	if t, ok := lookupType(name); ok {
		return t
	}
	return reflect.TypeOf((*interface{})(nil)).Elem()
}

// assignInto coerces a decoded value into dst, widening numeric kinds the
// way the teacher's own coercion rules did (see coercion_test.go) rather
// than demanding an exact type match.
func assignInto(dst reflect.Value, v interface{}) error {
	if !dst.CanSet() {
		return nil
	}
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	rv := reflect.ValueOf(v)
	if dst.Kind() == reflect.Interface {
		dst.Set(rv)
		return nil
	}
	if rv.Type().AssignableTo(dst.Type()) {
		dst.Set(rv)
		return nil
	}
	if rv.Type().ConvertibleTo(dst.Type()) {
		switch dst.Kind() {
		case reflect.String, reflect.Slice, reflect.Array, reflect.Map, reflect.Struct, reflect.Ptr:
			return fmt.Errorf("cannot coerce %s to %s", rv.Type(), dst.Type())
		}
		dst.Set(rv.Convert(dst.Type()))
		return nil
	}
	return fmt.Errorf("cannot coerce %s to %s", rv.Type(), dst.Type())
}
