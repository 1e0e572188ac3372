// Copyright 2013 Seth Bunce. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package boson

import (
	"bytes"
	"crypto/md5"
	"crypto/rand"
	"encoding/binary"
	"os"
	"reflect"
	"strings"
	"sync/atomic"
	"time"
)

// Last count used by NewUUID's fallback path.
var lastCount int32

// catpath concatenates name to path for error reporting.
func catpath(path, name string) string {
	if path == "" {
		return name
	}
	return strings.Join([]string{path, name}, ".")
}

// indirect follows pointers and interfaces down to the concrete value.
func indirect(v reflect.Value) reflect.Value {
loop:
	for {
		switch v.Kind() {
		case reflect.Interface, reflect.Ptr:
			if v.IsNil() {
				break loop
			}
			v = v.Elem()
		default:
			break loop
		}
	}
	return v
}

// indirectAlloc follows pointers/interfaces, allocating as it goes.
func indirectAlloc(v reflect.Value) reflect.Value {
loop:
	for {
		switch v.Kind() {
		case reflect.Interface:
			if v.IsNil() {
				break loop
			}
			v = v.Elem()
		case reflect.Ptr:
			if v.IsNil() {
				if !v.CanSet() {
					break loop
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		default:
			break loop
		}
	}
	return v
}

// NewUUID creates a random (v4-shaped) UUID using crypto/rand, falling back
// to a time+host+counter derived value if the system entropy source ever
// fails (the same fallback shape the teacher used for ObjectId generation).
func NewUUID() (UUID, error) {
	var u UUID
	if _, err := rand.Read(u[:]); err == nil {
		u[6] = (u[6] & 0x0f) | 0x40 // version 4
		u[8] = (u[8] & 0x3f) | 0x80 // RFC 4122 variant
		return u, nil
	}

	buf := bytes.NewBuffer(make([]byte, 0, 16))
	if err := binary.Write(buf, binary.BigEndian, int64(time.Now().UnixNano())); err != nil {
		return u, wrapIO(err, "deriving fallback uuid timestamp")
	}
	name, err := os.Hostname()
	if err != nil {
		return u, wrapIO(err, "deriving fallback uuid host component")
	}
	hash := md5.Sum([]byte(name))
	buf.Write(hash[:4])
	cnt := atomic.AddInt32(&lastCount, 1)
	if err := binary.Write(buf, binary.BigEndian, cnt); err != nil {
		return u, wrapIO(err, "deriving fallback uuid counter")
	}
	copy(u[:], buf.Bytes()[:16])
	return u, nil
}
