// Copyright 2013 Seth Bunce. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package boson

import (
	"encoding/hex"
	"fmt"
)

// Char is a wire-level UTF-16 code unit (tag 8). Go has no native type for
// this, so callers wanting an explicit char on the wire use Char rather
// than relying on coercion from rune (which is an int32 and would dispatch
// as tag 3, "int").
type Char uint16

// UUID is a wire-level tag-32 value: 16 raw bytes in network order.
type UUID [16]byte

// String renders the canonical 8-4-4-4-12 hex form.
func (u UUID) String() string {
	var buf [36]byte
	hex.Encode(buf[0:8], u[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], u[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], u[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], u[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:36], u[10:16])
	return string(buf[:])
}

// ParseUUID parses the canonical 8-4-4-4-12 hex form produced by String.
func ParseUUID(s string) (UUID, error) {
	var u UUID
	if len(s) != 36 || s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return u, fmt.Errorf("boson: %q is not a canonical UUID", s)
	}
	groups := [][2]int{{0, 8}, {9, 13}, {14, 18}, {19, 23}, {24, 36}}
	offsets := []int{0, 4, 6, 8, 10}
	for i, g := range groups {
		if _, err := hex.Decode(u[offsets[i]:], []byte(s[g[0]:g[1]])); err != nil {
			return UUID{}, fmt.Errorf("boson: %q is not a canonical UUID: %w", s, err)
		}
	}
	return u, nil
}
