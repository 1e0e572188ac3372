// Copyright 2013 Seth Bunce. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package boson

import (
	"fmt"
	"reflect"
)

// Reach navigates into a value produced by Decode (a map[string]interface{}
// record, a nested map/list/set, or a *struct instance) following a
// sequence of dot-path names, and assigns whatever it finds into dst.
//
// Reach exists for the same reason the teacher's Map/Slice.Reach did: code
// that only cares about one deeply nested value shouldn't have to
// type-assert its way down through every intermediate layer by hand.
//
//	root, _ := boson.Decode(msg, boson.WithReadRecordsAsMap())
//	var name string
//	ok, err := boson.Reach(root, &name, "user", "name")
func Reach(root interface{}, dst interface{}, dot ...string) (bool, error) {
	if dst == nil {
		return false, fmt.Errorf("boson: Reach: dst must not be nil")
	}
	src := reach(root, dot...)
	if src == nil {
		return false, nil
	}
	dstrv := indirectAlloc(reflect.ValueOf(dst))
	if err := assignInto(dstrv, src); err != nil {
		return false, err
	}
	return true, nil
}

func reach(cur interface{}, dot ...string) interface{} {
	path := ""
	for _, name := range dot {
		path = catpath(path, name)
		next, ok := step(cur, name)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// step descends one path segment into cur, which may be any shape Decode
// can produce (record-as-map, list, set/map with interface{} keys, or a
// *struct reached via RegisterType).
func step(cur interface{}, name string) (interface{}, bool) {
	rv := indirect(reflect.ValueOf(cur))
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Map:
		key := reflect.ValueOf(name)
		if rv.Type().Key().Kind() == reflect.Interface {
			key = reflect.ValueOf(interface{}(name))
		}
		if !key.Type().AssignableTo(rv.Type().Key()) {
			return nil, false
		}
		v := rv.MapIndex(key)
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Struct:
		desc := describe(rv.Type())
		for _, s := range desc.slots {
			if s.name != name {
				continue
			}
			fv := fieldByIndex(rv, s.index, false)
			if !fv.IsValid() {
				return nil, false
			}
			if !s.exported {
				fv = forceAccessible(fv)
			}
			return fv.Interface(), true
		}
		return nil, false
	case reflect.Slice, reflect.Array:
		idx, err := parseIndex(name)
		if err != nil || idx < 0 || idx >= rv.Len() {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	default:
		return nil, false
	}
}

func parseIndex(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	return n, nil
}
