// Copyright 2013 Seth Bunce. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package boson

import (
	"reflect"
	"testing"
)

type fieldInner struct {
	Tagged   string `boson:"renamed"`
	Ignored  string `boson:"-"`
	Commaed  string `boson:",ignore"`
	Plain    int
	hidden   string
}

type fieldOuter struct {
	fieldInner
	Own string
}

type fieldOuterNoPromote struct {
	fieldInner `boson:"-"`
	Own        string
}

func TestBuildSlotsDirectives(t *testing.T) {
	d := describe(reflect.TypeOf(fieldOuter{}))
	names := map[string]bool{}
	for _, s := range d.slots {
		names[s.name] = true
	}
	if !names["renamed"] {
		t.Errorf("expected renamed field to appear as %q", "renamed")
	}
	if names["Ignored"] || names["Commaed"] {
		t.Errorf("expected ignore directives to drop fields, got %v", names)
	}
	if !names["Plain"] || !names["Own"] {
		t.Errorf("expected Plain and Own to be present, got %v", names)
	}
	if !names["hidden"] {
		t.Errorf("unexported field should still carry its Go name, not be absent from the descriptor: %v", names)
	}
}

func TestBuildSlotsIgnoredEmbed(t *testing.T) {
	d := describe(reflect.TypeOf(fieldOuterNoPromote{}))
	for _, s := range d.slots {
		if s.name == "renamed" || s.name == "Plain" {
			t.Errorf("boson:\"-\" on the embedded field should suppress promotion entirely, found %q", s.name)
		}
	}
	if len(d.slots) != 1 || d.slots[0].name != "Own" {
		t.Errorf("expected only Own to survive, got %+v", d.slots)
	}
}

func TestDescribeCaches(t *testing.T) {
	a := describe(reflect.TypeOf(fieldOuter{}))
	b := describe(reflect.TypeOf(fieldOuter{}))
	if a != b {
		t.Errorf("describe should return the cached descriptor on repeat calls")
	}
}

func TestForceAccessibleRoundTrips(t *testing.T) {
	v := fieldInner{hidden: "secret"}
	rv := reflect.ValueOf(&v).Elem()
	fv := rv.FieldByName("hidden")
	got := forceAccessible(fv)
	if got.String() != "secret" {
		t.Fatalf("forceAccessible: got %q, want %q", got.String(), "secret")
	}
	got.SetString("changed")
	if v.hidden != "changed" {
		t.Fatalf("forceAccessible field should be settable, got %q", v.hidden)
	}
}
