// Copyright 2013 Seth Bunce. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package boson

import (
	"testing"
	"time"
)

// TestDateRoundTrip is spec.md P10 for tag 19 (date): millisecond
// precision, epoch-millis on the wire.
func TestDateRoundTrip(t *testing.T) {
	in := time.Date(2024, 3, 15, 10, 30, 0, 123_000_000, time.UTC)
	wire, err := Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(wire)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := out.(time.Time)
	if !ok {
		t.Fatalf("expected time.Time, got %T", out)
	}
	if !got.Equal(in) {
		t.Fatalf("got %v, want %v", got, in)
	}
}

func TestLocalDateRoundTrip(t *testing.T) {
	in := LocalDate(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	wire, err := Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(wire)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := out.(LocalDate)
	if !ok {
		t.Fatalf("expected LocalDate, got %T", out)
	}
	if !time.Time(got).Equal(time.Time(in)) {
		t.Fatalf("got %v, want %v", got, in)
	}
}

func TestLocalDateTimeRoundTrip(t *testing.T) {
	in := LocalDateTime(time.Date(2024, 3, 15, 10, 30, 45, 500_000_000, time.UTC))
	wire, err := Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(wire)
	if err != nil {
		t.Fatal(err)
	}
	got := out.(LocalDateTime)
	if !time.Time(got).Equal(time.Time(in)) {
		t.Fatalf("got %v, want %v", got, in)
	}
}

func TestLocalTimeRoundTrip(t *testing.T) {
	in := LocalTime(13*time.Hour + 45*time.Minute + 30*time.Second)
	wire, err := Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(wire)
	if err != nil {
		t.Fatal(err)
	}
	got := out.(LocalTime)
	if got != in {
		t.Fatalf("got %v, want %v", time.Duration(got), time.Duration(in))
	}
}

func TestDurationRoundTrip(t *testing.T) {
	cases := []time.Duration{
		0,
		90 * time.Second,
		2*time.Hour + 3*time.Minute + 4*time.Second,
		-5 * time.Minute,
	}
	for _, in := range cases {
		wire, err := Encode(in)
		if err != nil {
			t.Fatalf("Encode(%v): %v", in, err)
		}
		out, err := Decode(wire)
		if err != nil {
			t.Fatalf("Decode(%v): %v", in, err)
		}
		if out.(time.Duration) != in {
			t.Fatalf("got %v, want %v", out, in)
		}
	}
}

func TestPeriodRoundTrip(t *testing.T) {
	in := Period{Years: 1, Months: 2, Days: 3}
	wire, err := Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(wire)
	if err != nil {
		t.Fatal(err)
	}
	if out.(Period) != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestJodaDateTimeRoundTrip(t *testing.T) {
	in := JodaDateTime(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC))
	wire, err := Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(wire)
	if err != nil {
		t.Fatal(err)
	}
	got := out.(JodaDateTime)
	if !time.Time(got).Equal(time.Time(in)) {
		t.Fatalf("got %v, want %v", got, in)
	}
}

func TestJodaIntervalRoundTrip(t *testing.T) {
	start := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)
	in := JodaInterval{Start: start, End: end}
	wire, err := Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(wire)
	if err != nil {
		t.Fatal(err)
	}
	got := out.(JodaInterval)
	if !got.Start.Equal(start) || !got.End.Equal(end) {
		t.Fatalf("got %+v, want {%v %v}", got, start, end)
	}
}

func TestUUIDRoundTrip(t *testing.T) {
	u, err := NewUUID()
	if err != nil {
		t.Fatal(err)
	}
	wire, err := Encode(u)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(wire)
	if err != nil {
		t.Fatal(err)
	}
	if out.(UUID) != u {
		t.Fatalf("got %v, want %v", out, u)
	}
	if len(wire) != 1+1+16 {
		t.Fatalf("uuid wire length = %d, want %d (version+tag+16 raw bytes)", len(wire), 18)
	}
}

func TestUUIDStringRoundTrip(t *testing.T) {
	u, err := NewUUID()
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := ParseUUID(u.String())
	if err != nil {
		t.Fatal(err)
	}
	if parsed != u {
		t.Fatalf("ParseUUID(String()) = %v, want %v", parsed, u)
	}
}
