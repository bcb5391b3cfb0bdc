package models

import (
	"reflect"
	"testing"
)

func TestStringListScan(t *testing.T) {
	cases := []struct {
		name string
		src  any
		want StringList
	}{
		{"plain array", `["mix","bake"]`, StringList{"mix", "bake"}},
		{"bytes", []byte(`["mix"]`), StringList{"mix"}},
		{"double encoded", `"[\"mix\",\"bake\"]"`, StringList{"mix", "bake"}},
		{"bare string", `"just one step"`, StringList{"just one step"}},
		{"empty array", `[]`, StringList{}},
		{"empty string value", `""`, nil},
		{"nil", nil, nil},
		{"empty bytes", []byte{}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got StringList
			if err := got.Scan(tc.src); err != nil {
				t.Fatalf("scan: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("scan(%v) = %#v, want %#v", tc.src, got, tc.want)
			}
		})
	}
}

func TestStringListScanMalformed(t *testing.T) {
	var got StringList
	if err := got.Scan(`{not json`); err == nil {
		t.Fatalf("malformed column scanned without error")
	}
	if err := got.Scan(42); err == nil {
		t.Fatalf("unsupported source type scanned without error")
	}
}

func TestStringListValueRoundTrip(t *testing.T) {
	in := StringList{"mix", "bake", "serve"}
	v, err := in.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var out StringList
	if err := out.Scan(v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("round trip = %#v, want %#v", out, in)
	}
}

func TestStringListNilValue(t *testing.T) {
	var in StringList
	v, err := in.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != "[]" {
		t.Fatalf("nil list value = %v, want empty array", v)
	}
}
