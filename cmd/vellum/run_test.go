package main

import (
	"reflect"
	"testing"

	"github.com/vellum-lang/vellum/value"
)

func TestSplitArgs(t *testing.T) {
	files, call := splitArgs([]string{"a.vel", "b.vel", "--", "1", "2"})
	if !reflect.DeepEqual(files, []string{"a.vel", "b.vel"}) {
		t.Fatalf("files = %v", files)
	}
	if !reflect.DeepEqual(call, []string{"1", "2"}) {
		t.Fatalf("call = %v", call)
	}

	files, call = splitArgs([]string{"a.vel"})
	if !reflect.DeepEqual(files, []string{"a.vel"}) || call != nil {
		t.Fatalf("files = %v, call = %v", files, call)
	}
}

func TestParseArg(t *testing.T) {
	if v := parseArg("true"); v.Kind() != value.KindBool || !v.AsBool() {
		t.Fatalf("got %v", v)
	}
	if v := parseArg("42"); v.Kind() != value.KindInt || v.AsInt() != 42 {
		t.Fatalf("got %v", v)
	}
	if v := parseArg("3.5"); v.Kind() != value.KindFloat || v.AsFloat() != 3.5 {
		t.Fatalf("got %v", v)
	}
}
