package config

import (
	"testing"
	"time"
)

func TestDeepMergeStructs(t *testing.T) {
	type Inner struct {
		Value int
		Name  string
	}
	type Outer struct {
		Inner Inner
		Count int
	}

	dst := &Outer{Inner: Inner{Value: 1, Name: "original"}, Count: 10}
	src := &Outer{Inner: Inner{Value: 2}, Count: 0}

	DeepMerge(dst, src)

	if dst.Inner.Value != 2 {
		t.Errorf("Inner.Value: got %d, want 2", dst.Inner.Value)
	}
	if dst.Inner.Name != "original" {
		t.Errorf("Inner.Name: got %s, want original", dst.Inner.Name)
	}
	if dst.Count != 10 {
		t.Errorf("Count: got %d, want 10 (zero value shouldn't override)", dst.Count)
	}
}

func TestDeepMergeMaps(t *testing.T) {
	type S struct {
		M map[string]int
	}

	dst := &S{M: map[string]int{"a": 1, "b": 2}}
	src := &S{M: map[string]int{"b": 20, "c": 3}}

	DeepMerge(dst, src)

	if dst.M["a"] != 1 || dst.M["b"] != 20 || dst.M["c"] != 3 {
		t.Errorf("M: got %v, want a=1 b=20 c=3", dst.M)
	}
}

func TestDeepMergeNilMap(t *testing.T) {
	type S struct {
		M map[string]int
	}

	dst := &S{}
	DeepMerge(dst, &S{M: map[string]int{"a": 1}})

	if dst.M["a"] != 1 {
		t.Errorf("M[a]: got %d, want 1", dst.M["a"])
	}
}

func TestDeepMergeSlices(t *testing.T) {
	type S struct {
		Items []string
	}

	dst := &S{Items: []string{"a", "b"}}
	DeepMerge(dst, &S{Items: []string{}})
	if len(dst.Items) != 2 {
		t.Errorf("Items length: got %d, want 2 (empty slice shouldn't overwrite)", len(dst.Items))
	}

	DeepMerge(dst, &S{Items: []string{"x", "y", "z"}})
	if len(dst.Items) != 3 || dst.Items[0] != "x" {
		t.Errorf("Items: got %v, want [x y z]", dst.Items)
	}
}

func TestDeepMergeMismatchedTypes(t *testing.T) {
	type A struct{ V int }
	type B struct{ V int }

	dst := &A{V: 1}
	DeepMerge(dst, &B{V: 2})
	DeepMerge(dst, (*A)(nil))

	if dst.V != 1 {
		t.Errorf("V: got %d, want 1", dst.V)
	}
}

func TestDeepMergeConfig(t *testing.T) {
	dst := DefaultConfig()
	src := &Config{
		Themes: ThemesConfig{Active: "codicons", Debounce: time.Second},
		Log:    LogConfig{Format: "json"},
	}

	DeepMerge(dst, src)

	if dst.Themes.Active != "codicons" {
		t.Errorf("Themes.Active: got %s, want codicons", dst.Themes.Active)
	}
	if dst.Themes.Debounce != time.Second {
		t.Errorf("Themes.Debounce: got %v, want 1s", dst.Themes.Debounce)
	}
	if dst.Log.Format != "json" || dst.Log.Level != "info" {
		t.Errorf("Log: got %+v, want json/info", dst.Log)
	}
	if dst.Cache.Documents != 32 {
		t.Errorf("Cache.Documents should retain default: got %d", dst.Cache.Documents)
	}
}
