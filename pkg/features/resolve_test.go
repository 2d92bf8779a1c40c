package features

import (
	"encoding/json"
	"reflect"
	"sync"
	"testing"

	"github.com/matzehuels/featprune/pkg/manifest"
)

func TestEffective(t *testing.T) {
	g := Graph{
		"default": {"a", "b", "dep:private"},
		"a":       {},
		"b":       {"inner/std"},
		"c":       {"d", "hidden"},
		"d":       {},
	}

	tests := []struct {
		name     string
		defaults bool
		explicit []string
		want     []string
	}{
		{"no defaults no explicit", false, nil, []string{}},
		{"no defaults explicit", false, []string{"c"}, []string{"c", "d"}},
		{"defaults no explicit", true, nil, []string{"a", "b"}},
		{"defaults and explicit", true, []string{"c"}, []string{"a", "b", "c", "d"}},
		{"private explicit dropped", false, []string{"hidden", "c"}, []string{"c", "d"}},
		{"only private explicit", false, []string{"hidden"}, []string{}},
		{"explicit default", false, []string{"default"}, []string{"a", "b", "default"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Effective(tt.defaults, tt.explicit, g).Sorted()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Effective() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEffectiveMissingDefault(t *testing.T) {
	g := Graph{"a": {}}
	if got := Effective(true, nil, g); got.Len() != 0 {
		t.Errorf("expected empty set without a default feature, got %v", got.Sorted())
	}
}

func TestResolver(t *testing.T) {
	r := NewResolver(map[string]Graph{
		"x":         {"default": {"a", "b"}, "a": {}, "b": {}},
		"real-name": {"default": {"std"}, "std": {}},
	}, []string{"skipped"})

	tests := []struct {
		name   string
		dep    manifest.Dependency
		want   []string
		wantOK bool
	}{
		{
			name:   "resolved",
			dep:    manifest.Dependency{Name: "x", Package: "x", DefaultFeatures: true},
			want:   []string{"a", "b"},
			wantOK: true,
		},
		{
			name:   "renamed",
			dep:    manifest.Dependency{Name: "alias", Package: "real-name", DefaultFeatures: true},
			want:   []string{"std"},
			wantOK: true,
		},
		{
			name: "excluded",
			dep:  manifest.Dependency{Name: "skipped", Package: "skipped", DefaultFeatures: true},
		},
		{
			name: "no metadata",
			dep:  manifest.Dependency{Name: "unknown", Package: "unknown", DefaultFeatures: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.dep)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !reflect.DeepEqual(got.Sorted(), tt.want) {
				t.Errorf("Resolve() = %v, want %v", got.Sorted(), tt.want)
			}
		})
	}
}

func TestResolverConcurrent(t *testing.T) {
	r := NewResolver(map[string]Graph{"x": {"default": {"a"}, "a": {}}}, nil)
	dep := manifest.Dependency{Name: "x", Package: "x", DefaultFeatures: true}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got, ok := r.Resolve(dep); !ok || !got.Equal(NewSet("a")) {
				t.Errorf("unexpected result %v %v", got, ok)
			}
		}()
	}
	wg.Wait()
}

func TestSetOperations(t *testing.T) {
	a := NewSet("x", "y", "z")
	b := NewSet("y")

	if got := a.Difference(b).Sorted(); !reflect.DeepEqual(got, []string{"x", "z"}) {
		t.Errorf("Difference = %v", got)
	}
	if got := b.Union(NewSet("w")).Sorted(); !reflect.DeepEqual(got, []string{"w", "y"}) {
		t.Errorf("Union = %v", got)
	}
	if !a.Intersects(b) || b.Intersects(NewSet("q")) {
		t.Error("Intersects returned wrong result")
	}
	c := a.Clone()
	c.Remove("x")
	if !a.Has("x") {
		t.Error("Clone should not share storage")
	}
}

func TestSetJSON(t *testing.T) {
	data, err := json.Marshal(NewSet("b", "a"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["a","b"]` {
		t.Errorf("Marshal = %s", data)
	}

	var s Set
	if err := json.Unmarshal([]byte(`["b","a","b"]`), &s); err != nil {
		t.Fatal(err)
	}
	if !s.Equal(NewSet("a", "b")) {
		t.Errorf("Unmarshal = %v", s.Sorted())
	}

	empty, _ := json.Marshal(Set(nil))
	if string(empty) != "[]" {
		t.Errorf("nil set should encode as [], got %s", empty)
	}
}
