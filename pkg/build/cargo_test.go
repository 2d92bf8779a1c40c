package build

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
)

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "defaults",
			opts: Options{Lib: true, Bins: true},
			want: []string{"build", "--manifest-path", "/p/Cargo.toml", "--quiet"},
		},
		{
			name: "all kinds",
			opts: Options{}.AllKinds(),
			want: []string{"build", "--manifest-path", "/p/Cargo.toml", "--quiet", "--all-targets"},
		},
		{
			name: "lib and tests",
			opts: Options{Lib: true, Tests: true},
			want: []string{"build", "--manifest-path", "/p/Cargo.toml", "--quiet", "--lib", "--tests"},
		},
		{
			name: "jobs and targets",
			opts: Options{Lib: true, Bins: true, Jobs: 4, Targets: []string{"wasm32-unknown-unknown", "x86_64-unknown-linux-gnu"}},
			want: []string{
				"build", "--manifest-path", "/p/Cargo.toml", "--quiet",
				"--jobs", "4",
				"--target", "wasm32-unknown-unknown",
				"--target", "x86_64-unknown-linux-gnu",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Args("/p/Cargo.toml", tt.opts); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Args() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if !o.Lib || !o.Bins || o.Tests || o.Benches || o.Examples {
		t.Errorf("unexpected kinds %v", o.Kinds())
	}
	if o.Jobs != runtime.NumCPU() {
		t.Errorf("Jobs = %d, want %d", o.Jobs, runtime.NumCPU())
	}
	if len(o.Targets) != 0 {
		t.Errorf("Targets = %v, want host", o.Targets)
	}
}

func TestAllKindsCopiesTargets(t *testing.T) {
	o := Options{Targets: []string{"a"}}
	all := o.AllKinds()
	all.Targets[0] = "b"
	if o.Targets[0] != "a" {
		t.Error("AllKinds must not share the target slice")
	}
}

func TestBinary(t *testing.T) {
	t.Setenv("CARGO", "/opt/cargo/bin/cargo")
	if got := Binary(); got != "/opt/cargo/bin/cargo" {
		t.Errorf("Binary() = %s", got)
	}
	t.Setenv("CARGO", "")
	if got := Binary(); got != "cargo" {
		t.Errorf("Binary() = %s", got)
	}
}

// fakeCargo writes a shell script standing in for cargo.
func fakeCargo(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "cargo")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCargoBuild(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "Cargo.toml")

	ok := &Cargo{Binary: fakeCargo(t, "exit 0")}
	if r := ok.Build(context.Background(), manifest, DefaultOptions()); !r.Success {
		t.Errorf("expected success, got %+v", r)
	}

	fail := &Cargo{Binary: fakeCargo(t, `echo "error[E0432]: unresolved import" >&2; exit 101`)}
	r := fail.Build(context.Background(), manifest, DefaultOptions())
	if r.Success || !strings.Contains(r.Detail, "E0432") {
		t.Errorf("expected failure with compiler detail, got %+v", r)
	}
}

func TestCargoBuildCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Cargo{Binary: fakeCargo(t, "exit 0")}
	if r := c.Build(ctx, "Cargo.toml", DefaultOptions()); r.Success {
		t.Error("canceled context must not report success")
	}
}

func TestTail(t *testing.T) {
	in := strings.Repeat("line\n", 30) + "last\n"
	got := tail(in, 3)
	if got != "line\nline\nlast" {
		t.Errorf("tail = %q", got)
	}
}
