package build

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// detailLines bounds how much compiler output a failed Result keeps.
const detailLines = 20

// Binary returns the cargo executable: $CARGO when set (cargo exports it to
// subcommands), otherwise "cargo" from PATH.
func Binary() string {
	if c := os.Getenv("CARGO"); c != "" {
		return c
	}
	return "cargo"
}

// Cargo runs `cargo build` as a subprocess.
type Cargo struct {
	// Binary overrides [Binary].
	Binary string
	Logger *log.Logger // nil means log.Default()
}

// NewCargo returns a verifier using the cargo from [Binary].
func NewCargo(logger *log.Logger) *Cargo {
	if logger == nil {
		logger = log.Default()
	}
	return &Cargo{Binary: Binary(), Logger: logger}
}

// Build implements [Verifier].
func (c *Cargo) Build(ctx context.Context, manifestPath string, opts Options) Result {
	if err := ctx.Err(); err != nil {
		return Result{Detail: err.Error()}
	}

	args := Args(manifestPath, opts)
	c.logger().Debug("cargo build", "args", strings.Join(args, " "))

	var stderr bytes.Buffer
	cmd := exec.Command(c.Binary, args...)
	cmd.Dir = filepath.Dir(manifestPath)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := tail(stderr.String(), detailLines)
		if detail == "" {
			detail = err.Error()
		}
		return Result{Detail: detail}
	}
	return Result{Success: true}
}

func (c *Cargo) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

// Args returns the cargo arguments for a build of manifestPath.
//
// Library plus binaries is cargo's default selection and needs no flags;
// every kind at once maps to --all-targets. Both forms tolerate packages
// that lack a kind, which explicit --lib does not.
func Args(manifestPath string, opts Options) []string {
	args := []string{"build", "--manifest-path", manifestPath, "--quiet"}

	switch kinds := opts.Kinds(); {
	case len(kinds) == 5:
		args = append(args, "--all-targets")
	case len(kinds) == 2 && opts.Lib && opts.Bins:
	default:
		for _, k := range kinds {
			args = append(args, "--"+k)
		}
	}

	if opts.Jobs > 0 {
		args = append(args, "--jobs", strconv.Itoa(opts.Jobs))
	}
	for _, t := range opts.Targets {
		args = append(args, "--target", t)
	}
	return args
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
