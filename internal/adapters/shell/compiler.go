// Package shell runs external tools, currently the LESS compiler.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultCompiler is the LESS compiler used when none is configured.
const DefaultCompiler = "lessc"

var _ ports.StyleCompiler = (*Compiler)(nil)

// Compiler implements ports.StyleCompiler by piping the source through lessc.
type Compiler struct {
	logger ports.Logger
}

// NewCompiler creates a new Compiler.
func NewCompiler(logger ports.Logger) *Compiler {
	return &Compiler{logger: logger}
}

// Compile feeds source to the compiler on stdin and returns its stdout.
// Executables installed in node_modules/.bin at or above dir take precedence
// over the system PATH.
func (c *Compiler) Compile(ctx context.Context, source, dir string, cfg domain.LessConfig) ([]byte, error) {
	name := cfg.Compiler
	if name == "" {
		name = DefaultCompiler
	}

	cmdEnv := resolveEnvironment(os.Environ(), binDirs(dir))

	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	args := append(slices.Clone(cfg.Args), "-")
	cmd := exec.CommandContext(ctx, executable, args...) //nolint:gosec // compiler is user configured

	// exec.CommandContext sets Args[0] to the executable path.
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}

	cmd.Dir = dir
	cmd.Env = cmdEnv
	cmd.Stdin = strings.NewReader(source)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout

	var diagnostics io.Writer = &logWriter{logger: c.logger}
	if v, ok := ports.VertexFromContext(ctx); ok {
		diagnostics = v.Stderr()
	}
	cmd.Stderr = io.MultiWriter(&stderr, diagnostics)

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		failure := zerr.With(errors.Join(domain.ErrStyleCompileFailed, err), "compiler", name)
		failure = zerr.With(failure, "exit_code", exitCode)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			failure = zerr.With(failure, "stderr", msg)
		}
		return nil, failure
	}

	return stdout.Bytes(), nil
}

// logWriter forwards compiler diagnostics to the logger as warnings.
type logWriter struct {
	logger ports.Logger
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	for line := range strings.SplitSeq(strings.TrimSuffix(string(p), "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			w.logger.Warn(line)
		}
	}
	return len(p), nil
}

// binDirs returns the node_modules/.bin directories at and above dir, nearest first.
func binDirs(dir string) []string {
	if dir == "" {
		return nil
	}

	var dirs []string
	for current := filepath.Clean(dir); ; {
		bin := filepath.Join(current, "node_modules", ".bin")
		if info, err := os.Stat(bin); err == nil && info.IsDir() {
			dirs = append(dirs, bin)
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return dirs
}

// resolveEnvironment returns sysEnv with extraPath prepended to PATH.
func resolveEnvironment(sysEnv, extraPath []string) []string {
	if len(extraPath) == 0 {
		return sysEnv
	}

	prefix := strings.Join(extraPath, string(os.PathListSeparator))
	result := make([]string, 0, len(sysEnv)+1)
	found := false
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok && k == "PATH" {
			found = true
			if v != "" {
				entry = k + "=" + prefix + string(os.PathListSeparator) + v
			} else {
				entry = k + "=" + prefix
			}
		}
		result = append(result, entry)
	}
	if !found {
		result = append(result, "PATH="+prefix)
	}
	return result
}

// lookPath searches for an executable in the directories named by the PATH environment variable.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
