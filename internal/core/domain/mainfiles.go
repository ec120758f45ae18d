package domain

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// MainFileOptions selects which entry files FindMainFiles returns.
type MainFileOptions struct {
	// Extension selects files by extension, for example ".js" or ".less".
	Extension string
	// Filename selects files by base name. It also implies the extension.
	Filename string
	// MainFields are the general entry fields consulted after the kind field.
	// Defaults to ["main"].
	MainFields []string
	// Warn receives messages about entry fields that are ignored.
	Warn func(msg string)
}

type entryState int

const (
	entryMissing entryState = iota
	entryFound
	entryDisabled
	entryUnsupported
)

// FindMainFiles returns the package's entry files of one kind, relative to the
// package directory.
//
// The kind field is consulted first: "js", "less", or for stylesheets "css"
// falling back to "style". The general MainFields follow. The first field that
// yields a value wins. A field explicitly set to null or false disables the
// lookup and no fallback search happens. Object values are not supported and
// are skipped with a warning.
func (p *Package) FindMainFiles(opts MainFileOptions) []string {
	ext := opts.Extension
	if opts.Filename != "" {
		ext = filepath.Ext(opts.Filename)
	}

	fields := []string{p.kindField(ext)}
	mainFields := opts.MainFields
	if len(mainFields) == 0 {
		mainFields = []string{"main"}
	}
	for _, f := range mainFields {
		if f != fields[0] {
			fields = append(fields, f)
		}
	}

	var candidates []string
	for _, field := range fields {
		entries, state := parseEntryField(p.Manifest, field)
		switch state {
		case entryDisabled:
			return nil
		case entryUnsupported:
			if opts.Warn != nil {
				opts.Warn(fmt.Sprintf("ignoring unsupported %q entry in package %q", field, p.Name))
			}
			continue
		case entryFound:
			candidates = entries
		}
		if candidates != nil {
			break
		}
	}

	files := make([]string, 0, len(candidates))
	for _, file := range candidates {
		file = path.Clean(strings.TrimPrefix(file, "./"))
		if ext == ".js" {
			file = p.normalizeScript(file)
		}
		if filepath.Base(file) == opts.Filename || filepath.Ext(file) == ext {
			files = append(files, file)
		}
	}

	if len(files) == 0 && ext == ".js" {
		for _, fallback := range []string{"index.js", p.Name + ".js"} {
			if p.fileExists(fallback) {
				return []string{fallback}
			}
		}
	}

	return files
}

func (p *Package) kindField(ext string) string {
	kind := strings.TrimPrefix(ext, ".")
	if kind == "css" {
		if _, ok := p.Manifest["css"]; !ok {
			return "style"
		}
	}
	return kind
}

// normalizeScript maps a directory entry to its index.js and adds a missing .js extension.
func (p *Package) normalizeScript(file string) string {
	if info, err := os.Stat(filepath.Join(p.Path, file)); err == nil && info.IsDir() {
		return path.Join(file, "index.js")
	}
	if path.Ext(file) == "" {
		return file + ".js"
	}
	return file
}

func (p *Package) fileExists(rel string) bool {
	info, err := os.Stat(filepath.Join(p.Path, rel))
	return err == nil && !info.IsDir()
}

func parseEntryField(m Manifest, field string) ([]string, entryState) {
	v, ok := m[field]
	if !ok {
		return nil, entryMissing
	}
	switch t := v.(type) {
	case nil:
		return nil, entryDisabled
	case bool:
		if !t {
			return nil, entryDisabled
		}
		return nil, entryUnsupported
	case string:
		if t == "" {
			return nil, entryMissing
		}
		return []string{t}, entryFound
	case []any:
		return stringList(t), entryFound
	default:
		return nil, entryUnsupported
	}
}
