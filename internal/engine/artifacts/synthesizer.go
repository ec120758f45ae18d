// Package artifacts generates the modules and stylesheet sources derived from
// a package registry.
package artifacts

import (
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

const defaultExtension = "js"

// SystemFile is the bundler package config written next to the import-all module.
type SystemFile struct {
	BaseURL  string                          `json:"baseURL"`
	Packages map[string]domain.SystemPackage `json:"packages"`
}

// ImportAll describes a generated import-all module.
type ImportAll struct {
	// Imports are the module specifiers in registry order.
	Imports []string
	// System is the package config written alongside.
	System SystemFile
}

// Synthesizer writes generated artifacts through a ports.ArtifactWriter.
type Synthesizer struct {
	writer ports.ArtifactWriter
	logger ports.Logger
}

// NewSynthesizer creates a new Synthesizer.
func NewSynthesizer(writer ports.ArtifactWriter, logger ports.Logger) *Synthesizer {
	return &Synthesizer{writer: writer, logger: logger}
}

// BuildRootModule writes a module importing the root package directory.
func (s *Synthesizer) BuildRootModule(reg *domain.Registry, cfg *domain.Config) error {
	src := fmt.Sprintf("import '%s';\n", filepath.ToSlash(reg.Root))
	return s.write(cfg.Paths.RootModule, []byte(src))
}

// BuildImportAllModule writes a module importing the main script of every
// package, and the bundler package config. Entries already present in
// cfg.System.Packages are used as they are and never re-declared.
func (s *Synthesizer) BuildImportAllModule(reg *domain.Registry, cfg *domain.Config) (*ImportAll, error) {
	ignored := make(map[string]bool, len(cfg.System.ImportAllIgnore))
	for _, name := range cfg.System.ImportAllIgnore {
		ignored[name] = true
	}

	out := &ImportAll{
		System: SystemFile{
			BaseURL:  cfg.System.BaseURL,
			Packages: maps.Clone(cfg.System.Packages),
		},
	}
	if out.System.Packages == nil {
		out.System.Packages = make(map[string]domain.SystemPackage)
	}

	for pkg := range reg.Walk() {
		main := s.mainScript(pkg, cfg)
		if main == "" {
			continue
		}
		if !ignored[pkg.Name] {
			out.Imports = append(out.Imports, pkg.Name+"/"+main)
		}
		if _, declared := out.System.Packages[pkg.Name]; declared {
			continue
		}
		out.System.Packages[pkg.Name] = domain.SystemPackage{Main: main, DefaultExtension: defaultExtension}
	}

	system, err := json.MarshalIndent(out.System, "", "  ")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode package config")
	}
	if err := s.write(cfg.Paths.SystemConfig, append(system, '\n')); err != nil {
		return nil, err
	}

	var src strings.Builder
	for _, spec := range out.Imports {
		fmt.Fprintf(&src, "import '%s';\n", spec)
	}
	if err := s.write(cfg.Paths.ImportAll, []byte(src.String())); err != nil {
		return nil, err
	}

	return out, nil
}

// mainScript returns the configured main of an externally declared package,
// else the first discovered script.
func (s *Synthesizer) mainScript(pkg *domain.Package, cfg *domain.Config) string {
	if ext, ok := cfg.System.Packages[pkg.Name]; ok && ext.Main != "" {
		return ext.Main
	}
	files := pkg.FindMainFiles(domain.MainFileOptions{
		Extension:  ".js",
		MainFields: cfg.MainFields,
		Warn:       s.logger.Warn,
	})
	if len(files) == 0 {
		return ""
	}
	return files[0]
}

// LessImports returns the LESS source importing every package stylesheet in
// dependency order, with packages named in cfg.Less.Order first, followed by
// the local files and variables. It returns "" when there is nothing to import.
func (s *Synthesizer) LessImports(reg *domain.Registry, cfg *domain.Config) (string, error) {
	order, err := domain.OrderPackages(reg, cfg.Less.Order)
	if err != nil {
		return "", err
	}

	var files []domain.LessFile
	for _, name := range order {
		pkg, _ := reg.Get(name)
		for _, f := range s.stylesheets(pkg, cfg) {
			f.Name = filepath.Join(pkg.Path, f.Name)
			files = append(files, f)
		}
	}
	files = append(files, cfg.Less.Files...)

	if len(files) == 0 {
		return "", nil
	}

	var src strings.Builder
	for _, f := range files {
		src.WriteString("@import ")
		if filepath.Ext(f.Name) == ".css" {
			if f.ImportAsLess {
				src.WriteString("(less) ")
			} else {
				src.WriteString("(inline) ")
			}
		}
		fmt.Fprintf(&src, "%q;\n", filepath.ToSlash(f.Name))
	}

	for _, name := range slices.Sorted(maps.Keys(cfg.Less.Vars)) {
		variable := name
		if !strings.HasPrefix(variable, "@") {
			variable = "@" + variable
		}
		fmt.Fprintf(&src, "%s: %q;\n", variable, cfg.Less.Vars[name])
	}

	return src.String(), nil
}

// stylesheets returns the files of pkg relative to its directory: the
// configured replacement list, else its .less entries, else its .css entries.
func (s *Synthesizer) stylesheets(pkg *domain.Package, cfg *domain.Config) []domain.LessFile {
	if files, ok := cfg.Less.Packages[pkg.Name]; ok {
		return slices.Clone(files)
	}

	opts := domain.MainFileOptions{MainFields: cfg.MainFields, Warn: s.logger.Warn}
	opts.Extension = ".less"
	names := pkg.FindMainFiles(opts)
	if len(names) == 0 {
		opts.Extension = ".css"
		names = pkg.FindMainFiles(opts)
	}

	files := make([]domain.LessFile, 0, len(names))
	for _, name := range names {
		files = append(files, domain.LessFile{Name: name, ImportAsLess: true})
	}
	return files
}

func (s *Synthesizer) write(path string, data []byte) error {
	changed, err := s.writer.Write(path, data)
	if err != nil {
		return err
	}
	if changed {
		s.logger.Debug("wrote " + path)
	} else {
		s.logger.Debug("unchanged " + path)
	}
	return nil
}
