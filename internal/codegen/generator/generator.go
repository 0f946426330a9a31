package generator

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/scenarium/worlder/internal/codegen/meta"
	"github.com/scenarium/worlder/internal/codegen/scanner"
)

// DefaultOutput is the base name of the generated file written next to the
// definition files of a package.
const DefaultOutput = "zz_generated.worlder.go"

// Config controls a generation run.
type Config struct {
	Output   string        // generated file base name, DefaultOutput when empty
	Defaults meta.Defaults // project-wide framework/client paths
	DryRun   bool          // print instead of writing
	Stdout   io.Writer     // dry run sink, os.Stdout when nil
}

type Generator struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Generator {
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	return &Generator{cfg: cfg, logger: logger}
}

// Run generates worlds for every package under the given roots. A root
// ending in /... recurses. Every package is attempted; the run fails at the
// end if any of them did.
func (g *Generator) Run(roots []string) error {
	dirs, err := expandRoots(roots)
	if err != nil {
		return err
	}

	var failed int
	for _, dir := range dirs {
		if err := g.GeneratePackage(dir); err != nil {
			failed++
			g.logger.Error("Generation failed", "dir", dir, "error", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d package(s) failed", failed, len(dirs))
	}
	return nil
}

// GeneratePackage scans one package directory and rewrites its generated
// file. A package that stopped declaring worlds gets its stale generated
// file removed.
func (g *Generator) GeneratePackage(dir string) error {
	pkg, err := scanner.ScanPackage(dir)
	if err != nil {
		return err
	}

	outputPath := filepath.Join(dir, g.cfg.Output)
	if len(pkg.Worlds) == 0 {
		if _, err := os.Stat(outputPath); err == nil {
			g.logger.Info("Removing stale generated file", "file", outputPath)
			return os.Remove(outputPath)
		}
		g.logger.Debug("No worlds declared", "dir", dir)
		return nil
	}

	worlds, err := g.resolveWorlds(pkg)
	if err != nil {
		return err
	}

	src, err := Render(pkg, worlds)
	if err != nil {
		return err
	}

	if g.cfg.DryRun {
		_, err := g.cfg.Stdout.Write(src)
		return err
	}

	changed, err := writeFileIfChanged(outputPath, src)
	if err != nil {
		return err
	}
	if changed {
		g.logger.Info("Generated worlds", "file", outputPath, "worlds", len(worlds))
	} else {
		g.logger.Debug("Generated file already up to date", "file", outputPath)
	}
	return nil
}

func (g *Generator) resolveWorlds(pkg *scanner.Package) ([]meta.World, error) {
	worlds := make([]meta.World, 0, len(pkg.Worlds))
	for _, decl := range pkg.Worlds {
		g.logger.Debug("Resolving world", "world", decl.Name, "file", decl.File)
		world, err := meta.Resolve(decl, g.cfg.Defaults)
		if err != nil {
			return nil, err
		}
		worlds = append(worlds, world)
	}
	if err := meta.ValidateSet(worlds); err != nil {
		return nil, err
	}
	return worlds, nil
}

// expandRoots turns the path arguments into a sorted, deduplicated list of
// package directories. Hidden directories, underscore directories, testdata
// and vendor are skipped during recursion, matching the go tool.
func expandRoots(roots []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, root := range roots {
		base, recurse := strings.CutSuffix(root, "/...")
		if !recurse {
			add(root)
			continue
		}
		if base == "" {
			base = "."
		}
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != base && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
					name == "testdata" || name == "vendor") {
					return fs.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, ".go") {
				add(filepath.Dir(path))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", base, err)
		}
	}

	sort.Strings(dirs)
	return dirs, nil
}

// writeFileIfChanged writes content via a temp file and rename, and reports
// whether anything changed. Unchanged files keep their timestamps so builds
// triggered by go:generate stay incremental.
func writeFileIfChanged(path string, content []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		return false, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return false, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return false, fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return false, err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return false, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return false, fmt.Errorf("rename into place: %w", err)
	}
	return true, nil
}
