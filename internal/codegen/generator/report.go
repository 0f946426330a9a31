package generator

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/scenarium/worlder/internal/codegen/scanner"
)

// PackageReport describes the worlds one package declares, without touching
// its generated file.
type PackageReport struct {
	Dir      string        `json:"dir"`
	Package  string        `json:"package"`
	Output   string        `json:"output"`
	UpToDate bool          `json:"upToDate"`
	Worlds   []WorldReport `json:"worlds"`
}

type WorldReport struct {
	Name             string `json:"name"`
	File             string `json:"file"`
	Fields           int    `json:"fields"`
	Framework        string `json:"framework"`
	Client           string `json:"client"`
	CheckConcurrency bool   `json:"checkConcurrency"`
	Docs             bool   `json:"docs"`
}

// Inspect resolves the worlds under the given roots and reports them.
// UpToDate compares the generated file on disk against a fresh render, so
// a stale package shows up before the build does.
func (g *Generator) Inspect(roots []string) ([]PackageReport, error) {
	dirs, err := expandRoots(roots)
	if err != nil {
		return nil, err
	}

	// Non-nil even when nothing is found, so the JSON report is an array.
	reports := make([]PackageReport, 0, len(dirs))
	var failed int
	for _, dir := range dirs {
		report, err := g.inspectPackage(dir)
		if err != nil {
			failed++
			g.logger.Error("Inspection failed", "dir", dir, "error", err)
			continue
		}
		if report != nil {
			reports = append(reports, *report)
		}
	}
	if failed > 0 {
		return reports, fmt.Errorf("%d of %d package(s) failed", failed, len(dirs))
	}
	return reports, nil
}

func (g *Generator) inspectPackage(dir string) (*PackageReport, error) {
	pkg, err := scanner.ScanPackage(dir)
	if err != nil {
		return nil, err
	}
	if len(pkg.Worlds) == 0 {
		return nil, nil
	}

	worlds, err := g.resolveWorlds(pkg)
	if err != nil {
		return nil, err
	}
	rendered, err := Render(pkg, worlds)
	if err != nil {
		return nil, err
	}

	outputPath := filepath.Join(dir, g.cfg.Output)
	report := &PackageReport{
		Dir:     dir,
		Package: pkg.Name,
		Output:  outputPath,
		Worlds:  make([]WorldReport, 0, len(worlds)),
	}
	if existing, err := os.ReadFile(outputPath); err == nil {
		report.UpToDate = bytes.Equal(existing, rendered)
	}
	for _, w := range worlds {
		report.Worlds = append(report.Worlds, WorldReport{
			Name:             w.Name,
			File:             filepath.Base(w.File),
			Fields:           len(w.Fields),
			Framework:        w.Options.FrameworkPath,
			Client:           w.Options.ClientPath,
			CheckConcurrency: w.Options.CheckConcurrency,
			Docs:             w.Options.Docs,
		})
	}
	return report, nil
}
