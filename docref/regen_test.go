package docref

import (
	"bytes"
	"go/format"
	"os"
	"testing"

	"github.com/scenarium/worlder/internal/codegen/generator"
	"github.com/scenarium/worlder/internal/codegen/meta"
	"github.com/scenarium/worlder/internal/codegen/scanner"
)

// TestGeneratedFileIsCurrent fails when the checked in generated file drifts
// from what the generator produces for this package.
func TestGeneratedFileIsCurrent(t *testing.T) {
	pkg, err := scanner.ScanPackage(".")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	worlds := make([]meta.World, 0, len(pkg.Worlds))
	for _, decl := range pkg.Worlds {
		world, err := meta.Resolve(decl, meta.Defaults{})
		if err != nil {
			t.Fatalf("resolve %s: %v", decl.Name, err)
		}
		worlds = append(worlds, world)
	}
	rendered, err := generator.Render(pkg, worlds)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	existing, err := os.ReadFile(generator.DefaultOutput)
	if err != nil {
		t.Fatalf("read checked in file: %v", err)
	}
	formatted, err := format.Source(existing)
	if err != nil {
		t.Fatalf("format checked in file: %v", err)
	}

	if !bytes.Equal(formatted, rendered) {
		t.Error("generated file is stale; rerun go generate ./docref")
	}
}
