package scanner

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

type testCase struct {
	name string
	run  func(t *testing.T)
}

func scanSource(t *testing.T, src string) ([]WorldDecl, error) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "world_def.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return scanFile(fset, "world_def.go", file)
}

func mustScanOne(t *testing.T, src string) WorldDecl {
	t.Helper()
	worlds, err := scanSource(t, src)
	if err != nil {
		t.Fatalf("scan fixture: %v", err)
	}
	if len(worlds) != 1 {
		t.Fatalf("expected one world, got %d", len(worlds))
	}
	return worlds[0]
}

func wantScanError(t *testing.T, src, fragment string) {
	t.Helper()
	_, err := scanSource(t, src)
	if err == nil {
		t.Fatalf("expected an error mentioning %q, got none", fragment)
	}
	if !strings.Contains(err.Error(), fragment) {
		t.Fatalf("error %q does not mention %q", err.Error(), fragment)
	}
}

func TestScanFile(t *testing.T) {
	cases := []testCase{
		{
			name: "collects a marked struct",
			run: func(t *testing.T) {
				world := mustScanOne(t, `//go:build worlddef

package sample

// CheckoutWorld drives the checkout flow.
//
// +worlder:world checkConcurrency=true docs=false
type CheckoutWorld struct {
	// Cart holds the items added so far.
	Cart  []string
	Total int
}
`)
				if world.Name != "CheckoutWorld" {
					t.Errorf("name = %q, want CheckoutWorld", world.Name)
				}
				if !world.HasDefTag {
					t.Error("expected the worlddef constraint to be detected")
				}
				wantDoc := []string{"CheckoutWorld drives the checkout flow."}
				if !reflect.DeepEqual(world.Doc, wantDoc) {
					t.Errorf("doc = %q, want %q", world.Doc, wantDoc)
				}
				if len(world.Args) != 2 || world.Args[0].Key != "checkConcurrency" || world.Args[0].Value != "true" ||
					world.Args[1].Key != "docs" || world.Args[1].Value != "false" {
					t.Errorf("args = %+v, want checkConcurrency=true docs=false", world.Args)
				}
				if len(world.Fields) != 2 {
					t.Fatalf("fields = %+v, want 2 entries", world.Fields)
				}
				cart := world.Fields[0]
				if !reflect.DeepEqual(cart.Names, []string{"Cart"}) || cart.Type != "[]string" {
					t.Errorf("first field = %+v, want Cart []string", cart)
				}
				if !reflect.DeepEqual(cart.Doc, []string{"Cart holds the items added so far."}) {
					t.Errorf("first field doc = %q", cart.Doc)
				}
				if total := world.Fields[1]; total.Type != "int" {
					t.Errorf("second field = %+v, want Total int", total)
				}
			},
		},
		{
			name: "groups shared field names",
			run: func(t *testing.T) {
				world := mustScanOne(t, `//go:build worlddef

package sample

// +worlder:world
type PairWorld struct {
	User, Password string
}
`)
				if len(world.Fields) != 1 {
					t.Fatalf("fields = %+v, want one entry", world.Fields)
				}
				want := []string{"User", "Password"}
				if !reflect.DeepEqual(world.Fields[0].Names, want) {
					t.Errorf("names = %q, want %q", world.Fields[0].Names, want)
				}
			},
		},
		{
			name: "keeps the raw field tag",
			run: func(t *testing.T) {
				world := mustScanOne(t, "//go:build worlddef\n\npackage sample\n\n// +worlder:world\ntype TaggedWorld struct {\n\tID string `json:\"id\"`\n}\n")
				if got := world.Fields[0].Tag; got != "`json:\"id\"`" {
					t.Errorf("tag = %q, want the raw literal", got)
				}
			},
		},
		{
			name: "ignores unmarked structs",
			run: func(t *testing.T) {
				worlds, err := scanSource(t, `package sample

// Plain is documentation without a marker.
type Plain struct {
	Value int
}
`)
				if err != nil {
					t.Fatalf("scan: %v", err)
				}
				if len(worlds) != 0 {
					t.Errorf("worlds = %+v, want none", worlds)
				}
			},
		},
		{
			name: "marker requires a word boundary",
			run: func(t *testing.T) {
				worlds, err := scanSource(t, `package sample

// +worlder:worldwide
type Plain struct {
	Value int
}
`)
				if err != nil {
					t.Fatalf("scan: %v", err)
				}
				if len(worlds) != 0 {
					t.Errorf("worlds = %+v, want none", worlds)
				}
			},
		},
		{
			name: "records definition file imports",
			run: func(t *testing.T) {
				world := mustScanOne(t, `//go:build worlddef

package sample

import (
	"time"

	gd "github.com/cucumber/godog"
	"github.com/some/dep/v2"
	_ "github.com/blank/import"
)

// +worlder:world framework=gd
type ImportWorld struct {
	At time.Time
}
`)
				want := map[string]string{
					"time": "time",
					"gd":   "github.com/cucumber/godog",
					"dep":  "github.com/some/dep/v2",
				}
				if !reflect.DeepEqual(world.Imports, want) {
					t.Errorf("imports = %v, want %v", world.Imports, want)
				}
			},
		},
		{
			name: "missing build tag is recorded, not rejected",
			run: func(t *testing.T) {
				world := mustScanOne(t, `package sample

// +worlder:world
type BareWorld struct {
	Value int
}
`)
				if world.HasDefTag {
					t.Error("expected HasDefTag to be false without a constraint")
				}
			},
		},
		{
			name: "platform constraints do not count",
			run: func(t *testing.T) {
				world := mustScanOne(t, `//go:build linux

package sample

// +worlder:world
type LinuxWorld struct {
	Value int
}
`)
				if world.HasDefTag {
					t.Error("a platform constraint must not satisfy the definition requirement")
				}
			},
		},
		{
			name: "composite definition constraint is accepted",
			run: func(t *testing.T) {
				world := mustScanOne(t, `//go:build worlddef && !windows

package sample

// +worlder:world
type CompositeWorld struct {
	Value int
}
`)
				if !world.HasDefTag {
					t.Error("worlddef && !windows keeps the file buildable under the tag")
				}
			},
		},
		{
			name: "group doc does not mark every type in the block",
			run: func(t *testing.T) {
				worlds, err := scanSource(t, `//go:build worlddef

package sample

// +worlder:world
type (
	First struct {
		Value int
	}
	Second struct {
		Value int
	}
)
`)
				if err != nil {
					t.Fatalf("scan: %v", err)
				}
				if len(worlds) != 0 {
					t.Errorf("worlds = %+v, want none from a shared group doc", worlds)
				}
			},
		},
		{
			name: "spec doc inside a group still marks its type",
			run: func(t *testing.T) {
				worlds, err := scanSource(t, `//go:build worlddef

package sample

type (
	// +worlder:world
	First struct {
		Value int
	}
	Second struct {
		Value int
	}
)
`)
				if err != nil {
					t.Fatalf("scan: %v", err)
				}
				if len(worlds) != 1 || worlds[0].Name != "First" {
					t.Errorf("worlds = %+v, want exactly First", worlds)
				}
			},
		},
		{
			name: "rejects a marked type alias",
			run: func(t *testing.T) {
				wantScanError(t, `package sample

type other struct{}

// +worlder:world
type Aliased = other
`, "must be struct types")
			},
		},
		{
			name: "rejects a marked non-struct",
			run: func(t *testing.T) {
				wantScanError(t, `package sample

// +worlder:world
type Count int
`, "must be struct types")
			},
		},
		{
			name: "rejects embedded fields",
			run: func(t *testing.T) {
				wantScanError(t, `package sample

type Base struct{}

// +worlder:world
type EmbedWorld struct {
	Base
	Value int
}
`, "named fields")
			},
		},
		{
			name: "rejects a duplicate marker",
			run: func(t *testing.T) {
				wantScanError(t, `package sample

// +worlder:world
// +worlder:world docs=true
type TwiceWorld struct {
	Value int
}
`, "duplicate")
			},
		},
		{
			name: "rejects a malformed argument",
			run: func(t *testing.T) {
				wantScanError(t, `package sample

// +worlder:world framework
type BadArgWorld struct {
	Value int
}
`, "expected key=value")
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, tc.run)
	}
}

func TestScanPackage(t *testing.T) {
	pkg, err := ScanPackage(filepath.Join("testdata", "basic"))
	if err != nil {
		t.Fatalf("scan package: %v", err)
	}

	if pkg.Name != "basic" {
		t.Errorf("package name = %q, want basic", pkg.Name)
	}
	wantFiles := []string{"admin_def.go", "world_def.go"}
	if !reflect.DeepEqual(pkg.DefFiles, wantFiles) {
		t.Errorf("definition files = %q, want %q", pkg.DefFiles, wantFiles)
	}

	var names []string
	for _, world := range pkg.Worlds {
		names = append(names, world.Name)
	}
	wantNames := []string{"AdminWorld", "LoginWorld"}
	if !reflect.DeepEqual(names, wantNames) {
		t.Errorf("worlds = %q, want %q", names, wantNames)
	}
	for _, world := range pkg.Worlds {
		if !world.HasDefTag {
			t.Errorf("world %s should carry the definition constraint", world.Name)
		}
	}
}

func TestScanPackageWithoutWorlds(t *testing.T) {
	pkg, err := ScanPackage(t.TempDir())
	if err != nil {
		t.Fatalf("scan empty directory: %v", err)
	}
	if len(pkg.Worlds) != 0 || len(pkg.DefFiles) != 0 {
		t.Errorf("empty directory produced %+v", pkg)
	}
}

func TestScanPackageMissingDir(t *testing.T) {
	if _, err := ScanPackage(filepath.Join("testdata", "does-not-exist")); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}
