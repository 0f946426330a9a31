// Package meta holds the validated world model shared by the generator and
// the inspect command: marker argument resolution, the browser backend
// capability table and the naming rules of the emitted code.
package meta

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/scenarium/worlder/internal/codegen/common"
	"github.com/scenarium/worlder/internal/codegen/scanner"
)

// Import paths assumed when a marker names no explicit handle. The calling
// module must depend on them, the generated file imports them directly.
const (
	DefaultFrameworkPath = "github.com/cucumber/godog"
	DefaultClientPath    = "github.com/playwright-community/playwright-go"
)

// SessionField is the name of the single field appended to every world.
// User structs must not declare it themselves.
const SessionField = "session"

// Marker argument keys.
const (
	ArgFramework        = "framework"
	ArgClient           = "client"
	ArgCheckConcurrency = "checkConcurrency"
	ArgDocs             = "docs"
)

const supportedArgs = ArgFramework + ", " + ArgClient + ", " + ArgCheckConcurrency + ", " + ArgDocs

// Options are the resolved marker arguments of one world.
type Options struct {
	FrameworkPath    string `json:"framework"`
	ClientPath       string `json:"client"`
	CheckConcurrency bool   `json:"checkConcurrency"`
	Docs             bool   `json:"docs"`
}

// Defaults seed option resolution. Tool config files and flags land here;
// marker arguments override them.
type Defaults struct {
	FrameworkPath string
	ClientPath    string
}

// World couples a scanned declaration with its resolved options.
type World struct {
	scanner.WorldDecl
	Options Options
}

// SessionType is the name of the generated session struct.
func (w World) SessionType() string { return w.Name + "Session" }

// HelperPrefix is the identifier prefix of the world's unexported helpers,
// e.g. "appWorld" for AppWorld.
func (w World) HelperPrefix() string { return common.LowerCamel(w.Name) }

// Resolve validates a scanned declaration and computes its options.
func Resolve(decl scanner.WorldDecl, defaults Defaults) (World, error) {
	if !decl.HasDefTag {
		return World{}, scanner.Errorf(decl.Pos,
			"%s must carry a //go:build worlddef constraint so the declaration of %s does not collide with the generated one",
			filepath.Base(decl.File), decl.Name)
	}
	for _, field := range decl.Fields {
		for _, name := range field.Names {
			if name == SessionField {
				return World{}, scanner.Errorf(decl.Pos,
					"world %s declares a field named %q, which is reserved for the generated session handle",
					decl.Name, SessionField)
			}
		}
	}

	opts := Options{
		FrameworkPath: defaults.FrameworkPath,
		ClientPath:    defaults.ClientPath,
	}
	if opts.FrameworkPath == "" {
		opts.FrameworkPath = DefaultFrameworkPath
	}
	if opts.ClientPath == "" {
		opts.ClientPath = DefaultClientPath
	}

	docsSet := false
	seen := make(map[string]bool, len(decl.Args))
	for _, arg := range decl.Args {
		if seen[arg.Key] {
			return World{}, scanner.Errorf(arg.Pos,
				"argument %s given more than once on world %s", arg.Key, decl.Name)
		}
		seen[arg.Key] = true

		switch arg.Key {
		case ArgFramework:
			path, err := resolveImportArg(decl, arg)
			if err != nil {
				return World{}, err
			}
			opts.FrameworkPath = path
		case ArgClient:
			path, err := resolveImportArg(decl, arg)
			if err != nil {
				return World{}, err
			}
			opts.ClientPath = path
		case ArgCheckConcurrency:
			value, err := boolArg(arg)
			if err != nil {
				return World{}, err
			}
			opts.CheckConcurrency = value
		case ArgDocs:
			value, err := boolArg(arg)
			if err != nil {
				return World{}, err
			}
			opts.Docs = value
			docsSet = true
		default:
			return World{}, scanner.Errorf(arg.Pos,
				"unknown argument %q for %s (supported: %s)", arg.Key, scanner.Marker, supportedArgs)
		}
	}

	// Default documentation policy: forward docs when the input has any.
	if !docsSet {
		opts.Docs = len(decl.Doc) > 0
	}

	// Accessors only exist when docs are on, so their names are only
	// reserved then.
	reserved := map[string]bool{"Setup": true, "Teardown": true, "Register": true}
	if opts.Docs {
		for _, name := range []string{"Session", "Page", "HostURL", "Headless", "WindowSize", "GotoPath"} {
			reserved[name] = true
		}
	}
	for _, field := range decl.Fields {
		for _, name := range field.Names {
			if reserved[name] {
				return World{}, scanner.Errorf(decl.Pos,
					"world %s declares a field named %s, which collides with a generated method", decl.Name, name)
			}
		}
	}

	return World{WorldDecl: decl, Options: opts}, nil
}

// ValidateSet checks constraints that hold across all worlds of a package:
// helper prefixes and session type names must be unique and every world must
// agree on the framework and client import paths, because the generated file
// imports each once.
func ValidateSet(worlds []World) error {
	prefixes := make(map[string]string, len(worlds))
	sessions := make(map[string]string, len(worlds))
	for _, w := range worlds {
		prefix := w.HelperPrefix()
		if other, ok := prefixes[prefix]; ok {
			return scanner.Errorf(w.Pos,
				"worlds %s and %s would share the helper prefix %q; rename one of them", other, w.Name, prefix)
		}
		prefixes[prefix] = w.Name
		sessions[w.SessionType()] = w.Name
	}
	for _, w := range worlds {
		if other, ok := sessions[w.Name]; ok {
			return scanner.Errorf(w.Pos,
				"the session type generated for world %s would collide with world %s; rename one of them", other, w.Name)
		}
	}
	for i := 1; i < len(worlds); i++ {
		if worlds[i].Options.FrameworkPath != worlds[0].Options.FrameworkPath {
			return scanner.Errorf(worlds[i].Pos,
				"world %s resolves framework %s but %s resolves %s: worlds of one package must agree",
				worlds[i].Name, worlds[i].Options.FrameworkPath, worlds[0].Name, worlds[0].Options.FrameworkPath)
		}
		if worlds[i].Options.ClientPath != worlds[0].Options.ClientPath {
			return scanner.Errorf(worlds[i].Pos,
				"world %s resolves client %s but %s resolves %s: worlds of one package must agree",
				worlds[i].Name, worlds[i].Options.ClientPath, worlds[0].Name, worlds[0].Options.ClientPath)
		}
	}
	return nil
}

func boolArg(arg scanner.Arg) (bool, error) {
	switch arg.Value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, scanner.Errorf(arg.Pos,
		"argument %s must be the literal true or false, got %q", arg.Key, arg.Value)
}

func resolveImportArg(decl scanner.WorldDecl, arg scanner.Arg) (string, error) {
	value := arg.Value
	if strings.ContainsAny(value, "\"'`") {
		return "", scanner.Errorf(arg.Pos,
			"argument %s must be an unquoted import path or the name of an import in the definition file, got %s",
			arg.Key, value)
	}
	if strings.Contains(value, "/") {
		for _, segment := range strings.Split(value, "/") {
			if segment == "" || segment == "." || segment == ".." {
				return "", scanner.Errorf(arg.Pos,
					"argument %s must be a fully-qualified import path, got %q: relative or empty path segments cannot be imported",
					arg.Key, value)
			}
		}
		return value, nil
	}
	if !isIdentifier(value) {
		return "", scanner.Errorf(arg.Pos,
			"argument %s must be an import path or the name of an import in the definition file, got %q",
			arg.Key, value)
	}
	path, ok := decl.Imports[value]
	if !ok {
		return "", scanner.Errorf(arg.Pos,
			"argument %s names %q, but %s has no such import", arg.Key, value, filepath.Base(decl.File))
	}
	return path, nil
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if unicode.IsLetter(r) || r == '_' {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return s != ""
}
