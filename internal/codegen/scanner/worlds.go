package scanner

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/build/constraint"
	"go/parser"
	"go/printer"
	"go/token"
	"os"
	"path/filepath"
	"strings"
)

// Marker is the doc-comment line that turns a struct into a world definition.
// Arguments follow as space-separated key=value pairs.
const Marker = "+worlder:world"

// WorldDecl is one marked struct as found in a definition file, before any
// argument validation.
type WorldDecl struct {
	Name   string
	Doc    []string // doc comment lines, marker line removed
	Fields []FieldDecl
	Args   []Arg

	File      string            // definition file path
	Pos       token.Position    // marker position
	Imports   map[string]string // name -> path of the definition file imports
	HasDefTag bool              // file carries the worlddef build constraint
}

// FieldDecl describes a single named field of a world struct.
type FieldDecl struct {
	Doc   []string
	Names []string
	Type  string
	Tag   string // raw tag literal including backquotes
}

// Arg is one raw key=value marker argument.
type Arg struct {
	Key   string
	Value string
	Pos   token.Position
}

// Package is the scan result for one directory.
type Package struct {
	Name     string      // Go package name, taken from the definition files
	Dir      string      // scanned directory
	Worlds   []WorldDecl // declaration order: file name, then position
	DefFiles []string    // base names of files declaring worlds
}

// Error is a scan or validation problem tied to a source position.
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// Errorf builds a position-carrying error.
func Errorf(pos token.Position, format string, args ...any) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// ScanPackage parses every candidate file in dir and collects the world
// declarations. Test files and generated files are never candidates.
func ScanPackage(dir string) (*Package, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	fset := token.NewFileSet()
	pkg := &Package{Dir: dir}

	for _, entry := range entries {
		if entry.IsDir() || !isCandidateFile(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}

		worlds, err := scanFile(fset, path, file)
		if err != nil {
			return nil, err
		}
		if len(worlds) == 0 {
			continue
		}

		pkg.Name = file.Name.Name
		pkg.Worlds = append(pkg.Worlds, worlds...)
		pkg.DefFiles = append(pkg.DefFiles, entry.Name())
	}

	return pkg, nil
}

// isCandidateFile filters the files worth parsing. Test files cannot hold
// definitions and zz_generated files are our own output.
func isCandidateFile(name string) bool {
	if strings.HasSuffix(name, "_test.go") {
		return false
	}
	if strings.HasPrefix(name, "zz_generated") {
		return false
	}
	return strings.HasSuffix(name, ".go")
}

func scanFile(fset *token.FileSet, path string, file *ast.File) ([]WorldDecl, error) {
	hasDefTag := hasDefinitionConstraint(file)
	imports := importTable(file)

	var worlds []WorldDecl
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			// Outside a parenthesized group the doc sits on the GenDecl.
			// Inside one, only a spec's own doc may mark it.
			doc := typeSpec.Doc
			if (doc == nil || len(doc.List) == 0) && len(genDecl.Specs) == 1 {
				doc = genDecl.Doc
			}
			markers := markerComments(doc)
			if len(markers) == 0 {
				continue
			}
			if len(markers) > 1 {
				return nil, Errorf(fset.Position(markers[1].Pos()),
					"duplicate %s marker on type %s", Marker, typeSpec.Name.Name)
			}

			world, err := extractWorld(fset, path, typeSpec, doc, markers[0])
			if err != nil {
				return nil, err
			}
			world.Imports = imports
			world.HasDefTag = hasDefTag
			worlds = append(worlds, world)
		}
	}
	return worlds, nil
}

func extractWorld(fset *token.FileSet, path string, typeSpec *ast.TypeSpec, doc *ast.CommentGroup, marker *ast.Comment) (WorldDecl, error) {
	name := typeSpec.Name.Name
	markerPos := fset.Position(marker.Pos())

	if typeSpec.Assign.IsValid() {
		return WorldDecl{}, Errorf(markerPos,
			"%s on type alias %s: worlds must be struct types with named fields", Marker, name)
	}
	structType, ok := typeSpec.Type.(*ast.StructType)
	if !ok {
		return WorldDecl{}, Errorf(markerPos,
			"%s on type %s: worlds must be struct types with named fields", Marker, name)
	}

	args, err := parseMarkerArgs(fset, marker)
	if err != nil {
		return WorldDecl{}, err
	}

	var fields []FieldDecl
	for _, field := range structType.Fields.List {
		if len(field.Names) == 0 {
			return WorldDecl{}, Errorf(fset.Position(field.Pos()),
				"embedded field in world %s: worlds must declare only named fields", name)
		}
		names := make([]string, 0, len(field.Names))
		for _, ident := range field.Names {
			names = append(names, ident.Name)
		}
		typeStr, err := printExpr(fset, field.Type)
		if err != nil {
			return WorldDecl{}, fmt.Errorf("print type of field %s in %s: %w", names[0], name, err)
		}
		var tag string
		if field.Tag != nil {
			tag = field.Tag.Value
		}
		fields = append(fields, FieldDecl{
			Doc:   docLines(field.Doc),
			Names: names,
			Type:  typeStr,
			Tag:   tag,
		})
	}

	return WorldDecl{
		Name:   name,
		Doc:    docLines(doc),
		Fields: fields,
		Args:   args,
		File:   path,
		Pos:    markerPos,
	}, nil
}

// markerComments returns the marker lines of a doc comment group.
func markerComments(doc *ast.CommentGroup) []*ast.Comment {
	if doc == nil {
		return nil
	}
	var markers []*ast.Comment
	for _, c := range doc.List {
		if isMarkerLine(commentText(c)) {
			markers = append(markers, c)
		}
	}
	return markers
}

func isMarkerLine(line string) bool {
	if !strings.HasPrefix(line, Marker) {
		return false
	}
	rest := line[len(Marker):]
	return rest == "" || strings.HasPrefix(rest, " ") || strings.HasPrefix(rest, "\t")
}

// parseMarkerArgs splits the text after the marker into key=value arguments.
func parseMarkerArgs(fset *token.FileSet, marker *ast.Comment) ([]Arg, error) {
	pos := fset.Position(marker.Pos())
	rest := strings.TrimSpace(strings.TrimPrefix(commentText(marker), Marker))

	var args []Arg
	for _, fragment := range strings.Fields(rest) {
		key, value, ok := strings.Cut(fragment, "=")
		if !ok || key == "" || value == "" {
			return nil, Errorf(pos, "malformed %s argument %q: expected key=value", Marker, fragment)
		}
		args = append(args, Arg{Key: key, Value: value, Pos: pos})
	}
	return args, nil
}

// commentText strips the comment syntax from a single comment, leaving the
// trimmed payload line.
func commentText(c *ast.Comment) string {
	text := c.Text
	if strings.HasPrefix(text, "//") {
		return strings.TrimSpace(strings.TrimPrefix(text, "//"))
	}
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")
	return strings.TrimSpace(text)
}

// docLines returns the cleaned doc comment lines with marker lines removed.
func docLines(doc *ast.CommentGroup) []string {
	if doc == nil {
		return nil
	}
	var lines []string
	for _, c := range doc.List {
		if strings.HasPrefix(c.Text, "//") {
			line := strings.TrimPrefix(c.Text, "//")
			line = strings.TrimPrefix(line, " ")
			if isMarkerLine(strings.TrimSpace(line)) {
				continue
			}
			lines = append(lines, strings.TrimRight(line, " \t"))
			continue
		}
		body := strings.TrimSuffix(strings.TrimPrefix(c.Text, "/*"), "*/")
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)
			if isMarkerLine(line) {
				continue
			}
			lines = append(lines, line)
		}
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	return lines
}

// hasDefinitionConstraint reports whether a //go:build expression keeps the
// file out of an ordinary build while the worlddef tag would bring it back.
// Definition files must satisfy both or their declarations would collide
// with the generated ones.
func hasDefinitionConstraint(file *ast.File) bool {
	for _, group := range file.Comments {
		for _, c := range group.List {
			if !constraint.IsGoBuild(c.Text) {
				continue
			}
			expr, err := constraint.Parse(c.Text)
			if err != nil {
				continue
			}
			excluded := !expr.Eval(func(string) bool { return false })
			included := expr.Eval(func(tag string) bool { return tag == "worlddef" })
			if excluded && included {
				return true
			}
		}
	}
	return false
}

// importTable maps the usable import names of a file to their paths. Blank
// and dot imports carry no name a marker argument could refer to.
func importTable(file *ast.File) map[string]string {
	imports := make(map[string]string)
	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		var name string
		if imp.Name != nil {
			name = imp.Name.Name
			if name == "_" || name == "." {
				continue
			}
		} else {
			name = importBaseName(path)
		}
		imports[name] = path
	}
	return imports
}

// importBaseName guesses the package name of an unaliased import: the last
// path segment, skipping version suffixes like /v2.
func importBaseName(path string) string {
	segments := strings.Split(path, "/")
	name := segments[len(segments)-1]
	if len(segments) > 1 && len(name) > 1 && name[0] == 'v' {
		numeric := true
		for _, r := range name[1:] {
			if r < '0' || r > '9' {
				numeric = false
				break
			}
		}
		if numeric {
			name = segments[len(segments)-2]
		}
	}
	return name
}

func printExpr(fset *token.FileSet, expr ast.Expr) (string, error) {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, expr); err != nil {
		return "", err
	}
	return buf.String(), nil
}
