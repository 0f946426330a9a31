package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
	"text/template"

	"github.com/scenarium/worlder/internal/codegen/meta"
	"github.com/scenarium/worlder/internal/codegen/scanner"
)

const worldTemplateText = `//go:build !ignore_autogenerated

// Code generated by worlder. DO NOT EDIT.
//
// Worlds declared in {{.Sources}}.

package {{.Package}}

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	godog "{{.Framework}}"
	playwright "{{.Client}}"
)
{{range .Worlds}}
{{range .Doc}}{{comment .}}
{{end}}type {{.Name}} struct {
{{- range .Fields}}
{{- range .Doc}}
	{{comment .}}
{{- end}}
	{{.Names}} {{.Type}}{{with .Tag}} {{.}}{{end}}
{{- end}}
{{- if .Fields}}
{{end}}
	session *{{.Session}}
}

{{if .Docs}}// {{.Session}} bundles the live browser handles of one scenario together
// with the settings they were started from.
{{end}}type {{.Session}} struct {
	Backend      string
	Browser      playwright.Browser
	Context      playwright.BrowserContext
	Page         playwright.Page
	HostURL      string
	Headless     bool
	WindowWidth  int
	WindowHeight int
}

{{if .Docs}}// Setup reads the environment contract and opens a fresh browser session
// for the scenario about to run. opts may be nil; it is only consulted by
// the concurrency safety check.
{{end}}func (w *{{.Name}}) Setup(ctx context.Context, opts *godog.Options) error {
	cfg, err := {{.Prefix}}ConfigFromEnv()
	if err != nil {
		return err
	}
	backend := {{.Prefix}}Backends[cfg.Backend]
{{- if .CheckConcurrency}}
	if err := {{.Prefix}}CheckConcurrency(cfg.Backend, opts); err != nil {
		return err
	}
{{- end}}
	if err := ctx.Err(); err != nil {
		return err
	}
	pw, err := {{.Prefix}}Driver()
	if err != nil {
		return fmt.Errorf("start playwright driver: %w", err)
	}
	browserType := {{.Prefix}}BrowserType(pw, backend.family)
	var browser playwright.Browser
	if cfg.DriverURL != "" {
		browser, err = browserType.Connect(cfg.DriverURL)
		if err != nil {
			return fmt.Errorf("connect to %s (is a browser server listening there?): %w", cfg.DriverURL, err)
		}
	} else {
		launch := playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(cfg.Headless),
		}
		if backend.channel != "" {
			launch.Channel = playwright.String(backend.channel)
		}
		if backend.family == "chromium" {
			launch.Args = []string{
				"--no-sandbox",
				fmt.Sprintf("--window-size=%d,%d", cfg.WindowWidth, cfg.WindowHeight),
			}
		}
		browser, err = browserType.Launch(launch)
		if err != nil {
			return fmt.Errorf("launch %s: %w", cfg.Backend, err)
		}
	}
	browserContext, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: cfg.WindowWidth, Height: cfg.WindowHeight},
	})
	if err != nil {
		_ = browser.Close()
		return fmt.Errorf("create browser context: %w", err)
	}
	page, err := browserContext.NewPage()
	if err != nil {
		_ = browserContext.Close()
		_ = browser.Close()
		return fmt.Errorf("open page: %w", err)
	}
	if backend.needsExplicitSize {
		// The backend ignores launch-time geometry, size the live page instead.
		if err := page.SetViewportSize(cfg.WindowWidth, cfg.WindowHeight); err != nil {
			_ = page.Close()
			_ = browserContext.Close()
			_ = browser.Close()
			return fmt.Errorf("set window size to %dx%d: %w", cfg.WindowWidth, cfg.WindowHeight, err)
		}
	}
	w.session = &{{.Session}}{
		Backend:      cfg.Backend,
		Browser:      browser,
		Context:      browserContext,
		Page:         page,
		HostURL:      cfg.HostURL,
		Headless:     cfg.Headless,
		WindowWidth:  cfg.WindowWidth,
		WindowHeight: cfg.WindowHeight,
	}
	return nil
}

{{if .Docs}}// Teardown closes the scenario's browser session. Calling it without a
// session, or twice, is a no-op.
{{end}}func (w *{{.Name}}) Teardown(ctx context.Context) error {
	if w.session == nil {
		return nil
	}
	s := w.session
	w.session = nil
	_ = s.Page.Close()
	_ = s.Context.Close()
	if err := s.Browser.Close(); err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

{{if .Docs}}// Register installs Before and After hooks on sc so that every scenario
// runs against a fresh browser session. opts may be nil; it feeds the
// concurrency safety check when one is configured.
{{end}}func (w *{{.Name}}) Register(sc *godog.ScenarioContext, opts *godog.Options) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, w.Setup(ctx, opts)
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		return ctx, w.Teardown(ctx)
	})
}
{{if .Docs}}
// Session returns the live browser session, or nil outside a scenario.
func (w *{{.Name}}) Session() *{{.Session}} {
	return w.session
}

// Page returns the page of the current session, or nil outside a scenario.
func (w *{{.Name}}) Page() playwright.Page {
	if w.session == nil {
		return nil
	}
	return w.session.Page
}

// HostURL returns the base URL of the application under test, as read from
// the HOST_URL environment variable when the session started.
func (w *{{.Name}}) HostURL() string {
	if w.session == nil {
		return ""
	}
	return w.session.HostURL
}

// Headless reports whether the current session runs without a visible
// browser window.
func (w *{{.Name}}) Headless() bool {
	if w.session == nil {
		return false
	}
	return w.session.Headless
}

// WindowSize returns the width and height of the current session's window.
func (w *{{.Name}}) WindowSize() (int, int) {
	if w.session == nil {
		return 0, 0
	}
	return w.session.WindowWidth, w.session.WindowHeight
}

// GotoPath navigates the current page to path resolved against HostURL.
func (w *{{.Name}}) GotoPath(path string) error {
	if w.session == nil {
		return fmt.Errorf("no active browser session")
	}
	if _, err := w.session.Page.Goto(w.session.HostURL + path); err != nil {
		return fmt.Errorf("goto %s: %w", path, err)
	}
	return nil
}
{{end}}
{{- if .CheckConcurrency}}
{{if .Docs}}// {{.Prefix}}CheckConcurrency fails when the configured scenario concurrency
// exceeds what the active backend survives.
{{end}}func {{.Prefix}}CheckConcurrency(backend string, opts *godog.Options) error {
	limit := {{.Prefix}}Backends[backend].maxSafeConcurrency
	if limit <= 0 {
		return nil
	}
	level := 1
	if opts != nil {
		if opts.Concurrency > 0 {
			level = opts.Concurrency
		}
	} else {
		level = {{.Prefix}}ConcurrencyFromArgs()
	}
	if level > limit {
		return fmt.Errorf("%s supports at most %d concurrent browser session(s), but the run is configured for %d: lower godog.Options.Concurrency or pass -godog.concurrency=%d", backend, limit, level, limit)
	}
	return nil
}

func {{.Prefix}}ConcurrencyFromArgs() int {
	args := os.Args
	for i, arg := range args {
		var raw string
		switch {
		case strings.HasPrefix(arg, "-godog.concurrency="):
			raw = strings.TrimPrefix(arg, "-godog.concurrency=")
		case strings.HasPrefix(arg, "--godog.concurrency="):
			raw = strings.TrimPrefix(arg, "--godog.concurrency=")
		case arg == "-godog.concurrency" || arg == "--godog.concurrency":
			if i+1 < len(args) {
				raw = args[i+1]
			}
		default:
			continue
		}
		if level, err := strconv.Atoi(raw); err == nil {
			return level
		}
	}
	return 1
}
{{end}}
{{if .Docs}}// {{.Prefix}}Backend describes how one browser backend is launched. Support
// for a new backend is a new table row.
{{end}}type {{.Prefix}}Backend struct {
	family             string
	channel            string
	needsExplicitSize  bool
	maxSafeConcurrency int
}

var {{.Prefix}}Backends = map[string]{{.Prefix}}Backend{
{{- range $.Backends}}
	"{{.Name}}": {family: "{{.Family}}"{{if .Channel}}, channel: "{{.Channel}}"{{end}}{{if .NeedsExplicitSize}}, needsExplicitSize: true{{end}}{{if .MaxSafeConcurrency}}, maxSafeConcurrency: {{.MaxSafeConcurrency}}{{end}}},
{{- end}}
}

type {{.Prefix}}Config struct {
	Backend      string
	Headless     bool
	WindowWidth  int
	WindowHeight int
	HostURL      string
	DriverURL    string
}

{{if .Docs}}// {{.Prefix}}ConfigFromEnv reads the scenario environment contract: BROWSER
// (required), HEADLESS, WINDOW_SIZE, HOST_URL and DRIVER_URL.
{{end}}func {{.Prefix}}ConfigFromEnv() ({{.Prefix}}Config, error) {
	cfg := {{.Prefix}}Config{
		Headless:     true,
		WindowWidth:  1920,
		WindowHeight: 1080,
		HostURL:      "http://localhost:8080",
	}
	cfg.Backend = strings.ToLower(os.Getenv("BROWSER"))
	if cfg.Backend == "" {
		return cfg, fmt.Errorf("BROWSER environment variable is not set: supported browsers are %s", {{.Prefix}}BackendNames())
	}
	if _, ok := {{.Prefix}}Backends[cfg.Backend]; !ok {
		return cfg, fmt.Errorf("unsupported browser %q: supported browsers are %s", cfg.Backend, {{.Prefix}}BackendNames())
	}
	if v := os.Getenv("HEADLESS"); v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid HEADLESS value %q: expected a boolean such as true or false", v)
		}
		cfg.Headless = headless
	}
	if v := os.Getenv("WINDOW_SIZE"); v != "" {
		width, height, err := {{.Prefix}}ParseWindowSize(v)
		if err != nil {
			return cfg, err
		}
		cfg.WindowWidth, cfg.WindowHeight = width, height
	}
	if v := os.Getenv("HOST_URL"); v != "" {
		cfg.HostURL = v
	}
	cfg.DriverURL = os.Getenv("DRIVER_URL")
	return cfg, nil
}

func {{.Prefix}}BackendNames() string {
	names := make([]string, 0, len({{.Prefix}}Backends))
	for name := range {{.Prefix}}Backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func {{.Prefix}}ParseWindowSize(value string) (int, int, error) {
	parts := strings.SplitN(value, "x", 2)
	if len(parts) == 2 {
		width, werr := strconv.Atoi(strings.TrimSpace(parts[0]))
		height, herr := strconv.Atoi(strings.TrimSpace(parts[1]))
		if werr == nil && herr == nil && width > 0 && height > 0 {
			return width, height, nil
		}
	}
	return 0, 0, fmt.Errorf("invalid WINDOW_SIZE value %q: expected <width>x<height> such as 1920x1080", value)
}

var {{.Prefix}}DriverState struct {
	once sync.Once
	pw   *playwright.Playwright
	err  error
}

{{if .Docs}}// {{.Prefix}}Driver starts the playwright driver once per process and shares
// it across all scenarios of the run.
{{end}}func {{.Prefix}}Driver() (*playwright.Playwright, error) {
	{{.Prefix}}DriverState.once.Do(func() {
		{{.Prefix}}DriverState.pw, {{.Prefix}}DriverState.err = playwright.Run()
	})
	return {{.Prefix}}DriverState.pw, {{.Prefix}}DriverState.err
}

func {{.Prefix}}BrowserType(pw *playwright.Playwright, family string) playwright.BrowserType {
	switch family {
	case "firefox":
		return pw.Firefox
	case "webkit":
		return pw.WebKit
	default:
		return pw.Chromium
	}
}
{{end}}`

type fileData struct {
	Sources   string // comma-joined definition file names
	Package   string
	Framework string
	Client    string
	Backends  []meta.Backend
	Worlds    []worldData
}

type worldData struct {
	Name             string
	Session          string
	Prefix           string
	Doc              []string
	Docs             bool
	CheckConcurrency bool
	Fields           []fieldData
}

type fieldData struct {
	Doc   []string
	Names string
	Type  string
	Tag   string
}

// Render produces the generated file for one package. The output is gofmt
// formatted and deterministic: worlds appear in declaration order and the
// backend table in its canonical order.
func Render(pkg *scanner.Package, worlds []meta.World) ([]byte, error) {
	if len(worlds) == 0 {
		return nil, fmt.Errorf("package %s declares no worlds", pkg.Name)
	}

	data := fileData{
		Sources:   strings.Join(pkg.DefFiles, ", "),
		Package:   pkg.Name,
		Framework: worlds[0].Options.FrameworkPath,
		Client:    worlds[0].Options.ClientPath,
		Backends:  meta.Backends(),
	}
	for _, w := range worlds {
		data.Worlds = append(data.Worlds, buildWorldData(w))
	}

	funcMap := template.FuncMap{
		"comment": func(line string) string {
			if line == "" {
				return "//"
			}
			return "// " + line
		},
	}
	tmpl, err := template.New("worlds").Funcs(funcMap).Parse(worldTemplateText)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated code for package %s: %w\n%s", pkg.Name, err, buf.Bytes())
	}
	return src, nil
}

func buildWorldData(w meta.World) worldData {
	data := worldData{
		Name:             w.Name,
		Session:          w.SessionType(),
		Prefix:           w.HelperPrefix(),
		Docs:             w.Options.Docs,
		CheckConcurrency: w.Options.CheckConcurrency,
	}
	if w.Options.Docs {
		data.Doc = w.Doc
		if len(data.Doc) == 0 {
			data.Doc = []string{w.Name + " carries the state of one scenario and its browser session."}
		}
	}
	for _, f := range w.Fields {
		fd := fieldData{Names: strings.Join(f.Names, ", "), Type: f.Type, Tag: f.Tag}
		if w.Options.Docs {
			fd.Doc = f.Doc
		}
		data.Fields = append(data.Fields, fd)
	}
	return data
}
