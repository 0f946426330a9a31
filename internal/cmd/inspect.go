package cmd

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/scenarium/worlder/internal/codegen/generator"
	"github.com/scenarium/worlder/internal/codegen/meta"
)

type Inspect struct {
	Paths     []string `arg:"" optional:"" name:"path" help:"Package directories to scan; append /... to recurse. Defaults to the current directory"`
	Output    string   `help:"Base name of the generated file checked for staleness" default:"zz_generated.worlder.go" env:"WORLDER_OUTPUT"`
	Framework string   `help:"Scenario framework import path used when a marker names none" default:"github.com/cucumber/godog" env:"WORLDER_FRAMEWORK"`
	Client    string   `help:"Browser client import path used when a marker names none" default:"github.com/playwright-community/playwright-go" env:"WORLDER_CLIENT"`
	JSON      bool     `name:"json" help:"Print the report as JSON even on a terminal"`
}

// Run is called by Kong when the inspect command is executed. Terminals get
// a table, pipes get JSON.
func (c *Inspect) Run(logger *slog.Logger) error {
	paths := c.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	gen := generator.New(generator.Config{
		Output: c.Output,
		Defaults: meta.Defaults{
			FrameworkPath: c.Framework,
			ClientPath:    c.Client,
		},
	}, logger)
	reports, err := gen.Inspect(paths)
	if err != nil {
		return err
	}

	if c.JSON || !term.IsTerminal(int(os.Stdout.Fd())) {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	renderReportTable(reports)
	return nil
}

func renderReportTable(reports []generator.PackageReport) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"World", "Package", "File", "Fields", "Concurrency Check", "Docs", "Up To Date"})
	for _, report := range reports {
		for _, world := range report.Worlds {
			tw.AppendRow(table.Row{
				world.Name,
				report.Package,
				world.File,
				world.Fields,
				yesNo(world.CheckConcurrency),
				yesNo(world.Docs),
				yesNo(report.UpToDate),
			})
		}
	}
	tw.SetStyle(table.StyleLight)
	tw.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
