package cmd

import (
	"log/slog"

	"github.com/scenarium/worlder/internal/codegen/generator"
	"github.com/scenarium/worlder/internal/codegen/meta"
)

type Generate struct {
	Paths     []string `arg:"" optional:"" name:"path" help:"Package directories to scan; append /... to recurse. Defaults to the current directory"`
	Output    string   `help:"Base name of the generated file" default:"zz_generated.worlder.go" env:"WORLDER_OUTPUT"`
	Framework string   `help:"Scenario framework import path used when a marker names none" default:"github.com/cucumber/godog" env:"WORLDER_FRAMEWORK"`
	Client    string   `help:"Browser client import path used when a marker names none" default:"github.com/playwright-community/playwright-go" env:"WORLDER_CLIENT"`
	DryRun    bool     `name:"dry-run" help:"Print the generated code instead of writing files"`
}

// Run is called by Kong when the generate command is executed.
func (g *Generate) Run(logger *slog.Logger) error {
	paths := g.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}
	logger.Info("Starting world generation", "paths", paths)

	gen := generator.New(generator.Config{
		Output: g.Output,
		Defaults: meta.Defaults{
			FrameworkPath: g.Framework,
			ClientPath:    g.Client,
		},
		DryRun: g.DryRun,
	}, logger)
	return gen.Run(paths)
}
