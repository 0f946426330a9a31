// Package cmd defines the kong command tree of the worlder binary.
package cmd

// CLI is the root command line model. Values can come from flags,
// environment variables or a configuration file, in that priority order.
type CLI struct {
	Config string     `help:"Path to a configuration file (json, yaml, or toml)" env:"WORLDER_CONFIG"`
	Log    LogOptions `embed:"" prefix:"log."`

	Generate  Generate      `cmd:"" help:"Generate browser session plumbing for annotated world structs"`
	Inspect   Inspect       `cmd:"" help:"Report the worlds found under the given paths without writing files"`
	ConfigCmd ConfigCommand `cmd:"" name:"config" help:"Manage worlder configuration templates"`
	Version   Version       `cmd:"" help:"Print the worlder version"`
}

type LogOptions struct {
	Level string `help:"Log level: trace, debug, info, warn, or error" default:"info" env:"WORLDER_LOG_LEVEL"`
	File  string `help:"Also write logs to this file" env:"WORLDER_LOG_FILE"`
}
