// Package cmd provides the CLI commands for confio.
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/thirteen37/confio/internal/fileio"
	"github.com/thirteen37/confio/internal/format"
	"github.com/thirteen37/confio/internal/format/jsonl"
	"github.com/thirteen37/confio/internal/logging"
)

// Version is set via ldflags at build time.
var Version = "dev"

// jsonlFormat selects the JSON-Lines codec, which has no file extension mapping.
const jsonlFormat = "jsonl"

// app carries state shared by every subcommand.
type app struct {
	logLevel string
	logger   *log.Logger
}

// NewRootCmd builds the confio command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "confio",
		Short: "Load, convert and inspect JSON, YAML, TOML and XML files",
		Long: `confio reads and writes structured data files, choosing the format
from the file extension (.json, .yaml/.yml, .toml, .xml).

It converts between formats, prints configuration files with runtime
overrides applied, and validates them against a JSON Schema.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = logging.NewLogger(logging.Options{Level: a.logLevel, Prefix: "confio"}, cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newConvertCmd(a))
	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newValidateCmd(a))
	rootCmd.AddCommand(newFormatsCmd())
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "confio: %v\n", err)
		os.Exit(1)
	}
}

// handlerByName returns the handler for an explicit format name, or nil
// when name is empty so the caller falls back to extension detection.
func handlerByName(name string) (format.Handler, error) {
	switch name {
	case "":
		return nil, nil
	case jsonlFormat:
		return jsonl.New(), nil
	default:
		return fileio.Create(format.Format(name))
	}
}
