package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thirteen37/confio/internal/config"
)

func newValidateCmd(a *app) *cobra.Command {
	var schemaPath string

	validateCmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a configuration file against a JSON Schema",
		Long: `Load a configuration file and check it against a JSON Schema.

The file must contain a top-level mapping. Any supported format works;
the schema itself is a JSON Schema document.

Example:
  confio validate config.yaml --schema config.schema.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg, schemaPath); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			a.logger.Debug("schema validation passed", "schema", schemaPath)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
			return nil
		},
	}

	validateCmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Path to the JSON Schema file (required)")
	validateCmd.MarkFlagRequired("schema")
	return validateCmd
}
