package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thirteen37/confio/internal/config"
	"github.com/thirteen37/confio/internal/format"
	"github.com/thirteen37/confio/internal/format/json"
	"github.com/thirteen37/confio/internal/format/toml"
	"github.com/thirteen37/confio/internal/format/xml"
	"github.com/thirteen37/confio/internal/format/yaml"
	"github.com/thirteen37/confio/internal/merge"
	"github.com/thirteen37/confio/internal/path"
)

type showOptions struct {
	set    []string
	output string
	get    string
}

func newShowCmd(a *app) *cobra.Command {
	opts := &showOptions{}

	showCmd := &cobra.Command{
		Use:   "show [config]",
		Short: "Print a configuration with overrides applied",
		Long: `Load a configuration file, apply --set overrides on top and print the
result. Overrides win over values from the file. Without a file the
overrides alone form the configuration.

Example:
  confio show config.toml --set server.port=9090 --output yaml
  confio show config.yaml --get database.host`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, a, opts, args)
		},
	}

	showCmd.Flags().StringArrayVar(&opts.set, "set", nil, "Override a value as key=value (dotted keys address nested values)")
	showCmd.Flags().StringVarP(&opts.output, "output", "o", string(format.JSON), "Output format (json, yaml, toml, xml)")
	showCmd.Flags().StringVar(&opts.get, "get", "", "Print only the value at this dotted path")
	return showCmd
}

func runShow(cmd *cobra.Command, a *app, opts *showOptions, args []string) error {
	overrides, err := config.ParseOverrides(opts.set)
	if err != nil {
		return err
	}

	var configPath string
	if len(args) == 1 {
		configPath = args[0]
	}

	cfg, err := config.LoadCLIConfig(a.logger, configPath, overrides)
	if err != nil {
		return err
	}

	var value any = cfg
	if opts.get != "" {
		p, err := path.Parse(opts.get)
		if err != nil {
			return err
		}
		found, ok := merge.GetPath(cfg, p)
		if !ok {
			return fmt.Errorf("no value at %s", opts.get)
		}
		value = found
	}

	data, err := marshal(format.Format(opts.output), value)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// marshal encodes value in the named format.
func marshal(f format.Format, value any) ([]byte, error) {
	switch f {
	case format.JSON:
		return json.Marshal(value)
	case format.YAML:
		return yaml.Marshal(value)
	case format.TOML:
		return toml.Marshal(value)
	case format.XML:
		return xml.New().Marshal(value)
	}
	return nil, fmt.Errorf("%w: %s", format.ErrUnsupportedFormat, f)
}
