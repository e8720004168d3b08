package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thirteen37/confio/internal/fileio"
	"github.com/thirteen37/confio/internal/format"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported formats and file extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			byFormat := make(map[format.Format][]string)
			for _, ext := range fileio.SupportedExtensions() {
				f, err := fileio.DetectFormat("file." + ext)
				if err != nil {
					return err
				}
				byFormat[f] = append(byFormat[f], "."+ext)
			}

			out := cmd.OutOrStdout()
			for _, f := range fileio.SupportedFormats() {
				fmt.Fprintf(out, "%-6s %s\n", f, strings.Join(byFormat[f], " "))
			}
			fmt.Fprintf(out, "%-6s %s\n", jsonlFormat, "(--from/--to only)")
			return nil
		},
	}
}
