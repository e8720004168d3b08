package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thirteen37/confio/internal/batch"
	"github.com/thirteen37/confio/internal/format"
)

type convertOptions struct {
	jobs      int
	noParents bool
	from      string
	to        string
}

func newConvertCmd(a *app) *cobra.Command {
	opts := &convertOptions{}

	convertCmd := &cobra.Command{
		Use:   "convert <src> <dst> [<src> <dst>...]",
		Short: "Convert files between formats",
		Long: `Convert one or more files between formats. Formats are detected from
the file extensions unless --from or --to is given.

Several pairs are converted concurrently, at most --jobs at a time.

Example:
  confio convert config.yaml config.json
  confio convert --to jsonl records.json records.jsonl
  confio convert --jobs 4 a.toml a.json b.toml b.json`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return fmt.Errorf("expected <src> <dst> pairs, got %d arguments", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, a, opts, args)
		},
	}

	convertCmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 4, "Maximum conversions running at once (0 = unbounded)")
	convertCmd.Flags().BoolVar(&opts.noParents, "no-parents", false, "Fail instead of creating missing destination directories")
	convertCmd.Flags().StringVar(&opts.from, "from", "", "Source format (json, yaml, toml, xml, jsonl)")
	convertCmd.Flags().StringVar(&opts.to, "to", "", "Destination format (json, yaml, toml, xml, jsonl)")
	return convertCmd
}

func runConvert(cmd *cobra.Command, a *app, opts *convertOptions, args []string) error {
	srcHandler, err := handlerByName(opts.from)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	dstHandler, err := handlerByName(opts.to)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	pairs := make([]batch.Pair, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		pairs = append(pairs, batch.Pair{
			Src:        args[i],
			Dst:        args[i+1],
			SrcHandler: srcHandler,
			DstHandler: dstHandler,
		})
	}

	saveOpts := format.DefaultSaveOptions()
	saveOpts.Parents = !opts.noParents

	a.logger.Debug("converting", "pairs", len(pairs), "jobs", opts.jobs)
	if err := batch.Convert(cmd.Context(), opts.jobs, pairs, saveOpts); err != nil {
		return err
	}

	for _, p := range pairs {
		a.logger.Info("converted", "src", p.Src, "dst", p.Dst)
	}
	return nil
}
