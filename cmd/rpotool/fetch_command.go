package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/rpotool/internal/convert"
	"github.com/Faultbox/rpotool/internal/fileutil"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var (
		filter    assetFilter
		outputDir string
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "fetch [term]",
		Short: "Download matching catalog assets and convert them to .obj",
		Example: `  rpotool fetch --set "Fire Set"
  rpotool fetch silo -o ./silos --yes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				filter.Term = args[0]
			}
			if filter.empty() {
				return errors.New("give a search term or one of --set, --decorator, --type, --chicken")
			}
			conv, err := ctx.converter(cfg)
			if err != nil {
				return err
			}

			client := ctx.fetcher(cfg)
			cat, err := client.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			assets := filter.apply(cat)
			if len(assets) == 0 {
				return errors.New("no assets match")
			}

			out := cmd.OutOrStdout()
			printAssets(out, assets)
			if !yes {
				ok, err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("Download and convert %d assets to %s?", len(assets), outputDir))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			if err := fileutil.EnsureDir(outputDir); err != nil {
				return err
			}
			jobs := make([]convert.Job, len(assets))
			for i, a := range assets {
				src := client.Source(a)
				jobs[i] = convert.Job{Source: src, Output: convert.OutputPath(src.Name(), outputDir)}
			}

			results := conv.Batch(cmd.Context(), jobs, cfg.Batch.Workers)
			printResults(out, results)
			return batchError(results)
		},
	}

	filter.register(cmd)
	cmd.Flags().StringVarP(&outputDir, "output", "o", "output", "Directory for converted .obj files")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	addConvertFlags(cmd, ctx, true)
	return cmd
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
