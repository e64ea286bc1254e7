package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Faultbox/rpotool/internal/convert"
	"github.com/Faultbox/rpotool/pkg/formats"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert <file.rpo(z)|dir>",
		Short: "Convert an .rpo(z) file, or every one in a directory, to .obj",
		Example: `  rpotool convert shell.rpoz
  rpotool convert shell.rpoz -o model.obj
  rpotool convert ./shells -o ./objs --workers 8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			conv, err := ctx.converter(cfg)
			if err != nil {
				return err
			}

			input := args[0]
			info, err := os.Stat(input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !info.IsDir() {
				res := conv.Run(cmd.Context(), convert.Job{
					Source: convert.FileSource{Path: input},
					Output: convert.OutputPath(input, output),
				})
				if res.Err != nil {
					return res.Err
				}
				fmt.Fprintf(out, "Successfully created %s\n", res.Output)
				return nil
			}

			jobs, err := convert.PlanDirectory(input, output)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Fprintf(out, "No .rpo or .rpoz files in %s\n", input)
				return nil
			}

			results := conv.Batch(cmd.Context(), jobs, cfg.Batch.Workers)
			printResults(out, results)
			return batchError(results)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, or output directory for a directory input")
	addConvertFlags(cmd, ctx, true)
	return cmd
}

func printResults(out io.Writer, results []*convert.Result) {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			rows = append(rows, []string{filepath.Base(r.Name), "", "", "", "", formats.ErrorKind(r.Err)})
			continue
		}
		rows = append(rows, []string{
			filepath.Base(r.Name),
			r.RPO.Layout.Mode.String(),
			strconv.Itoa(r.RPO.Mesh.VertexCount()),
			strconv.Itoa(r.RPO.Mesh.FaceCount()),
			humanize.Bytes(uint64(len(r.OBJ))),
			"ok",
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Asset", "Layout", "Vertices", "Faces", "OBJ", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
		shouldColorize(out),
	))

	failed := convert.Failed(results)
	fmt.Fprintf(out, "Converted %d of %d assets\n", len(results)-len(failed), len(results))
	for _, r := range failed {
		fmt.Fprintf(out, "  %s: %v\n", filepath.Base(r.Name), r.Err)
	}
}

func batchError(results []*convert.Result) error {
	if failed := convert.Failed(results); len(failed) > 0 {
		return fmt.Errorf("%d of %d conversions failed", len(failed), len(results))
	}
	return nil
}
