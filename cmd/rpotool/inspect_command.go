package main

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Faultbox/rpotool/pkg/formats"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file.rpo(z)>",
		Short: "Show the header and detected layout of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			mode, err := cfg.Convert.LayoutMode()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			rpo, err := formats.ParseRPO(data, formats.RPOOptions{
				Layout:       mode,
				InflateLimit: cfg.Convert.InflateLimit(),
			})
			if err != nil {
				return fmt.Errorf("%s: %s: %w", args[0], formats.ErrorKind(err), err)
			}

			l := rpo.Layout
			rows := [][]string{
				{"File", args[0]},
				{"Size", humanize.Bytes(uint64(len(data)))},
				{"Envelope", rpo.Envelope.String()},
				{"Magic", string(rpo.Header.Magic[:])},
				{"Vertex count", strconv.FormatUint(uint64(rpo.Header.VertexCount), 10)},
				{"Face field", fmt.Sprintf("%d (0x%X)", rpo.Header.FaceField, rpo.Header.FaceField)},
				{"Layout", l.Mode.String()},
				{"Header length", fmt.Sprintf("0x%X", l.HeaderLength)},
				{"Vertex stride", strconv.Itoa(l.VertexStride)},
				{"Floats per vertex", strconv.Itoa(l.FloatsPerVertex)},
				{"Face offset", fmt.Sprintf("0x%X", l.FaceOffset())},
				{"Faces", strconv.Itoa(rpo.Mesh.FaceCount())},
			}
			if lo, hi, ok := bounds(&rpo.Mesh); ok {
				rows = append(rows,
					[]string{"Bounds min", formatVec(lo)},
					[]string{"Bounds max", formatVec(hi)},
				)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil, shouldColorize(out)))
			return nil
		},
	}

	addConvertFlags(cmd, ctx, false)
	return cmd
}

// bounds returns the axis-aligned box of the vertex positions.
func bounds(m *formats.Mesh) (lo, hi [3]float32, ok bool) {
	lo = [3]float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	hi = [3]float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for i := range m.Vertices {
		v := m.Vertices[i].Values()
		if len(v) < 3 {
			return lo, hi, false
		}
		for j := 0; j < 3; j++ {
			lo[j] = min(lo[j], v[j])
			hi[j] = max(hi[j], v[j])
		}
	}
	return lo, hi, len(m.Vertices) > 0
}

func formatVec(v [3]float32) string {
	return fmt.Sprintf("%.3f, %.3f, %.3f", v[0], v[1], v[2])
}
