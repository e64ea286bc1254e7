// OBJ (Wavefront) text encoder for extracted meshes.

package formats

import (
	"bytes"
	"io"
	"math"
	"strconv"
	"strings"
)

// OBJOptions controls OBJ output.
type OBJOptions struct {
	Comments []string // Written as "# <line>" before any geometry
}

// EncodeOBJ renders a mesh as OBJ text: comment lines, one "v" line per
// vertex, a blank separator, then one "f" line per face with one-based
// indices. Output depends only on the mesh and options.
func EncodeOBJ(mesh *Mesh, opts OBJOptions) []byte {
	var buf bytes.Buffer
	buf.Grow(estimateOBJSize(mesh, opts))
	appendOBJ(&buf, mesh, opts)
	return buf.Bytes()
}

// WriteOBJ encodes the mesh and writes it to w in a single call.
func WriteOBJ(w io.Writer, mesh *Mesh, opts OBJOptions) (int64, error) {
	n, err := w.Write(EncodeOBJ(mesh, opts))
	return int64(n), err
}

func appendOBJ(buf *bytes.Buffer, mesh *Mesh, opts OBJOptions) {
	for _, c := range opts.Comments {
		// Keep multi-line comments inside the comment grammar.
		for _, line := range strings.Split(c, "\n") {
			buf.WriteString("# ")
			buf.WriteString(strings.TrimRight(line, "\r"))
			buf.WriteByte('\n')
		}
	}

	scratch := make([]byte, 0, 32)
	for i := range mesh.Vertices {
		buf.WriteByte('v')
		for _, f := range mesh.Vertices[i].Values() {
			buf.WriteByte(' ')
			scratch = appendOBJFloat(scratch[:0], f)
			buf.Write(scratch)
		}
		buf.WriteByte('\n')
	}

	buf.WriteByte('\n')

	for _, face := range mesh.Faces {
		buf.WriteByte('f')
		for _, idx := range face {
			buf.WriteByte(' ')
			scratch = strconv.AppendUint(scratch[:0], uint64(idx)+1, 10)
			buf.Write(scratch)
		}
		buf.WriteByte('\n')
	}
}

// appendOBJFloat formats like printf("%f"): fixed notation, six decimals.
func appendOBJFloat(dst []byte, f float32) []byte {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return append(dst, "nan"...)
	case math.IsInf(v, 1):
		return append(dst, "inf"...)
	case math.IsInf(v, -1):
		return append(dst, "-inf"...)
	}
	return strconv.AppendFloat(dst, v, 'f', 6, 64)
}

func estimateOBJSize(mesh *Mesh, opts OBJOptions) int {
	n := 1
	for _, c := range opts.Comments {
		n += len(c) + 3
	}
	for i := range mesh.Vertices {
		n += 2 + mesh.Vertices[i].Count*12
	}
	return n + len(mesh.Faces)*20
}
