// RPO (mesh container) parser for the binary models shipped as .rpo/.rpoz.

package formats

import (
	"errors"
	"fmt"
	"os"
)

// RPO format errors.
var (
	ErrOutOfBounds           = errors.New("read out of bounds")
	ErrInvalidFormat         = errors.New("invalid RPO data: expected 'RPO1' magic or zlib envelope")
	ErrCorruptStream         = errors.New("corrupt compressed stream")
	ErrTruncatedInput        = errors.New("truncated compressed stream")
	ErrLayoutDetectionFailed = errors.New("RPO layout detection failed")
	ErrAllocationFailure     = errors.New("allocation failure")
)

// rpoMagic is the little-endian word 0x314F5052.
const rpoMagic = "RPO1"

// Fixed header offsets shared by every schema revision.
const (
	rpoVertexCountOffset = 0x04
	rpoFaceFieldOffset   = 0x08
)

// Each face is three uint16 indices.
const (
	rpoIndexSize  = 2
	rpoFaceSize   = 3 * rpoIndexSize
	maxVertexVals = 6
)

// ErrorKind returns the short name of the codec error wrapped in err, or
// "Unknown" when err is not a codec error.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrOutOfBounds):
		return "OutOfBounds"
	case errors.Is(err, ErrInvalidFormat):
		return "InvalidFormat"
	case errors.Is(err, ErrCorruptStream):
		return "CorruptStream"
	case errors.Is(err, ErrTruncatedInput):
		return "TruncatedInput"
	case errors.Is(err, ErrLayoutDetectionFailed):
		return "LayoutDetectionFailed"
	case errors.Is(err, ErrAllocationFailure):
		return "AllocationFailure"
	default:
		return "Unknown"
	}
}

// RPOHeader holds the fields every RPO revision stores at fixed offsets.
type RPOHeader struct {
	Magic       [4]byte
	VertexCount uint32 // @0x04
	FaceField   uint32 // @0x08: index bytes (scan) or index count (compact)
}

// Vertex holds up to six floats: position then normal. Count is the number
// of valid entries in Components.
type Vertex struct {
	Components [maxVertexVals]float32
	Count      int
}

// Values returns the populated components.
func (v *Vertex) Values() []float32 {
	return v.Components[:v.Count]
}

// Face is a triangle of zero-based vertex indices.
type Face [3]uint16

// Mesh is the geometry extracted from an RPO buffer.
type Mesh struct {
	Vertices []Vertex
	Faces    []Face
}

// RPO represents a decoded RPO asset.
type RPO struct {
	Envelope Envelope
	Header   RPOHeader
	Layout   RPOLayout
	Mesh     Mesh
}

// RPOOptions controls decoding.
type RPOOptions struct {
	Layout       LayoutMode // Layout strategy (default LayoutAuto)
	InflateLimit int        // Max decompressed size; <= 0 means DefaultInflateLimit
}

// ValidateRPO checks that data starts with the RPO1 magic.
func ValidateRPO(data []byte) error {
	if len(data) < len(rpoMagic) {
		return fmt.Errorf("%w: buffer holds %d bytes", ErrInvalidFormat, len(data))
	}
	if string(data[:len(rpoMagic)]) != rpoMagic {
		return fmt.Errorf("%w: got magic % x", ErrInvalidFormat, data[:len(rpoMagic)])
	}
	return nil
}

// ParseRPO decodes an RPO or RPOZ buffer into a mesh. The input is never
// modified and nothing is returned on failure.
func ParseRPO(data []byte, opts RPOOptions) (*RPO, error) {
	if len(data) < len(rpoMagic) {
		return nil, fmt.Errorf("%w: buffer holds %d bytes", ErrInvalidFormat, len(data))
	}

	raw, env, err := Decompress(data, opts.InflateLimit)
	if err != nil {
		return nil, fmt.Errorf("decompressing: %w", err)
	}

	if err := ValidateRPO(raw); err != nil {
		return nil, err
	}

	r := NewReader(raw)
	header, err := readRPOHeader(r)
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	layout, err := AnalyzeLayout(raw, opts.Layout)
	if err != nil {
		return nil, fmt.Errorf("analyzing layout: %w", err)
	}

	mesh, err := extractMesh(r, layout)
	if err != nil {
		return nil, fmt.Errorf("extracting mesh: %w", err)
	}

	return &RPO{
		Envelope: env,
		Header:   header,
		Layout:   layout,
		Mesh:     *mesh,
	}, nil
}

// ParseRPOFile parses an RPO or RPOZ file from disk.
func ParseRPOFile(path string, opts RPOOptions) (*RPO, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading RPO file: %w", err)
	}
	return ParseRPO(data, opts)
}

func readRPOHeader(r *Reader) (RPOHeader, error) {
	var h RPOHeader
	magic, err := r.Bytes(len(rpoMagic))
	if err != nil {
		return h, err
	}
	copy(h.Magic[:], magic)
	if h.VertexCount, err = r.Uint32At(rpoVertexCountOffset); err != nil {
		return h, err
	}
	if h.FaceField, err = r.Uint32At(rpoFaceFieldOffset); err != nil {
		return h, err
	}
	return h, nil
}

// extractMesh walks the vertex and face regions described by layout.
func extractMesh(r *Reader, layout RPOLayout) (*Mesh, error) {
	if err := layout.checkBounds(r.Len()); err != nil {
		return nil, err
	}

	mesh := &Mesh{
		Vertices: make([]Vertex, layout.VertexCount),
		Faces:    make([]Face, layout.FaceCount),
	}

	for i := range mesh.Vertices {
		v := &mesh.Vertices[i]
		base := layout.HeaderLength + i*layout.VertexStride
		v.Count = layout.FloatsPerVertex
		for j := 0; j < v.Count; j++ {
			f, err := r.Float32At(base + 4*j)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %w", i, err)
			}
			v.Components[j] = f
		}
	}

	if err := r.Seek(layout.FaceOffset()); err != nil {
		return nil, err
	}
	for i := range mesh.Faces {
		face := &mesh.Faces[i]
		for j := range face {
			idx, err := r.Uint16()
			if err != nil {
				return nil, fmt.Errorf("face %d: %w", i, err)
			}
			if int(idx) >= layout.VertexCount {
				return nil, fmt.Errorf("%w: face %d references vertex %d of %d", ErrOutOfBounds, i, idx, layout.VertexCount)
			}
			face[j] = idx
		}
	}

	return mesh, nil
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}
