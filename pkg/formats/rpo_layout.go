package formats

import (
	"errors"
	"fmt"
	"strings"
)

// LayoutMode selects how the vertex region of an RPO buffer is located.
type LayoutMode int

const (
	LayoutAuto    LayoutMode = iota // Scan, then fall back to compact
	LayoutScan                      // Walk the chunk-descriptor table
	LayoutCompact                   // 64-byte header, stride derived from buffer size
	LayoutLegacy                    // 64-byte header, 40-byte vertices, face count @0x3C
)

// String returns the mode name as accepted by ParseLayoutMode.
func (m LayoutMode) String() string {
	switch m {
	case LayoutAuto:
		return "auto"
	case LayoutScan:
		return "scan"
	case LayoutCompact:
		return "compact"
	case LayoutLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ParseLayoutMode parses a mode name. The empty string selects LayoutAuto.
func ParseLayoutMode(s string) (LayoutMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return LayoutAuto, nil
	case "scan":
		return LayoutScan, nil
	case "compact":
		return LayoutCompact, nil
	case "legacy", "fixed":
		return LayoutLegacy, nil
	default:
		return LayoutAuto, fmt.Errorf("unknown layout mode %q", s)
	}
}

// Chunk-descriptor marker: the GL_FLOAT component type that follows each
// attribute's component count in the header table.
const rpoChunkMarker = 0x1406

// Constants of the fixed 64-byte header revisions.
const (
	rpoFixedHeaderSize   = 0x40
	rpoLegacyVertexSize  = 0x28
	rpoLegacyFaceOffset  = 0x3C
	rpoScanTerminatorMin = 4
)

// RPOLayout describes where vertex and face records live in a buffer.
type RPOLayout struct {
	Mode            LayoutMode // Strategy that produced this layout
	HeaderLength    int        // Offset of the first vertex record
	VertexStride    int        // Bytes per vertex record
	VertexCount     int
	FaceCount       int
	FloatsPerVertex int // min(stride/4, 6)
}

// FaceOffset returns the offset of the first face record.
func (l RPOLayout) FaceOffset() int {
	return l.HeaderLength + l.VertexCount*l.VertexStride
}

// checkBounds verifies vertexCount*stride + faceCount*6 <= size - header.
func (l RPOLayout) checkBounds(size int) error {
	if l.HeaderLength < 0 || l.HeaderLength > size {
		return fmt.Errorf("%w: header length %d outside buffer of %d bytes", ErrLayoutDetectionFailed, l.HeaderLength, size)
	}
	need := uint64(l.VertexCount)*uint64(l.VertexStride) + uint64(l.FaceCount)*rpoFaceSize
	avail := uint64(size - l.HeaderLength)
	if need > avail {
		return fmt.Errorf("%w: %d vertices x %d bytes + %d faces need %d bytes, %d available after header",
			ErrOutOfBounds, l.VertexCount, l.VertexStride, l.FaceCount, need, avail)
	}
	return nil
}

// AnalyzeLayout determines header length, vertex stride and record counts.
// The returned layout always fits inside data.
func AnalyzeLayout(data []byte, mode LayoutMode) (RPOLayout, error) {
	switch mode {
	case LayoutScan:
		return scanLayout(data)
	case LayoutCompact:
		return compactLayout(data)
	case LayoutLegacy:
		return legacyLayout(data)
	case LayoutAuto:
		scanned, scanErr := scanLayout(data)
		if scanErr == nil {
			return scanned, nil
		}
		compact, err := compactLayout(data)
		if err == nil {
			return compact, nil
		}
		// A bounds failure says more about the asset than a failed guess.
		if errors.Is(scanErr, ErrOutOfBounds) && !errors.Is(err, ErrOutOfBounds) {
			return RPOLayout{}, scanErr
		}
		return RPOLayout{}, err
	default:
		return RPOLayout{}, fmt.Errorf("%w: unknown layout mode %d", ErrLayoutDetectionFailed, int(mode))
	}
}

// scanLayout walks the buffer a word at a time. Each GL_FLOAT marker adds
// four times the preceding word (a component count) to the stride; the first
// zero word followed by a word > 4 ends the header.
func scanLayout(data []byte) (RPOLayout, error) {
	r := NewReader(data)
	vertexCount, faceBytes, err := readCounts(r, rpoFaceFieldOffset)
	if err != nil {
		return RPOLayout{}, err
	}

	stride, header := 0, -1
	for addr := 0; addr+4 <= len(data); addr += 4 {
		token, _ := r.Uint32At(addr)
		if token == rpoChunkMarker && addr >= 4 {
			prev, _ := r.Uint32At(addr - 4)
			stride += 4 * int(prev)
		}
		if token == 0 {
			next, err := r.Uint32At(addr + 4)
			if err != nil {
				break
			}
			if next > rpoScanTerminatorMin {
				header = addr + 8
				break
			}
		}
	}

	if header < 0 {
		return RPOLayout{}, fmt.Errorf("%w: no header terminator found", ErrLayoutDetectionFailed)
	}
	if stride < 1 {
		return RPOLayout{}, fmt.Errorf("%w: chunk table yields stride %d", ErrLayoutDetectionFailed, stride)
	}

	l := RPOLayout{
		Mode:         LayoutScan,
		HeaderLength: header,
		VertexStride: stride,
		VertexCount:  int(vertexCount),
		FaceCount:    int(faceBytes / rpoFaceSize),
	}
	l.FloatsPerVertex = floatsPerVertex(stride)
	if err := l.checkBounds(len(data)); err != nil {
		return RPOLayout{}, err
	}
	return l, nil
}

// compactLayout uses the fixed 64-byte header with the face index count at
// 0x08 and infers the stride from whatever lies between header and faces.
func compactLayout(data []byte) (RPOLayout, error) {
	r := NewReader(data)
	vertexCount, indexCount, err := readCounts(r, rpoFaceFieldOffset)
	if err != nil {
		return RPOLayout{}, err
	}
	if len(data) < rpoFixedHeaderSize {
		return RPOLayout{}, fmt.Errorf("%w: %d bytes is shorter than the %d byte header", ErrOutOfBounds, len(data), rpoFixedHeaderSize)
	}

	faces := uint64(indexCount / 3)
	body := uint64(len(data) - rpoFixedHeaderSize)
	if faces*rpoFaceSize > body {
		return RPOLayout{}, fmt.Errorf("%w: %d faces need %d bytes, %d available after header",
			ErrOutOfBounds, faces, faces*rpoFaceSize, body)
	}
	vertexBytes := body - faces*rpoFaceSize
	if vertexCount == 0 && indexCount == 0 && vertexBytes == 0 {
		// Header only: an empty mesh with nothing to derive a stride from.
		return RPOLayout{Mode: LayoutCompact, HeaderLength: rpoFixedHeaderSize}, nil
	}
	if vertexCount == 0 {
		return RPOLayout{}, fmt.Errorf("%w: cannot derive stride without vertices", ErrLayoutDetectionFailed)
	}
	if vertexBytes < uint64(vertexCount)*4 {
		return RPOLayout{}, fmt.Errorf("%w: %d vertices do not fit in %d bytes", ErrOutOfBounds, vertexCount, vertexBytes)
	}
	if vertexBytes%uint64(vertexCount) != 0 {
		return RPOLayout{}, fmt.Errorf("%w: %d vertex bytes not divisible by %d vertices", ErrLayoutDetectionFailed, vertexBytes, vertexCount)
	}

	stride := int(vertexBytes / uint64(vertexCount))
	l := RPOLayout{
		Mode:            LayoutCompact,
		HeaderLength:    rpoFixedHeaderSize,
		VertexStride:    stride,
		VertexCount:     int(vertexCount),
		FaceCount:       int(faces),
		FloatsPerVertex: floatsPerVertex(stride),
	}
	if err := l.checkBounds(len(data)); err != nil {
		return RPOLayout{}, err
	}
	return l, nil
}

// legacyLayout applies the constants of the first fixed-size revision.
func legacyLayout(data []byte) (RPOLayout, error) {
	r := NewReader(data)
	vertexCount, indexCount, err := readCounts(r, rpoLegacyFaceOffset)
	if err != nil {
		return RPOLayout{}, err
	}

	l := RPOLayout{
		Mode:            LayoutLegacy,
		HeaderLength:    rpoFixedHeaderSize,
		VertexStride:    rpoLegacyVertexSize,
		VertexCount:     int(vertexCount),
		FaceCount:       int(indexCount / 3),
		FloatsPerVertex: maxVertexVals,
	}
	if err := l.checkBounds(len(data)); err != nil {
		return RPOLayout{}, err
	}
	return l, nil
}

func readCounts(r *Reader, faceOffset int) (vertices, faceField uint32, err error) {
	if vertices, err = r.Uint32At(rpoVertexCountOffset); err != nil {
		return 0, 0, err
	}
	if faceField, err = r.Uint32At(faceOffset); err != nil {
		return 0, 0, err
	}
	return vertices, faceField, nil
}

func floatsPerVertex(stride int) int {
	return min(stride/4, maxVertexVals)
}
