package formats

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// DefaultInflateLimit caps the decompressed size of an RPOZ payload.
const DefaultInflateLimit = 256 << 20

// inflateChunk bounds a single read from the inflater.
const inflateChunk = 16 << 10

// Envelope identifies the outer wrapping of an asset buffer.
type Envelope int

const (
	EnvelopeNone Envelope = iota // Plain RPO
	EnvelopeZlib                 // RPOZ: zlib stream around an RPO
)

// String returns a human-readable envelope name.
func (e Envelope) String() string {
	switch e {
	case EnvelopeNone:
		return "none"
	case EnvelopeZlib:
		return "zlib"
	default:
		return fmt.Sprintf("Unknown(%d)", int(e))
	}
}

// rpozMagic is the zlib header every RPOZ file starts with: 32K window,
// default compression level.
var rpozMagic = [2]byte{0x78, 0x9C}

// DetectEnvelope reports EnvelopeZlib only for the RPOZ magic. Other zlib
// headers fall through to RPO validation and fail there.
func DetectEnvelope(data []byte) Envelope {
	if len(data) >= 2 && data[0] == rpozMagic[0] && data[1] == rpozMagic[1] {
		return EnvelopeZlib
	}
	return EnvelopeNone
}

// Decompress unwraps an RPOZ envelope. Uncompressed input is returned as is.
func Decompress(data []byte, limit int) ([]byte, Envelope, error) {
	env := DetectEnvelope(data)
	if env == EnvelopeNone {
		return data, env, nil
	}
	out, err := Inflate(data, limit)
	if err != nil {
		return nil, env, err
	}
	return out, env, nil
}

// Inflate decompresses a complete zlib stream. The output buffer starts at
// twice the input size and doubles whenever it fills up. A limit <= 0 means
// DefaultInflateLimit.
func Inflate(data []byte, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultInflateLimit
	}

	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, inflateError(err)
	}
	defer zr.Close()

	out := make([]byte, 0, min(2*len(data)+inflateChunk, limit+1))
	for {
		if len(out) > limit {
			return nil, fmt.Errorf("%w: inflated size exceeds %d bytes", ErrAllocationFailure, limit)
		}
		if len(out) == cap(out) {
			grown := make([]byte, len(out), min(2*cap(out), limit+1))
			copy(grown, out)
			out = grown
		}

		end := min(len(out)+inflateChunk, cap(out))
		n, err := zr.Read(out[len(out):end])
		out = out[:len(out)+n]
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, inflateError(err)
		}
	}

	if len(out) > limit {
		return nil, fmt.Errorf("%w: inflated size exceeds %d bytes", ErrAllocationFailure, limit)
	}
	return out, nil
}

// inflateError maps zlib/flate failures onto the codec error kinds. Anything
// that is not a premature end of input (bad header, flate.CorruptInputError,
// checksum mismatch) counts as a corrupt stream.
func inflateError(err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrTruncatedInput, err)
	}
	return fmt.Errorf("%w: %v", ErrCorruptStream, err)
}
