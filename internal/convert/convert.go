// Package convert turns RPO/RPOZ assets into OBJ files.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/rpotool/internal/fileutil"
	"github.com/Faultbox/rpotool/pkg/formats"
)

// Options controls decoding and the OBJ header.
type Options struct {
	Layout       formats.LayoutMode
	InflateLimit int    // <= 0 means formats.DefaultInflateLimit
	Comments     bool   // Write "# Converted from <name>"
	Notice       string // Extra header line, written when Comments is set
}

// Source supplies the raw bytes of one asset.
type Source interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
}

// FileSource reads an asset from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.Path)
}

// Job pairs a source with the OBJ path it is written to. An empty Output
// converts without writing.
type Job struct {
	Source Source
	Output string
}

// Result describes one conversion. Err is set when any stage failed.
type Result struct {
	Name      string
	Output    string
	InputSize int
	RPO       *formats.RPO
	OBJ       []byte
	Duration  time.Duration
	Err       error
}

// Converter runs the codec with fixed options. It is safe for concurrent use.
type Converter struct {
	opts Options
	log  *zap.Logger
}

// New creates a converter. A nil logger discards output.
func New(opts Options, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{opts: opts, log: log}
}

// Convert decodes data and encodes the mesh as OBJ. name labels the asset in
// the header comment and in errors.
func (c *Converter) Convert(name string, data []byte) (*Result, error) {
	start := time.Now()
	res := &Result{Name: name, InputSize: len(data)}

	rpo, err := formats.ParseRPO(data, formats.RPOOptions{
		Layout:       c.opts.Layout,
		InflateLimit: c.opts.InflateLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	res.RPO = rpo
	res.OBJ = formats.EncodeOBJ(&rpo.Mesh, formats.OBJOptions{Comments: c.comments(name)})
	res.Duration = time.Since(start)

	c.log.Debug("converted",
		zap.String("name", name),
		zap.Stringer("envelope", rpo.Envelope),
		zap.Stringer("layout", rpo.Layout.Mode),
		zap.Int("stride", rpo.Layout.VertexStride),
		zap.Int("vertices", rpo.Mesh.VertexCount()),
		zap.Int("faces", rpo.Mesh.FaceCount()),
	)
	return res, nil
}

func (c *Converter) comments(name string) []string {
	if !c.opts.Comments {
		return nil
	}
	lines := []string{"Converted from " + filepath.Base(name)}
	if c.opts.Notice != "" {
		lines = append(lines, c.opts.Notice)
	}
	return lines
}

// Run reads, converts and writes a single job. The returned result always
// carries the job name; failures are reported in Result.Err.
func (c *Converter) Run(ctx context.Context, job Job) *Result {
	name := job.Source.Name()
	fail := func(err error) *Result {
		c.log.Warn("conversion failed",
			zap.String("name", name),
			zap.String("kind", formats.ErrorKind(err)),
			zap.Error(err),
		)
		return &Result{Name: name, Output: job.Output, Err: err}
	}

	data, err := job.Source.Read(ctx)
	if err != nil {
		return fail(fmt.Errorf("reading %s: %w", name, err))
	}

	res, err := c.Convert(name, data)
	if err != nil {
		return fail(err)
	}
	res.Output = job.Output

	if job.Output != "" {
		if err := fileutil.WriteFileAtomic(job.Output, res.OBJ, 0o644); err != nil {
			return fail(fmt.Errorf("writing %s: %w", job.Output, err))
		}
		c.log.Info("wrote model",
			zap.String("name", name),
			zap.String("output", job.Output),
			zap.Int("vertices", res.RPO.Mesh.VertexCount()),
			zap.Int("faces", res.RPO.Mesh.FaceCount()),
		)
	}
	return res
}
