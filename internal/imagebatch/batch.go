// imagebatch/batch.go - Sequential crop-and-encode runs over a preset
package imagebatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/studioleflow/portal/internal/metrics"
)

// Uploader publishes a written file under key
type Uploader interface {
	Upload(ctx context.Context, key, path string) error
}

// Written is one successfully processed item
type Written struct {
	Item Item
	Path string
	Size int64
}

// Failure is one item that could not be processed
type Failure struct {
	Item Item
	Err  error
}

type Report struct {
	Preset  string
	Written []Written
	Failed  []Failure
}

// TotalSize of everything written
func (r Report) TotalSize() int64 {
	var n int64
	for _, w := range r.Written {
		n += w.Size
	}
	return n
}

// Processor runs presets relative to Root
type Processor struct {
	Root     string
	Log      *zap.Logger
	Uploader Uploader
}

// Run processes every item of p in order. Item failures are logged and
// reported; only an unusable output directory stops the batch.
func (p *Processor) Run(ctx context.Context, preset Preset) (Report, error) {
	rep := Report{Preset: preset.Name}
	outDir := filepath.Join(p.Root, preset.OutputDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return rep, fmt.Errorf("create output dir: %w", err)
	}

	p.Log.Info("🖼️  Starting image processing", zap.String("preset", preset.Name), zap.Int("items", len(preset.Items)))
	for _, it := range preset.Items {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		w, err := p.process(ctx, preset, it, outDir)
		if err != nil {
			p.Log.Error(fmt.Sprintf("❌ Error processing %s", it.Input), zap.Error(err))
			metrics.ImageBatchItems.WithLabelValues(preset.Name, "error").Inc()
			rep.Failed = append(rep.Failed, Failure{Item: it, Err: err})
			continue
		}
		p.Log.Info(fmt.Sprintf("✅ %s (%dx%d) - %.2fMB", it.Output, it.Width, it.Height, float64(w.Size)/1024/1024))
		metrics.ImageBatchItems.WithLabelValues(preset.Name, "ok").Inc()
		rep.Written = append(rep.Written, w)
	}

	p.Log.Info("✨ Image processing complete",
		zap.String("output_dir", outDir),
		zap.Int("written", len(rep.Written)),
		zap.Int("failed", len(rep.Failed)),
		zap.String("total", humanize.Bytes(uint64(rep.TotalSize()))),
	)
	return rep, nil
}

func (p *Processor) process(ctx context.Context, preset Preset, it Item, outDir string) (Written, error) {
	if !validStrategy(it.Crop) {
		return Written{}, fmt.Errorf("unknown crop strategy %q", it.Crop)
	}
	src, err := imaging.Open(filepath.Join(p.Root, it.Input), imaging.AutoOrientation(true))
	if err != nil {
		return Written{}, fmt.Errorf("open: %w", err)
	}
	img, err := Fill(src, it.Width, it.Height, it.Crop)
	if err != nil {
		return Written{}, err
	}
	out := filepath.Join(outDir, it.Output)
	if err := imaging.Save(img, out, imaging.JPEGQuality(it.Quality)); err != nil {
		return Written{}, fmt.Errorf("encode: %w", err)
	}
	st, err := os.Stat(out)
	if err != nil {
		return Written{}, fmt.Errorf("stat output: %w", err)
	}
	if p.Uploader != nil {
		if err := p.Uploader.Upload(ctx, preset.Name+"/"+it.Output, out); err != nil {
			return Written{}, fmt.Errorf("upload: %w", err)
		}
	}
	return Written{Item: it, Path: out, Size: st.Size()}, nil
}
