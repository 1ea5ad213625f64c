package pixelwork

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/pixelwork/pixelwork/metrics"
	"github.com/pixelwork/pixelwork/utils"
	"go.uber.org/zap"
)

// Processor options
type Processor struct {
	// Matte enables the chroma key with MatteParams.
	Matte       bool
	MatteParams MatteParams
	// Mask, when painted, is erased from every matted frame.
	Mask     *BrushMask
	Crop     CropRegion
	CropMode CropMode
	CropPad  int

	Sprite SpriteOptions
	Stroke StrokeConfig
	// StrokePerFrame strokes every frame at cell resolution before packing
	// instead of stroking the packed sheet once.
	StrokePerFrame bool

	// Single image options.
	NewWidth   int
	NewHeight  int
	KeepAspect bool
	Pixelated  bool
	PixelSize  int
	Format     Format

	SeekTimeout time.Duration
	Spinner     *utils.Spinner
	Logger      *zap.Logger
	RunID       string
}

// NewProcessor returns a Processor with a fresh run ID and a no-op logger.
func NewProcessor() *Processor {
	return &Processor{
		RunID:      uuid.NewString(),
		Logger:     zap.NewNop(),
		KeepAspect: true,
		Format:     FormatPNG,
		CropMode:   CropNone,
	}
}

func (p *Processor) log() *zap.Logger {
	l := p.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return l.With(zap.String("run_id", p.RunID))
}

func (p *Processor) progress(done, total int) {
	if p.Spinner != nil {
		p.Spinner.SetProgress(done, total)
	}
}

// ExtractFrames captures frames from src every 1/fps seconds inside
// [start, end), up to maxFrames. The source duration bounds the range.
func (p *Processor) ExtractFrames(ctx context.Context, src FrameSource, start, end, fps float64, maxFrames int) (frames []Frame, err error) {
	began := time.Now()
	defer func() { metrics.ObserveStage("extract", began, err) }()

	start, end = ClampRange(start, end, src.Duration())
	ts, err := Timestamps(start, end, fps, maxFrames)
	if err != nil {
		return nil, err
	}
	ex := NewExtractor(src)
	ex.Crop = p.Crop
	if p.SeekTimeout > 0 {
		ex.SeekTimeout = p.SeekTimeout
	}
	ex.Progress = p.progress

	frames, err = ex.Extract(ctx, ts)
	if err != nil {
		p.log().Error("frame extraction failed", zap.Error(err))
		return nil, err
	}
	metrics.FramesExtractedTotal.Add(float64(len(frames)))
	p.log().Info("frames extracted",
		zap.Int("frame_count", len(frames)),
		zap.Float64("start", start),
		zap.Float64("end", end),
		zap.Duration("elapsed", time.Since(began)),
	)
	return frames, nil
}

// Duplicates groups byte-identical frames.
func (p *Processor) Duplicates(frames []Frame) map[int]DuplicateInfo {
	dups := FindDuplicates(Buffers(frames))
	n, groups := DuplicateSummary(dups)
	metrics.DuplicateGroupsTotal.Add(float64(groups))
	p.log().Info("duplicates detected", zap.Int("frame_count", n), zap.Int("group_count", groups))
	return dups
}

// DeselectDuplicates keeps the first frame of every duplicate group selected
// and deselects the others.
func (p *Processor) DeselectDuplicates(frames []Frame) []Frame {
	dups := p.Duplicates(frames)
	seen := make(map[int]bool)
	out := make([]Frame, len(frames))
	copy(out, frames)
	for i := range out {
		d, ok := dups[i]
		if !ok {
			continue
		}
		if seen[d.GroupID] {
			out[i].Selected = false
		}
		seen[d.GroupID] = true
	}
	return out
}

// MatteFrames keys every selected frame and erases the brush mask from it.
// The input frames are left untouched; the matted set is returned only when
// every frame succeeds.
func (p *Processor) MatteFrames(frames []Frame) (out []Frame, err error) {
	began := time.Now()
	defer func() { metrics.ObserveStage("matte", began, err) }()

	out = make([]Frame, len(frames))
	total := len(frames)
	for i, f := range frames {
		out[i] = f
		if !f.Selected {
			continue
		}
		buf, err := p.matte(f.Buffer, p.Mask)
		if err != nil {
			Release(out[:i])
			p.log().Error("matte failed", zap.Int("frame", i), zap.Error(err))
			return nil, fmt.Errorf("matte frame %d: %w", i, err)
		}
		out[i].Buffer = buf
		metrics.FramesMattedTotal.Inc()
		p.progress(i+1, total)
		runtime.Gosched()
	}
	p.log().Info("frames matted", zap.Int("frame_count", total), zap.Duration("elapsed", time.Since(began)))
	return out, nil
}

// matte returns a keyed, erased and content-cropped copy of b.
func (p *Processor) matte(b *PixelBuffer, mask *BrushMask) (*PixelBuffer, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	buf := b.Clone()
	if p.Matte {
		ChromaKey(buf, p.MatteParams)
	}
	if mask.HasMask() {
		if err := mask.Apply(buf); err != nil {
			return nil, err
		}
	}
	return CropToContent(buf, p.CropMode, p.CropPad), nil
}

// ComposeSheet packs the selected frames into a sprite sheet and applies the
// configured stroke.
func (p *Processor) ComposeSheet(frames []Frame) (sheet *SpriteSheet, err error) {
	began := time.Now()
	defer func() { metrics.ObserveStage("compose", began, err) }()

	bufs, ts := Selected(frames)
	if len(bufs) == 0 {
		return nil, fmt.Errorf("%w: no frame selected", ErrEmpty)
	}

	opts := p.Sprite
	if p.StrokePerFrame && p.Stroke.Width > 0 {
		bufs, err = p.StrokeCells(bufs)
		if err != nil {
			return nil, err
		}
		// Cells are already fitted and padded.
		opts.Padding = 0
	}
	sheet, err = ComposeSprite(bufs, ts, opts)
	if err != nil {
		p.log().Error("sprite composition failed", zap.Error(err))
		return nil, err
	}
	if !p.StrokePerFrame {
		if err := p.ApplyStrokeToSheet(sheet); err != nil {
			return nil, err
		}
	}
	metrics.SheetsComposedTotal.Inc()
	p.log().Info("sprite sheet composed",
		zap.Int("frame_count", len(sheet.Index.Frames)),
		zap.Int("columns", sheet.Cols),
		zap.Int("rows", sheet.Rows),
		zap.Int("sheet_width", sheet.Index.SheetSize.W),
		zap.Int("sheet_height", sheet.Index.SheetSize.H),
		zap.Duration("elapsed", time.Since(began)),
	)
	return sheet, nil
}

// StrokeCells fits every frame into a sprite cell and strokes it there.
func (p *Processor) StrokeCells(bufs []*PixelBuffer) ([]*PixelBuffer, error) {
	opts := p.Sprite
	batch := StrokeBatch{
		Prepare: func(b *PixelBuffer) (*PixelBuffer, error) {
			return FitFrame(b, opts.CellW, opts.CellH, opts.Padding, opts.Pixelated)
		},
		Progress: p.progress,
	}
	out, err := batch.Run(bufs, p.Stroke)
	if err != nil {
		p.log().Error("frame stroke failed", zap.Error(err))
		return nil, err
	}
	metrics.FramesStrokedTotal.Add(float64(len(out)))
	return out, nil
}

// ApplyStrokeToSheet strokes the packed sheet in place.
func (p *Processor) ApplyStrokeToSheet(sheet *SpriteSheet) error {
	if p.Stroke.Width <= 0 {
		return nil
	}
	if err := ApplyStroke(sheet.Sheet, p.Stroke); err != nil {
		return err
	}
	metrics.FramesStrokedTotal.Inc()
	return nil
}

// ProcessImage runs the single image pipeline: crop, matte, mask erase,
// content crop, resize, pixelate and stroke, then encodes the result to w.
func (p *Processor) ProcessImage(r io.Reader, w io.Writer) (err error) {
	began := time.Now()
	defer func() { metrics.ObserveStage("image", began, err) }()

	src, err := Decode(r)
	if err != nil {
		return err
	}
	if src, err = p.Crop.Apply(src); err != nil {
		return err
	}
	mask := p.Mask
	if mask != nil {
		// The mask is bound to one frame size.
		if mw, mh := mask.Bounds(); mw != src.Width || mh != src.Height {
			p.log().Warn("brush mask skipped",
				zap.Int("mask_width", mw), zap.Int("mask_height", mh),
				zap.Int("width", src.Width), zap.Int("height", src.Height),
			)
			mask = nil
		}
	}
	buf, err := p.matte(src, mask)
	if err != nil {
		return err
	}
	if p.NewWidth > 0 && p.NewHeight > 0 {
		if buf, err = Resize(buf, p.NewWidth, p.NewHeight, p.KeepAspect, p.Pixelated); err != nil {
			return err
		}
	}
	if p.PixelSize > 1 {
		if buf, err = Pixelate(buf, p.PixelSize); err != nil {
			return err
		}
	}
	if err := ApplyStroke(buf, p.Stroke); err != nil {
		return err
	}
	if err := Encode(w, buf, p.Format); err != nil {
		return err
	}
	p.log().Debug("image processed",
		zap.Int("width", buf.Width),
		zap.Int("height", buf.Height),
		zap.Duration("elapsed", time.Since(began)),
	)
	return nil
}
