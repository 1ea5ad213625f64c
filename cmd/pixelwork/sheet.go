package main

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pixelwork/pixelwork"
	"github.com/pixelwork/pixelwork/bundle"
	"github.com/pixelwork/pixelwork/capture"
	"github.com/pixelwork/pixelwork/config"
	"github.com/pixelwork/pixelwork/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type sheetOptions struct {
	out       string
	framesOut string
	mask      string
	start     float64
	end       float64
	dedupe    bool
	publish   bool
	flags     spriteFlags
}

func newSheetCommand(ctx *commandContext) *cobra.Command {
	opts := &sheetOptions{}

	cmd := &cobra.Command{
		Use:   "sheet <video|url|frame-dir>",
		Short: "Capture frames and pack them into a sprite sheet",
		Long: `Capture frames from a video (or a directory of frame images), remove the
background, optionally stroke the outlines and pack the result into a sprite
sheet. A .zip output holds sprite.png and index.json; any other output is
written as a PNG with the index next to it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.flags.apply(cmd, ctx.cfg)
			if err := ctx.cfg.Validate(); err != nil {
				return err
			}
			return runSheet(cmd, ctx, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.out, "out", "o", "sprite.zip", "Destination (.zip bundle or .png raster)")
	f.StringVar(&opts.framesOut, "frames-out", "", "Also write the matted frames as a zip frame set")
	f.StringVar(&opts.mask, "mask", "", "Brush mask image erased from every frame")
	f.Float64Var(&opts.start, "start", 0, "Start position in seconds")
	f.Float64Var(&opts.end, "end", 0, "End position in seconds (0 means the whole video)")
	f.BoolVar(&opts.dedupe, "dedupe", false, "Drop byte-identical frames, keeping the first of each group")
	f.BoolVar(&opts.publish, "publish", false, "Upload the bundle to the configured store")
	opts.flags.register(cmd)
	return cmd
}

func runSheet(cmd *cobra.Command, ctx *commandContext, opts *sheetOptions, input string) error {
	p, err := ctx.processor()
	if err != nil {
		return err
	}
	if opts.mask != "" {
		img, err := decodeInput(opts.mask)
		if err != nil {
			return err
		}
		if p.Mask, err = pixelwork.LoadBrushMask(img); err != nil {
			return err
		}
	}

	src, cleanup, err := openSource(ctx, input)
	if err != nil {
		return err
	}
	defer cleanup()

	stop := ctx.startSpinner(cmd, p, "is capturing frames...")
	frames, err := p.ExtractFrames(cmd.Context(), src, opts.start, opts.end, ctx.cfg.Capture.FPS, ctx.cfg.Capture.MaxFrames)
	stop(err == nil)
	if err != nil {
		return err
	}
	defer pixelwork.Release(frames)

	if opts.dedupe {
		frames = p.DeselectDuplicates(frames)
	}

	stop = ctx.startSpinner(cmd, p, "is removing the background...")
	matted, err := p.MatteFrames(frames)
	stop(err == nil)
	if err != nil {
		return err
	}

	stop = ctx.startSpinner(cmd, p, "is packing the sprite sheet...")
	sheet, err := p.ComposeSheet(matted)
	stop(err == nil)
	if err != nil {
		return err
	}

	if err := writeSheet(opts.out, sheet); err != nil {
		return err
	}
	ctx.status(cmd, "The sprite sheet has been saved as:", opts.out)

	if opts.framesOut != "" {
		bufs, _ := pixelwork.Selected(matted)
		err := writeOutput(opts.framesOut, func(w io.Writer) error {
			return bundle.WriteFrameSet(w, "frame", bufs)
		})
		if err != nil {
			return err
		}
		ctx.status(cmd, "The frames have been saved as:", opts.framesOut)
	}

	if opts.publish {
		store, err := newStore(cmd, ctx.cfg)
		if err != nil {
			return err
		}
		key := path.Join(p.RunID, "sprite.zip")
		err = bundle.Publish(cmd.Context(), store, key, func(w io.Writer) error {
			return bundle.WriteSpriteBundle(w, sheet)
		})
		if err != nil {
			return err
		}
		ctx.log.Info("bundle published", zap.String("run_id", p.RunID), zap.String("key", key))
		ctx.status(cmd, "The bundle has been published as:", key)
	}
	return nil
}

// openSource picks a frame source for input: a directory of frames, or a
// video file or URL decoded through ffmpeg.
func openSource(ctx *commandContext, input string) (pixelwork.FrameSource, func(), error) {
	if fi, err := os.Stat(input); err == nil && fi.IsDir() {
		paths, err := listImages(input)
		if err != nil {
			return nil, nil, err
		}
		src, err := capture.OpenSequence(paths, ctx.cfg.Capture.FPS)
		return src, func() {}, err
	}
	local, cleanup, err := localPath(input, "video")
	if err != nil {
		return nil, nil, err
	}
	src, err := capture.OpenFFmpeg(local, ctx.log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	ctx.log.Info("video opened",
		zap.String("path", input),
		zap.String("duration", utils.FormatTimestamp(src.Duration())),
	)
	return src, cleanup, nil
}

// writeSheet writes a zip bundle, or a PNG plus a sibling index.json.
func writeSheet(out string, sheet *pixelwork.SpriteSheet) error {
	if out == pipeName || strings.EqualFold(filepath.Ext(out), ".zip") {
		return writeOutput(out, func(w io.Writer) error {
			return bundle.WriteSpriteBundle(w, sheet)
		})
	}
	if err := writeOutput(out, func(w io.Writer) error {
		return bundle.WriteRaster(w, sheet)
	}); err != nil {
		return err
	}
	index, err := bundle.IndexJSON(sheet.Index)
	if err != nil {
		return err
	}
	return os.WriteFile(strings.TrimSuffix(out, filepath.Ext(out))+".json", index, 0o644)
}

// newStore returns the MinIO store when an endpoint is configured and a
// local directory store otherwise.
func newStore(cmd *cobra.Command, cfg *config.Config) (bundle.Store, error) {
	s := cfg.Storage
	if s.MinIOEndpoint == "" {
		return bundle.FSStore{Dir: s.Dir}, nil
	}
	store, err := bundle.NewMinIOStore(bundle.MinIOConfig{
		Endpoint:  s.MinIOEndpoint,
		AccessKey: s.MinIOAccessKey,
		SecretKey: s.MinIOSecretKey,
		UseSSL:    s.MinIOUseSSL,
		Bucket:    s.MinIOBucket,
	})
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(cmd.Context()); err != nil {
		return nil, err
	}
	return store, nil
}

// spriteFlags override the configured capture, matte, layout and stroke.
type spriteFlags struct {
	fps         float64
	maxFrames   int
	cols        int
	cell        int
	padding     int
	spacing     int
	layout      string
	pixelated   bool
	background  string
	bgColor     string
	tolerance   float64
	feather     float64
	noMatte     bool
	cropMode    string
	strokeWidth int
	strokeColor string
	perFrame    bool
	workers     int
}

func (s *spriteFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&s.fps, "fps", 0, "Capture rate in frames per second")
	f.IntVar(&s.maxFrames, "max-frames", 0, "Maximum number of captured frames")
	f.IntVar(&s.cols, "cols", 0, "Sheet columns")
	f.IntVar(&s.cell, "cell", 0, "Square cell size in pixels")
	f.IntVar(&s.padding, "padding", 0, "Cell padding in pixels")
	f.IntVar(&s.spacing, "spacing", 0, "Spacing between cells in pixels")
	f.StringVar(&s.layout, "layout", "", "Layout (fixed_columns, auto_square)")
	f.BoolVar(&s.pixelated, "pixelated", false, "Scale with nearest neighbor sampling")
	f.StringVar(&s.background, "background", "", "Cell background color (#rrggbb)")
	f.StringVar(&s.bgColor, "bg-color", "", "Matte background color (#rrggbb)")
	f.Float64Var(&s.tolerance, "tolerance", 0, "Matte color distance tolerance")
	f.Float64Var(&s.feather, "feather", 0, "Matte feather width")
	f.BoolVar(&s.noMatte, "no-matte", false, "Keep the background")
	f.StringVar(&s.cropMode, "crop-mode", "", "Content crop (none, tight_bbox, safe_bbox)")
	f.IntVar(&s.strokeWidth, "stroke", 0, "Stroke width in pixels")
	f.StringVar(&s.strokeColor, "stroke-color", "", "Stroke color (#rrggbb)")
	f.BoolVar(&s.perFrame, "per-frame-stroke", false, "Stroke every cell instead of the packed sheet")
	f.IntVar(&s.workers, "workers", 0, "Number of frames fitted concurrently")
}

func (s *spriteFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("fps") {
		cfg.Capture.FPS = s.fps
	}
	if changed("max-frames") {
		cfg.Capture.MaxFrames = s.maxFrames
	}
	if changed("cols") {
		cfg.Sprite.Columns = s.cols
	}
	if changed("cell") {
		cfg.Sprite.CellWidth, cfg.Sprite.CellHeight = s.cell, s.cell
	}
	if changed("padding") {
		cfg.Sprite.Padding = s.padding
	}
	if changed("spacing") {
		cfg.Sprite.Spacing = s.spacing
	}
	if changed("layout") {
		cfg.Sprite.Layout = s.layout
	}
	if changed("pixelated") {
		cfg.Sprite.Pixelated = s.pixelated
	}
	if changed("background") {
		cfg.Sprite.Background = s.background
	}
	applyMatteFlags(changed, cfg, s.bgColor, s.tolerance, s.feather, s.cropMode)
	if changed("no-matte") {
		cfg.Matte.Enabled = !s.noMatte
	}
	if changed("stroke") {
		cfg.Stroke.Width = s.strokeWidth
	}
	if changed("stroke-color") {
		cfg.Stroke.Color = s.strokeColor
	}
	if changed("per-frame-stroke") {
		cfg.Stroke.PerFrame = s.perFrame
	}
	if changed("workers") {
		cfg.Runtime.Workers = s.workers
	}
}

func applyMatteFlags(changed func(string) bool, cfg *config.Config, bg string, tol, feather float64, cropMode string) {
	if changed("bg-color") {
		cfg.Matte.BgColor = bg
	}
	if changed("tolerance") {
		cfg.Matte.Tolerance = tol
	}
	if changed("feather") {
		cfg.Matte.Feather = feather
	}
	if changed("crop-mode") {
		cfg.Matte.CropMode = cropMode
	}
}
