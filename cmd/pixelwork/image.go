package main

import (
	"github.com/pixelwork/pixelwork"
	"github.com/spf13/cobra"
)

// imageOptions are shared by the single image commands.
type imageOptions struct {
	in      string
	out     string
	workers int
}

func (o *imageOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.in, "in", "i", pipeName, "Source image, directory or URL (- reads stdin)")
	f.StringVarP(&o.out, "out", "o", pipeName, "Destination image or directory (- writes stdout)")
	f.IntVar(&o.workers, "conc", 0, "Number of files processed concurrently")
}

// runImage executes the image pipeline configured by setup.
func runImage(cmd *cobra.Command, ctx *commandContext, o *imageOptions, msg string, setup func(p *pixelwork.Processor) error) error {
	if err := ctx.cfg.Validate(); err != nil {
		return err
	}
	p, err := ctx.processor()
	if err != nil {
		return err
	}
	if o.out != pipeName {
		if p.Format, err = pixelwork.FormatFromPath(o.out); err != nil {
			return err
		}
	}
	if err := setup(p); err != nil {
		return err
	}

	// Progress output would corrupt piped image data.
	quiet := ctx.quiet || o.out == pipeName
	var stop func(bool)
	if !quiet {
		stop = ctx.startSpinner(cmd, p, msg)
	}
	err = p.Execute(&pixelwork.Ops{
		Src:      o.in,
		Dst:      o.out,
		PipeName: pipeName,
		Workers:  o.workers,
		Quiet:    quiet,
		Status:   cmd.ErrOrStderr(),
	})
	if stop != nil {
		stop(err == nil)
	}
	return err
}

func newMatteCommand(ctx *commandContext) *cobra.Command {
	var (
		opts                    imageOptions
		bgColor, cropMode, mask string
		tolerance, feather      float64
		cropPad                 int
	)
	cmd := &cobra.Command{
		Use:   "matte",
		Short: "Remove a solid background from images",
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed
			applyMatteFlags(changed, ctx.cfg, bgColor, tolerance, feather, cropMode)
			if changed("crop-pad") {
				ctx.cfg.Matte.CropPad = cropPad
			}
			return runImage(cmd, ctx, &opts, "is removing the background...", func(p *pixelwork.Processor) error {
				p.Matte = true
				p.Stroke.Width = 0
				if mask == "" {
					return nil
				}
				img, err := decodeInput(mask)
				if err != nil {
					return err
				}
				p.Mask, err = pixelwork.LoadBrushMask(img)
				return err
			})
		},
	}
	opts.register(cmd)
	f := cmd.Flags()
	f.StringVar(&bgColor, "bg-color", "", "Background color (#rrggbb)")
	f.Float64Var(&tolerance, "tolerance", 0, "Color distance keyed fully transparent")
	f.Float64Var(&feather, "feather", 0, "Width of the partial transparency band")
	f.StringVar(&cropMode, "crop-mode", "", "Content crop (none, tight_bbox, safe_bbox)")
	f.IntVar(&cropPad, "crop-pad", 0, "Padding kept around the content by safe_bbox")
	f.StringVar(&mask, "mask", "", "Brush mask image erased after keying")
	return cmd
}

func newStrokeCommand(ctx *commandContext) *cobra.Command {
	var (
		opts  imageOptions
		width int
		color string
	)
	cmd := &cobra.Command{
		Use:   "stroke",
		Short: "Draw an inward outline along the alpha edges of images",
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed
			if changed("width") || ctx.cfg.Stroke.Width == 0 {
				ctx.cfg.Stroke.Width = width
			}
			if changed("color") {
				ctx.cfg.Stroke.Color = color
			}
			return runImage(cmd, ctx, &opts, "is stroking the image...", func(p *pixelwork.Processor) error {
				p.Matte = false
				p.CropMode = pixelwork.CropNone
				return nil
			})
		},
	}
	opts.register(cmd)
	cmd.Flags().IntVarP(&width, "width", "w", 2, "Stroke width in pixels")
	cmd.Flags().StringVar(&color, "color", "", "Stroke color (#rrggbb)")
	return cmd
}

func newPixelateCommand(ctx *commandContext) *cobra.Command {
	var (
		opts          imageOptions
		block         int
		width, height int
		stretch       bool
	)
	cmd := &cobra.Command{
		Use:   "pixelate",
		Short: "Resize images and reduce them to square pixel blocks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImage(cmd, ctx, &opts, "is pixelating the image...", func(p *pixelwork.Processor) error {
				p.Matte = false
				p.CropMode = pixelwork.CropNone
				p.Stroke.Width = 0
				p.PixelSize = block
				p.NewWidth, p.NewHeight = width, height
				p.KeepAspect = !stretch
				p.Pixelated = true
				return nil
			})
		},
	}
	opts.register(cmd)
	f := cmd.Flags()
	f.IntVar(&block, "block", 8, "Pixel block size")
	f.IntVar(&width, "width", 0, "Target width (requires --height)")
	f.IntVar(&height, "height", 0, "Target height (requires --width)")
	f.BoolVar(&stretch, "stretch", false, "Ignore the aspect ratio when resizing")
	return cmd
}
