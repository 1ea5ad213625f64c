package main

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/pixelwork/pixelwork"
	"github.com/pixelwork/pixelwork/gifcodec"
	"github.com/spf13/cobra"
)

func newGIFCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gif",
		Short: "Convert between animated GIFs, frames and sprite sheets",
	}
	cmd.AddCommand(newGIFDecodeCommand(ctx))
	cmd.AddCommand(newGIFEncodeCommand(ctx))
	cmd.AddCommand(newGIFSplitCommand(ctx))
	return cmd
}

// applyGIFFlags overrides the configured delay when the flag is set.
func applyGIFFlags(cmd *cobra.Command, ctx *commandContext, delayMs int) gifcodec.EncodeOptions {
	if cmd.Flags().Changed("delay") {
		ctx.cfg.GIF.DelayMs = delayMs
	}
	return ctx.cfg.EncodeOptions()
}

func newGIFDecodeCommand(ctx *commandContext) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "decode <gif>",
		Short: "Extract the composed frames of a GIF into a zip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, cleanup, err := openInput(args[0], "image")
			if err != nil {
				return err
			}
			defer cleanup()

			var n int
			err = writeOutput(out, func(w io.Writer) error {
				n, err = gifcodec.DecodeToZip(r, w)
				return err
			})
			if err != nil {
				return err
			}
			ctx.status(cmd, fmt.Sprintf("%d frames have been saved as:", n), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "frames.zip", "Destination zip")
	return cmd
}

func newGIFEncodeCommand(ctx *commandContext) *cobra.Command {
	var (
		out     string
		delayMs int
	)
	cmd := &cobra.Command{
		Use:   "encode <frame|dir>...",
		Short: "Encode frame images into an animated GIF",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := applyGIFFlags(cmd, ctx, delayMs)
			if err := ctx.cfg.Validate(); err != nil {
				return err
			}
			paths, err := expandImages(args)
			if err != nil {
				return err
			}
			frames := make([]*pixelwork.PixelBuffer, 0, len(paths))
			for _, path := range paths {
				b, err := pixelwork.DecodeFile(path)
				if err != nil {
					return err
				}
				frames = append(frames, b)
			}

			stop := ctx.startSpinner(cmd, nil, "is encoding the animation...")
			data, err := gifcodec.Encode(frames, nil, opts)
			stop(err == nil)
			if err != nil {
				return err
			}
			if err := writeOutput(out, func(w io.Writer) error {
				_, err := io.Copy(w, bytes.NewReader(data))
				return err
			}); err != nil {
				return err
			}
			ctx.status(cmd, "The animation has been saved as:", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "animation.gif", "Destination GIF")
	cmd.Flags().IntVar(&delayMs, "delay", int(gifcodec.DefaultDelay/time.Millisecond), "Frame delay in milliseconds")
	return cmd
}

func newGIFSplitCommand(ctx *commandContext) *cobra.Command {
	var (
		out        string
		cols, rows int
		delayMs    int
	)
	cmd := &cobra.Command{
		Use:   "split <sheet>",
		Short: "Turn every row of a sprite sheet into its own GIF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := applyGIFFlags(cmd, ctx, delayMs)
			if err := ctx.cfg.Validate(); err != nil {
				return err
			}
			sheet, err := decodeInput(args[0])
			if err != nil {
				return err
			}
			gifs, err := gifcodec.FramesFromSheet(sheet, cols, rows, opts)
			if err != nil {
				return err
			}
			if err := writeOutput(out, func(w io.Writer) error {
				return gifcodec.RowsToZip(gifs, w)
			}); err != nil {
				return err
			}
			ctx.status(cmd, fmt.Sprintf("%d animations have been saved as:", len(gifs)), out)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "rows.zip", "Destination zip")
	f.IntVar(&cols, "cols", 1, "Sheet columns")
	f.IntVar(&rows, "rows", 1, "Sheet rows")
	f.IntVar(&delayMs, "delay", int(gifcodec.DefaultDelay/time.Millisecond), "Frame delay in milliseconds")
	return cmd
}
