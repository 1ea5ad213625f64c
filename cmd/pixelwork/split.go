package main

import (
	"fmt"
	"io"

	"github.com/pixelwork/pixelwork"
	"github.com/pixelwork/pixelwork/bundle"
	"github.com/spf13/cobra"
)

func newSplitCommand(ctx *commandContext) *cobra.Command {
	var (
		out, prefix string
		cols, rows  int
	)
	cmd := &cobra.Command{
		Use:   "split <sheet>",
		Short: "Cut a sprite sheet into frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, err := decodeInput(args[0])
			if err != nil {
				return err
			}
			pieces, err := pixelwork.SplitSheet(sheet, cols, rows)
			if err != nil {
				return err
			}
			err = writeOutput(out, func(w io.Writer) error {
				return bundle.WriteFrameSet(w, prefix, pieces)
			})
			if err != nil {
				return err
			}
			ctx.status(cmd, fmt.Sprintf("%d frames have been saved as:", len(pieces)), out)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "frames.zip", "Destination zip")
	f.StringVar(&prefix, "prefix", "frame", "Frame file name prefix")
	f.IntVar(&cols, "cols", 1, "Sheet columns")
	f.IntVar(&rows, "rows", 1, "Sheet rows")
	return cmd
}
