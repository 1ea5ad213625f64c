package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pixelwork/pixelwork/utils"
)

const HelpBanner = `
┌─┐┬─┐ ┬┌─┐┬  ┬ ┬┌─┐┬─┐┬┌─
├─┘│┌┴┬┘├┤ │  │││││ │├┬┘├┴┐
┴  ┴┴ └─└─┘┴─┘└┴┘└─┘┴└─┴ ┴

Sprite sheet and frame tooling.
    Version: %s
`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, utils.DecorateText(err.Error(), utils.ErrorMessage))
		}
		os.Exit(1)
	}
}
