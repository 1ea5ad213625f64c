/*
Package pixelwork turns video footage and still images into sprite assets. It captures
frames at a fixed rate, removes a solid background with a color-distance matte, lets a
hand painted brush mask erase what the matte missed, groups duplicate frames, draws an
inward stroke along alpha edges and packs the result into a sprite sheet with a
positional JSON index.

Every algorithm works in place on a PixelBuffer, a non-premultiplied RGBA raster.
The gifcodec, capture and bundle sub-packages build on top of it.

The package provides a command line interface exposing every pipeline.
To check the supported commands type:

	$ pixelwork --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"os"

		"github.com/pixelwork/pixelwork"
	)

	func main() {
		p := pixelwork.NewProcessor()
		p.Matte = true
		p.MatteParams = pixelwork.MatteParams{BgColor: pixelwork.RGB{G: 255}, Tolerance: 40, Feather: 10}
		p.Stroke = pixelwork.StrokeConfig{Width: 2}

		in, _ := os.Open("input.png")
		out, _ := os.Create("output.png")
		if err := p.ProcessImage(in, out); err != nil {
			fmt.Printf("Error processing image: %s", err.Error())
		}
	}
*/
package pixelwork
