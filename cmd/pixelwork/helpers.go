package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pixelwork/pixelwork"
	"github.com/pixelwork/pixelwork/utils"
	"golang.org/x/term"
)

// imageExtensions lists the frame files picked up from a directory.
var imageExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".gif": true, ".webp": true}

// localPath resolves a URL to a downloaded temporary file. The returned
// cleanup function removes it.
func localPath(src, kind string) (string, func(), error) {
	if !utils.IsValidUrl(src) {
		return src, func() {}, nil
	}
	file, err := utils.DownloadFile(src, kind)
	if err != nil {
		return "", nil, err
	}
	file.Close()
	return file.Name(), func() { os.Remove(file.Name()) }, nil
}

// openInput opens a file, a URL or stdin when src is the pipe name.
func openInput(src, kind string) (io.Reader, func(), error) {
	if src == pipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		return os.Stdin, func() {}, nil
	}
	path, cleanup, err := localPath(src, kind)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("unable to open the source file: %w", err)
	}
	return f, func() { f.Close(); cleanup() }, nil
}

// writeOutput runs write against dst, or stdout when dst is the pipe name.
// A partially written file is removed on failure.
func writeOutput(dst string, write func(io.Writer) error) error {
	if dst == pipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("`-` should be used with a pipe for stdout")
		}
		return write(os.Stdout)
	}
	if dir := filepath.Dir(dst); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("unable to create the destination directory: %w", err)
		}
	}
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("unable to create the destination file: %w", err)
	}
	err = write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
	}
	return err
}

// listImages returns the image files directly inside dir, sorted by name.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no image found in %s", pixelwork.ErrEmpty, dir)
	}
	return paths, nil
}

// expandImages turns directory arguments into their sorted image files.
func expandImages(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := listImages(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	return paths, nil
}

// decodeInput decodes a single image from a file, a URL or stdin.
func decodeInput(src string) (*pixelwork.PixelBuffer, error) {
	r, cleanup, err := openInput(src, "image")
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return pixelwork.Decode(r)
}
