package pixelwork

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/pixelwork/pixelwork/utils"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// validExtensions lists the image files picked up by a directory run.
var validExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".webp"}

// Ops describes a single image or directory run of the image pipeline.
type Ops struct {
	Src, Dst, PipeName string
	Workers            int
	// Quiet disables the per-file status lines.
	Quiet bool
	// Status receives the status lines. It defaults to os.Stderr.
	Status io.Writer
}

// result holds the outcome of processing one file.
type result struct {
	path string
	err  error
}

// Execute runs the image pipeline over op.Src. A directory is walked
// recursively and every supported image is processed by a bounded pool of
// workers; a regular file, a pipe or a URL is processed once. The first error
// is returned after every file has been attempted.
func (p *Processor) Execute(op *Ops) error {
	var (
		fi  os.FileInfo
		err error
	)
	if op.Status == nil {
		op.Status = os.Stderr
	}
	src := op.Src

	// Check if source path is a local image or URL.
	if utils.IsValidUrl(src) {
		file, err := utils.DownloadFile(src, "image")
		if err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
		defer os.Remove(file.Name())
		file.Close()
		src = file.Name()
	}

	// Check if the source is a pipe name or a regular file.
	if src == op.PipeName {
		fi, err = os.Stdin.Stat()
	} else {
		fi, err = os.Stat(src)
	}
	if err != nil {
		return fmt.Errorf("failed to load the source image: %w", err)
	}

	now := time.Now()

	switch mode := fi.Mode(); {
	case mode.IsDir():
		if err := os.MkdirAll(op.Dst, 0755); err != nil {
			return fmt.Errorf("unable to create the destination directory: %w", err)
		}
		// Limit the concurrently running workers to maxWorkers.
		if op.Workers <= 0 || op.Workers > maxWorkers {
			op.Workers = utils.Min(runtime.NumCPU(), maxWorkers)
		}

		var wg sync.WaitGroup
		ch := make(chan result)
		done := make(chan interface{})
		defer close(done)

		paths, errc := walkDir(done, src, validExtensions)

		wg.Add(op.Workers)
		for i := 0; i < op.Workers; i++ {
			go func() {
				defer wg.Done()
				op.consumer(p, op.Dst, ch, done, paths)
			}()
		}

		// Close the channel after the values are consumed.
		go func() {
			defer close(ch)
			wg.Wait()
		}()

		var processed int
		for res := range ch {
			processed++
			if res.err != nil && err == nil {
				err = res.err
			}
			op.printOpStatus(res.path, res.err)
		}
		if werr := <-errc; werr != nil && err == nil {
			err = werr
		}
		p.log().Info("directory processed",
			zap.String("src", src),
			zap.Int("file_count", processed),
			zap.Duration("elapsed", time.Since(now)),
		)

	case mode.IsRegular() || mode&os.ModeNamedPipe != 0 || mode&os.ModeCharDevice != 0:
		ext := strings.ToLower(filepath.Ext(op.Dst))
		if op.Dst != op.PipeName && ext != "" && !isValidExtension(ext, []string{".png", ".jpg", ".jpeg", ".bmp"}) {
			return fmt.Errorf("%w: %v file type not supported", ErrInvalid, ext)
		}
		err = op.process(p, src, op.Dst)
		op.printOpStatus(op.Dst, err)
	}
	if err != nil {
		return err
	}
	if !op.Quiet {
		fmt.Fprintf(op.Status, "\nExecution time: %s\n",
			utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	}
	return nil
}

// consumer reads the path names from the paths channel and runs the image
// pipeline against each source image.
func (op *Ops) consumer(
	p *Processor,
	dest string,
	res chan<- result,
	done <-chan interface{},
	paths <-chan string,
) {
	for src := range paths {
		name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		ext := "." + string(p.Format)
		if p.Format == "" {
			ext = ".png"
		}
		err := op.process(p, src, filepath.Join(dest, name+ext))

		select {
		case <-done:
			return
		case res <- result{
			path: src,
			err:  err,
		}:
		}
	}
}

// process runs the pipeline over one source and removes the output on failure.
func (op *Ops) process(p *Processor, in, out string) error {
	src, dst, err := op.pathToFile(in, out)
	if err != nil {
		return err
	}
	defer func() {
		if f, ok := src.(*os.File); ok && f != os.Stdin {
			f.Close()
		}
	}()

	err = p.ProcessImage(src, dst)
	if f, ok := dst.(*os.File); ok && f != os.Stdout {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(f.Name())
		}
	}
	return err
}

// pathToFile converts the source and destination paths to readable and writable files.
func (op *Ops) pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if in == op.PipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	} else {
		src, err = os.Open(in)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open the source file: %v", err)
		}
	}

	// Check if the destination is a pipe name or a regular file.
	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, fmt.Errorf("unable to create the destination file: %v", err)
		}
	}
	return src, dst, nil
}

// printOpStatus displays the outcome of processing one file.
func (op *Ops) printOpStatus(fname string, err error) {
	if op.Quiet {
		return
	}
	if err != nil {
		fmt.Fprintf(op.Status, "%s %s\n",
			utils.DecorateText("\nError processing "+filepath.Base(fname)+":", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage),
		)
		return
	}
	if fname != op.PipeName {
		fmt.Fprintf(op.Status, "\nThe image has been saved as: %s %s\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
			utils.DefaultColor,
		)
	}
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each regular file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan interface{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() {
				return nil
			}
			if !isValidExtension(strings.ToLower(filepath.Ext(f.Name())), srcExts) {
				return nil
			}
			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	for _, ex := range extensions {
		if ex == ext {
			return true
		}
	}
	return false
}
