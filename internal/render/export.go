package render

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"os"

	"callscope/internal/layout"
)

// SaveSVG writes lay to path as SVG.
func SaveSVG(path string, lay layout.Layout, t Theme) error {
	return save(path, func(w io.Writer) error { return WriteSVG(w, lay, t) })
}

// SavePNG writes lay to path as PNG on a solid bg.
func SavePNG(path string, lay layout.Layout, t Theme, bg color.Color) error {
	return save(path, func(w io.Writer) error { return WritePNG(w, lay, t, bg) })
}

// SaveDOT writes DOT text to path.
func SaveDOT(path, dot string) error {
	return save(path, func(w io.Writer) error {
		_, err := io.WriteString(w, dot)
		return err
	})
}

// save creates path and runs write against it. The file is closed on every
// path; a close failure is reported when writing succeeded.
func save(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
