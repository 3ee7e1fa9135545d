// internal/output/writer.go - Output writing implementation
package output

import (
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Writer formats documents and writes them to one destination
type Writer struct {
	formatter   Formatter
	destination Destination
}

// NewWriter creates a writer for cfg. An empty or "-" path writes to stdout;
// any other path is created on fs.
func NewWriter(fs afero.Fs, stdout io.Writer, cfg *WriterConfig) (*Writer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	formatter, err := NewFormatter(cfg.Format, cfg.Pretty)
	if err != nil {
		return nil, fmt.Errorf("failed to create formatter: %w", err)
	}

	var dest Destination
	if cfg.Path == "" || cfg.Path == "-" {
		dest = &streamDestination{w: stdout, name: "stdout"}
	} else {
		dest, err = newFileDestination(fs, cfg.Path, cfg.Compression)
		if err != nil {
			return nil, fmt.Errorf("failed to create file destination: %w", err)
		}
	}

	return &Writer{formatter: formatter, destination: dest}, nil
}

// Write formats doc and writes it followed by a newline
func (w *Writer) Write(doc Document) error {
	data, err := w.formatter.Format(doc)
	if err != nil {
		return fmt.Errorf("formatting failed: %w", err)
	}

	if _, err := w.destination.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write to %s failed: %w", w.destination.Name(), err)
	}
	return nil
}

// Name returns the destination name
func (w *Writer) Name() string {
	return w.destination.Name()
}

// Size returns the number of bytes written before compression
func (w *Writer) Size() int64 {
	return w.destination.Size()
}

// Close closes the writer and underlying destination
func (w *Writer) Close() error {
	return w.destination.Close()
}

// streamDestination writes to a stream it does not own
type streamDestination struct {
	w    io.Writer
	name string
	size int64
}

func (d *streamDestination) Write(p []byte) (int, error) {
	n, err := d.w.Write(p)
	d.size += int64(n)
	return n, err
}

func (d *streamDestination) Close() error { return nil }
func (d *streamDestination) Name() string { return d.name }
func (d *streamDestination) Size() int64  { return d.size }

// fileDestination implements the Destination interface for file output
type fileDestination struct {
	file   afero.File
	writer io.Writer
	gz     *gzip.Writer
	name   string
	size   int64
}

// newFileDestination creates a file destination with optional compression.
// Compressed output gets a .gz suffix if path lacks one.
func newFileDestination(fs afero.Fs, path string, compression bool) (*fileDestination, error) {
	if compression && !strings.HasSuffix(path, ".gz") {
		path += ".gz"
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	d := &fileDestination{file: file, writer: file, name: path}
	if compression {
		d.gz = gzip.NewWriter(file)
		d.writer = d.gz
	}
	return d, nil
}

// Write implements io.Writer
func (d *fileDestination) Write(p []byte) (n int, err error) {
	n, err = d.writer.Write(p)
	d.size += int64(n)
	return n, err
}

// Close implements io.Closer
func (d *fileDestination) Close() error {
	if d.gz != nil {
		if err := d.gz.Close(); err != nil {
			d.file.Close()
			return err
		}
	}
	return d.file.Close()
}

// Name returns the destination file path
func (d *fileDestination) Name() string {
	return d.name
}

// Size returns the number of bytes written
func (d *fileDestination) Size() int64 {
	return d.size
}
