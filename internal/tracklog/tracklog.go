// Package tracklog records simulation frames as zstd-compressed JSON lines.
package tracklog

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/multierr"
)

// Writer writes one JSON line per value into a zstd stream.
type Writer struct {
	mu    sync.Mutex
	f     io.Closer // owned file, nil if the caller owns the sink
	enc   *zstd.Encoder
	w     *bufio.Writer
	lines int
}

// NewWriter starts a compressed stream on sink. Closing the writer ends the
// stream but does not close sink.
func NewWriter(sink io.Writer) (*Writer, error) {
	enc, err := zstd.NewWriter(sink, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	return &Writer{enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

// Create creates the file at path, with missing parent directories, and
// starts a compressed stream on it. Closing the writer closes the file.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.f = f
	return w, nil
}

// Write appends v as one JSON line. Writing to a closed writer fails with
// os.ErrClosed.
func (w *Writer) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enc == nil {
		return os.ErrClosed
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.lines++
	return nil
}

// Lines returns the number of lines written.
func (w *Writer) Lines() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lines
}

// Close flushes and ends the stream.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enc == nil {
		return nil
	}
	err := w.w.Flush()
	err = multierr.Append(err, w.enc.Close())
	if w.f != nil {
		err = multierr.Append(err, w.f.Close())
		w.f = nil
	}
	w.enc, w.w = nil, nil
	return err
}

// Reader reads back the lines of a compressed stream.
type Reader struct {
	dec *zstd.Decoder
	sc  *bufio.Scanner
}

// NewReader opens a compressed stream.
func NewReader(src io.Reader) (*Reader, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &Reader{dec: dec, sc: sc}, nil
}

// Next decodes the next line into v. It returns io.EOF after the last line.
func (r *Reader) Next(v any) error {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return err
		}
		return io.EOF
	}
	return json.Unmarshal(r.sc.Bytes(), v)
}

// Close releases the decoder.
func (r *Reader) Close() {
	r.dec.Close()
}
