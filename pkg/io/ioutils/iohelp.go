package ioutils

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// GzipExt is the suffix that switches readers and writers to gzip.
const GzipExt = ".gz"

// TrimCompressionExt drops a trailing ".gz" from a path or file name.
func TrimCompressionExt(path string) string {
	if strings.EqualFold(filepath.Ext(path), GzipExt) {
		return path[:len(path)-len(GzipExt)]
	}
	return path
}

// OpenMaybeCompressed opens a file path or stdin ("-") and returns a reader.
// If the input appears to be gzip (by extension or magic), it wraps with gzip.
func OpenMaybeCompressed(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		return wrapGzip(bufio.NewReader(os.Stdin), func() error { return nil })
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, err := wrapGzip(bufio.NewReader(f), f.Close)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return rc, nil
}

// wrapGzip sniffs the gzip magic bytes and decompresses when present.
func wrapGzip(br *bufio.Reader, closeFn func() error) (io.ReadCloser, error) {
	b, err := br.Peek(2)
	if err == nil && len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return readCloser{Reader: zr, closeFn: func() error { _ = zr.Close(); return closeFn() }}, nil
	}
	return readCloser{Reader: br, closeFn: closeFn}, nil
}

// CreateMaybeCompressed creates a file (or stdout if path is "-") and
// returns a buffered writer. If the path ends in .gz, the writer is gzip compressed.
// Close flushes and reports the first error seen.
func CreateMaybeCompressed(path string) (io.WriteCloser, error) {
	if path == "-" || path == "" {
		bw := bufio.NewWriter(os.Stdout)
		return writeCloser{Writer: bw, closers: []func() error{bw.Flush}}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), GzipExt) {
		zw := gzip.NewWriter(f)
		bw := bufio.NewWriter(zw)
		return writeCloser{Writer: bw, closers: []func() error{bw.Flush, zw.Close, f.Close}}, nil
	}
	bw := bufio.NewWriter(f)
	return writeCloser{Writer: bw, closers: []func() error{bw.Flush, f.Close}}, nil
}

type readCloser struct {
	io.Reader
	closeFn func() error
}

func (r readCloser) Close() error { return r.closeFn() }

type writeCloser struct {
	io.Writer
	closers []func() error
}

func (w writeCloser) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
