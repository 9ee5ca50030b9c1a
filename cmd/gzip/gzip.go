// Package gzip содержит обёртки для сжатия ответов и распаковки запросов gzip.
package gzip

import (
	"compress/gzip"
	"io"
	"net/http"
	"sync"
)

// writers переиспользует gzip.Writer между ответами.
var writers = sync.Pool{
	New: func() any { return gzip.NewWriter(io.Discard) },
}

// CompressWriter - http.ResponseWriter, сжимающий тело ответа.
type CompressWriter struct {
	w  http.ResponseWriter
	zw *gzip.Writer
}

// NewCompressWriter оборачивает w. После записи ответа нужно вызвать Close.
func NewCompressWriter(w http.ResponseWriter) *CompressWriter {
	zw := writers.Get().(*gzip.Writer)
	zw.Reset(w)
	return &CompressWriter{w: w, zw: zw}
}

func (c *CompressWriter) Header() http.Header {
	return c.w.Header()
}

func (c *CompressWriter) Write(p []byte) (int, error) {
	return c.zw.Write(p)
}

// WriteHeader выставляет Content-Encoding: gzip. Content-Length сжатого тела
// заранее неизвестен, поэтому заголовок удаляется.
func (c *CompressWriter) WriteHeader(statusCode int) {
	c.w.Header().Set("Content-Encoding", "gzip")
	c.w.Header().Del("Content-Length")
	c.w.WriteHeader(statusCode)
}

// Close дописывает сжатые данные и возвращает writer в пул.
func (c *CompressWriter) Close() error {
	err := c.zw.Close()
	writers.Put(c.zw)
	return err
}

// CompressReader распаковывает тело запроса.
type CompressReader struct {
	r  io.ReadCloser
	zr *gzip.Reader
}

func NewCompressReader(r io.ReadCloser) (*CompressReader, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &CompressReader{r: r, zr: zr}, nil
}

func (c *CompressReader) Read(p []byte) (int, error) {
	return c.zr.Read(p)
}

// Close закрывает и распаковщик, и исходное тело.
func (c *CompressReader) Close() error {
	if err := c.r.Close(); err != nil {
		return err
	}
	return c.zr.Close()
}
