package logfile

import (
	"bufio"
	"io"
)

const writeBufferSize = 64 * 1024

// PositionedWriter buffers writes to the datafile and keeps track of the
// logical end-of-file offset, counting bytes that are still sitting in the
// buffer.
type PositionedWriter struct {
	w   *bufio.Writer
	pos int64
}

func NewPositionedWriter(w io.Writer, pos int64) *PositionedWriter {
	return &PositionedWriter{
		w:   bufio.NewWriterSize(w, writeBufferSize),
		pos: pos,
	}
}

func (pw *PositionedWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.pos += int64(n)
	return n, err
}

// Pos returns the offset the next write will start at.
func (pw *PositionedWriter) Pos() int64 {
	return pw.pos
}

// Buffered returns the number of bytes not yet handed to the file.
func (pw *PositionedWriter) Buffered() int {
	return pw.w.Buffered()
}

func (pw *PositionedWriter) Flush() error {
	return pw.w.Flush()
}
