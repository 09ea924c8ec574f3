package logfile

import (
	"fmt"
	"io"
	"os"

	"github.com/0xRadioAc7iv/go-kvs/internal/record"
)

// Reader is a read-only handle on a datafile, independent of the
// append-only handle held by Log.
type Reader struct {
	f *os.File
}

// OpenReader opens the datafile behind l for point reads. Records still
// buffered in l are not visible; call Flush first.
func (l *Log) OpenReader() (*Reader, error) {
	f, err := os.OpenFile(l.path, os.O_RDONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("logfile: open %s for reading: %w", l.path, err)
	}
	return &Reader{f: f}, nil
}

// ReadAt seeks to offset and decodes the record stored there, which must
// span exactly size bytes.
//
// A record cut short by the end of the file yields io.ErrUnexpectedEOF.
func (r *Reader) ReadAt(offset, size int64) (*record.LogRecord, error) {
	if _, err := r.f.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("logfile: seek %s to %d: %w", r.f.Name(), offset, err)
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(r.f, buf); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	return record.Decode(buf)
}

func (r *Reader) Close() error {
	return r.f.Close()
}
