// Package logfile implements the append-only command log backing a store.
//
// A data directory holds a single file named "datafile" containing encoded
// records back to back, with no header, footer or index. The log can always
// be replayed from offset 0 to rebuild in-memory state.
package logfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/0xRadioAc7iv/go-kvs/internal/record"
	"github.com/0xRadioAc7iv/go-kvs/internal/utils"
)

const (
	DataFileName    = "datafile"
	CompactFileName = "datafile.compact"
)

// Log is the writable handle on a datafile.
type Log struct {
	path   string
	file   *os.File
	writer *PositionedWriter

	// set when the datafile could not be reopened after a rewrite; every
	// later write fails with it
	err error
}

// replaced in tests to inject failures
var (
	openFile      = os.OpenFile
	syncDirectory = syncDir
)

// Open creates dir if needed, opens (or creates) dir/datafile for appending
// and positions the writer at the current end of the file.
func Open(dir string) (*Log, error) {
	// 0 (special bit - ignored), 7 (rwx - owner), 5 (r-x - user group), 5 (r-x - others)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("logfile: create directory %s: %w", dir, err)
	}

	return openLog(filepath.Join(dir, DataFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND)
}

func openLog(path string, flag int) (*Log, error) {
	f, err := openFile(path, flag, 0644)
	if err != nil {
		return nil, fmt.Errorf("logfile: open %s: %w", path, err)
	}

	// Sets the offset to the end of the datafile
	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("logfile: seek end of %s: %w", path, err)
	}

	return &Log{
		path:   path,
		file:   f,
		writer: NewPositionedWriter(f, offset),
	}, nil
}

// RemoveStaleCompaction deletes a leftover compaction output in dir. Such a
// file only exists when a compaction was interrupted before its rename, in
// which case the datafile is still the authoritative copy.
func RemoveStaleCompaction(dir string) (bool, error) {
	path := filepath.Join(dir, CompactFileName)
	if !utils.PathExists(path) {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("logfile: remove stale %s: %w", path, err)
	}
	return true, nil
}

func (l *Log) Path() string {
	return l.path
}

// Offset returns the logical size of the log, including buffered bytes.
func (l *Log) Offset() int64 {
	return l.writer.Pos()
}

// Append encodes r and writes it at the end of the log. It returns the
// offset the record starts at and its encoded size.
func (l *Log) Append(r *record.LogRecord) (offset, size int64, err error) {
	if l.err != nil {
		return 0, 0, l.err
	}

	encoded, err := record.Encode(r)
	if err != nil {
		return 0, 0, err
	}

	offset = l.writer.Pos()
	n, err := l.writer.Write(encoded)
	if err != nil {
		return 0, 0, fmt.Errorf("logfile: append to %s: %w", l.path, err)
	}

	return offset, int64(n), nil
}

// Flush hands buffered records to the operating system so that readers
// opening the file independently observe them.
func (l *Log) Flush() error {
	if l.err != nil {
		return l.err
	}
	if err := l.writer.Flush(); err != nil {
		return fmt.Errorf("logfile: flush %s: %w", l.path, err)
	}
	return nil
}

// Sync flushes and fsyncs the datafile.
func (l *Log) Sync() error {
	if err := l.Flush(); err != nil {
		return err
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("logfile: sync %s: %w", l.path, err)
	}
	return nil
}

// Err returns the error that made the log unusable, if any.
func (l *Log) Err() error {
	return l.err
}

func (l *Log) Close() error {
	if l.file == nil {
		return l.err
	}

	syncErr := l.Sync()
	closeErr := l.file.Close()
	l.file = nil

	if syncErr != nil {
		return syncErr
	}
	if closeErr != nil {
		return fmt.Errorf("logfile: close %s: %w", l.path, closeErr)
	}
	return nil
}

// Replay decodes every record from the start of the log and calls fn with
// each record, its offset and its encoded size, in file order.
//
// An incomplete record at the end of the file is what a crash in the middle
// of an append leaves behind; it is truncated away and the number of bytes
// dropped is returned. Any other decoding failure stops the replay.
func (l *Log) Replay(fn func(offset, size int64, r *record.LogRecord) error) (truncated int64, err error) {
	if err := l.Flush(); err != nil {
		return 0, err
	}

	f, err := os.Open(l.path)
	if err != nil {
		return 0, fmt.Errorf("logfile: open %s for replay: %w", l.path, err)
	}
	defer f.Close()

	d := record.NewDecoder(f)

	for {
		offset := d.Offset()

		r, err := d.Next()
		if err != nil {
			if err == io.EOF {
				return 0, nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return l.truncateAt(offset)
			}
			return 0, fmt.Errorf("logfile: replay %s: %w", l.path, err)
		}

		if err := fn(offset, d.Offset()-offset, r); err != nil {
			return 0, err
		}
	}
}

func (l *Log) truncateAt(offset int64) (int64, error) {
	dropped := l.writer.Pos() - offset

	if err := utils.TruncateAt(l.file, offset); err != nil {
		return 0, fmt.Errorf("logfile: truncate %s at %d: %w", l.path, offset, err)
	}
	l.writer = NewPositionedWriter(l.file, offset)

	return dropped, nil
}

// Rewrite builds a replacement datafile and swaps it in atomically.
//
// fill receives a fresh, empty Log positioned at offset 0 and appends the
// records the new datafile should hold; the current log stays readable
// while fill runs. The new file is synced and renamed over the datafile,
// after which l appends to the new file. If fill fails the current datafile
// is left untouched.
//
// installed reports whether the rename happened. It can be true together
// with an error, in which case the new contents are live but a later step
// (directory sync, reopen) failed. If the datafile cannot be reopened the
// log stays unusable and Err returns the cause.
func (l *Log) Rewrite(fill func(next *Log) error) (installed bool, err error) {
	if err := l.Flush(); err != nil {
		return false, err
	}

	dir := filepath.Dir(l.path)
	next, err := openLog(filepath.Join(dir, CompactFileName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
	if err != nil {
		return false, err
	}

	discard := func(cause error) (bool, error) {
		next.file.Close()
		os.Remove(next.path)
		return false, cause
	}

	if err := fill(next); err != nil {
		return discard(err)
	}
	if err := next.Sync(); err != nil {
		return discard(err)
	}
	size := next.Offset()
	if err := next.file.Close(); err != nil {
		return discard(fmt.Errorf("logfile: close %s: %w", next.path, err))
	}

	closeErr := l.file.Close()
	l.file = nil
	if closeErr != nil {
		os.Remove(next.path)
		if err := l.reopen(); err != nil {
			return false, err
		}
		return false, fmt.Errorf("logfile: close %s: %w", l.path, closeErr)
	}

	if err := os.Rename(next.path, l.path); err != nil {
		os.Remove(next.path)
		if reopenErr := l.reopen(); reopenErr != nil {
			return false, reopenErr
		}
		return false, fmt.Errorf("logfile: install compacted log: %w", err)
	}

	syncErr := syncDirectory(dir)

	if err := l.reopen(); err != nil {
		return true, err
	}
	if syncErr != nil {
		return true, fmt.Errorf("logfile: sync directory %s: %w", dir, syncErr)
	}
	if l.writer.Pos() != size {
		return true, fmt.Errorf("logfile: compacted log is %d bytes, wrote %d", l.writer.Pos(), size)
	}

	return true, nil
}

// reopen points l at the datafile on disk again. On failure l keeps no
// file handle and every later write returns the error.
func (l *Log) reopen() error {
	reopened, err := openLog(l.path, os.O_WRONLY|os.O_APPEND)
	if err != nil {
		l.err = fmt.Errorf("logfile: %s unusable after rewrite: %w", l.path, err)
		return l.err
	}

	l.file = reopened.file
	l.writer = reopened.writer
	return nil
}

// syncDir makes a rename inside dir durable.
func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}

	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Sync()
}
