package core

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/phuslu/log"

	"github.com/0xRadioAc7iv/go-kvs/internal"
	"github.com/0xRadioAc7iv/go-kvs/internal/lock"
	"github.com/0xRadioAc7iv/go-kvs/internal/logfile"
	"github.com/0xRadioAc7iv/go-kvs/internal/record"
)

// Store is a single-file, log-structured key-value store.
//
// Every mutation is appended to the datafile and the KeyDir maps each live
// key to the offset of its latest Set record. A Store is not safe for
// concurrent use and owns its data directory exclusively until Close.
type Store struct {
	dir      string
	lockFile *os.File
	log      *logfile.Log
	keyDir   *KeyDir
	deadKeys int

	cfg    internal.Config
	logger *log.Logger

	counters counters
	replayed int
	closed   bool
}

// Open opens the store in dir, creating the directory and datafile when
// missing, and rebuilds the KeyDir from the datafile.
func Open(dir string, opts ...Option) (*Store, error) {
	cfg := internal.DefaultConfig()
	cfg.Dir = dir
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("open: create directory %s: %w", dir, err)
	}

	lf, err := lock.LockDirectory(dir)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	s := &Store{
		dir:      dir,
		lockFile: lf,
		cfg:      *cfg,
		logger:   cfg.ResolveLogger(),
	}

	if err := s.load(); err != nil {
		if s.log != nil {
			s.log.Close()
		}
		lock.UnlockDirectory(lf)
		return nil, fmt.Errorf("open: %w", err)
	}

	return s, nil
}

func (s *Store) load() error {
	removed, err := logfile.RemoveStaleCompaction(s.dir)
	if err != nil {
		return err
	}
	if removed {
		s.logger.Warn().Str("dir", s.dir).Msg("removed output of an interrupted compaction")
	}

	l, err := logfile.Open(s.dir)
	if err != nil {
		return err
	}
	s.log = l

	res, err := buildKeyDir(l)
	if err != nil {
		return err
	}
	if res.truncated > 0 {
		s.logger.Warn().Str("dir", s.dir).Int64("bytes", res.truncated).Int64("offset", l.Offset()).Msg("truncated incomplete record at end of datafile")
	}

	s.keyDir = res.keyDir
	s.deadKeys = res.deadKeys
	s.replayed = res.records

	s.logger.Info().
		Str("path", l.Path()).
		Int("records", res.records).
		Int("keys", s.keyDir.Len()).
		Int("dead_keys", s.deadKeys).
		Int64("offset", l.Offset()).
		Msg("store opened")

	return nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	if s.closed {
		return ErrStoreClosed
	}

	rec := record.NewSet(key, value)
	offset, size, err := s.log.Append(&rec)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}

	_, replaced := s.keyDir.Put(key, KeyDirEntry{Offset: offset, Size: size})
	if replaced {
		s.deadKeys++
	}
	s.counters.sets++
	s.logger.Debug().Str("key", key).Int64("offset", offset).Bool("replaced", replaced).Msg("set")

	if err := s.syncIfRequested(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}

	if replaced {
		return s.maybeCompact()
	}
	return nil
}

// Get returns the value stored under key. A missing key is reported with
// found == false and a nil error.
func (s *Store) Get(key string) (value string, found bool, err error) {
	if s.closed {
		return "", false, ErrStoreClosed
	}

	if err := s.log.Flush(); err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	s.counters.gets++

	entry, ok := s.keyDir.Get(key)
	if !ok {
		return "", false, nil
	}

	r, err := s.log.OpenReader()
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	defer r.Close()

	value, err = s.readValue(r, key, entry)
	if err != nil {
		return "", false, fmt.Errorf("get: %w", err)
	}

	return value, true, nil
}

// Remove deletes key. It fails with ErrKeyNotFound, without touching the
// datafile, when the key has no live value.
func (s *Store) Remove(key string) error {
	if s.closed {
		return ErrStoreClosed
	}

	if _, ok := s.keyDir.Get(key); !ok {
		return ErrKeyNotFound
	}

	rec := record.NewRemove(key)
	offset, _, err := s.log.Append(&rec)
	if err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}

	s.keyDir.Delete(key)
	// the shadowed value and the tombstone are both dead, as during replay
	s.deadKeys += 2
	s.counters.removes++
	s.logger.Debug().Str("key", key).Int64("offset", offset).Msg("remove")

	if err := s.syncIfRequested(); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}

	return s.maybeCompact()
}

// Has reports whether key has a live value.
func (s *Store) Has(key string) bool {
	if s.closed {
		return false
	}
	_, ok := s.keyDir.Get(key)
	return ok
}

// Len returns the number of live keys.
func (s *Store) Len() int {
	if s.closed {
		return 0
	}
	return s.keyDir.Len()
}

// Keys returns the live keys in ascending order.
func (s *Store) Keys() []string {
	if s.closed {
		return nil
	}
	return s.keyDir.Keys()
}

// Stats returns a snapshot of the store counters. A closed store reports
// zero values.
func (s *Store) Stats() Stats {
	if s.closed {
		return Stats{}
	}
	return Stats{
		LiveKeys:     s.keyDir.Len(),
		DeadKeys:     s.deadKeys,
		LogSize:      s.log.Offset(),
		SetCount:     s.counters.sets,
		GetCount:     s.counters.gets,
		RemoveCount:  s.counters.removes,
		Compactions:  s.counters.compactions,
		ReplayedRecs: s.replayed,
	}
}

// Dir returns the data directory of the store.
func (s *Store) Dir() string {
	return s.dir
}

// Close flushes and syncs the datafile and releases the directory lock.
// Calling Close more than once is a no-op.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	logErr := s.log.Close()
	unlockErr := lock.UnlockDirectory(s.lockFile)
	s.keyDir = nil

	if logErr != nil {
		return fmt.Errorf("close: %w", logErr)
	}
	if unlockErr != nil {
		return fmt.Errorf("close: unlock %s: %w", s.dir, unlockErr)
	}

	s.logger.Info().Str("dir", s.dir).Msg("store closed")
	return nil
}

func (s *Store) syncIfRequested() error {
	if !s.cfg.SyncWrites {
		return nil
	}
	return s.log.Sync()
}

// readValue point-reads the record entry refers to and checks that it is
// the Set record for key.
func (s *Store) readValue(r *logfile.Reader, key string, entry KeyDirEntry) (string, error) {
	rec, err := r.ReadAt(entry.Offset, entry.Size)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, record.ErrCorruptRecord) || errors.Is(err, record.ErrUnknownKind) {
			return "", fmt.Errorf("%w: key %q at offset %d: %w", ErrInconsistentIndex, key, entry.Offset, err)
		}
		return "", fmt.Errorf("read %q at offset %d: %w", key, entry.Offset, err)
	}

	if rec.Kind != record.KindSet {
		return "", fmt.Errorf("%w: key %q at offset %d holds a %s record", ErrInconsistentIndex, key, entry.Offset, rec.Kind)
	}
	if rec.Key != key {
		return "", fmt.Errorf("%w: key %q at offset %d holds key %q", ErrInconsistentIndex, key, entry.Offset, rec.Key)
	}

	return rec.Value, nil
}
