package core

import (
	"fmt"

	"github.com/0xRadioAc7iv/go-kvs/internal/logfile"
	"github.com/0xRadioAc7iv/go-kvs/internal/record"
)

// maybeCompact compacts once dead entries outnumber live keys by more than
// the configured ratio. An empty KeyDir never triggers.
func (s *Store) maybeCompact() error {
	live := s.keyDir.Len()
	if live == 0 {
		return nil
	}

	if float64(s.deadKeys)/float64(live) <= s.cfg.CompactionThreshold {
		return nil
	}

	return s.compact()
}

// Compact rewrites the datafile so it holds exactly one Set record per live
// key, in ascending key order.
func (s *Store) Compact() error {
	if s.closed {
		return ErrStoreClosed
	}
	return s.compact()
}

func (s *Store) compact() error {
	before := s.log.Offset()
	deadBefore := s.deadKeys
	fresh := NewKeyDir()

	s.logger.Info().
		Str("dir", s.dir).
		Int("keys", s.keyDir.Len()).
		Int("dead_keys", deadBefore).
		Int64("size", before).
		Msg("compaction started")

	installed, err := s.log.Rewrite(func(next *logfile.Log) error {
		r, err := s.log.OpenReader()
		if err != nil {
			return err
		}
		defer r.Close()

		var copyErr error
		s.keyDir.Ascend(func(key string, entry KeyDirEntry) bool {
			value, err := s.readValue(r, key, entry)
			if err != nil {
				copyErr = err
				return false
			}

			rec := record.NewSet(key, value)
			offset, size, err := next.Append(&rec)
			if err != nil {
				copyErr = err
				return false
			}

			fresh.Put(key, KeyDirEntry{Offset: offset, Size: size})
			return true
		})
		return copyErr
	})

	// once the new datafile is live the old offsets are meaningless, even if
	// a later step of the rewrite failed
	if installed {
		s.keyDir = fresh
		s.deadKeys = 0
		s.counters.compactions++
	}

	if err != nil {
		s.logger.Error().Err(err).Str("dir", s.dir).Bool("installed", installed).Msg("compaction failed")
		return fmt.Errorf("compact: %w", err)
	}

	s.logger.Info().
		Str("dir", s.dir).
		Int("keys", fresh.Len()).
		Int("reclaimed_entries", deadBefore).
		Int64("size_before", before).
		Int64("size_after", s.log.Offset()).
		Msg("compaction finished")

	return nil
}
