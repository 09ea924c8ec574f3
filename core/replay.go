package core

import (
	"github.com/0xRadioAc7iv/go-kvs/internal/logfile"
	"github.com/0xRadioAc7iv/go-kvs/internal/record"
)

type replayResult struct {
	keyDir    *KeyDir
	deadKeys  int
	truncated int64
	records   int
}

// buildKeyDir replays the whole log in file order.
//
// An overwritten Set counts as one dead entry. A Remove counts the value it
// shadows (when there is one) and the tombstone itself, since neither is
// needed once the replay is done. Tombstones for keys that are not live are
// tolerated.
func buildKeyDir(l *logfile.Log) (*replayResult, error) {
	res := &replayResult{keyDir: NewKeyDir()}

	truncated, err := l.Replay(func(offset, size int64, r *record.LogRecord) error {
		res.records++

		switch r.Kind {
		case record.KindSet:
			if _, replaced := res.keyDir.Put(r.Key, KeyDirEntry{Offset: offset, Size: size}); replaced {
				res.deadKeys++
			}
		case record.KindRemove:
			if _, ok := res.keyDir.Delete(r.Key); ok {
				res.deadKeys++
			}
			res.deadKeys++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.truncated = truncated
	return res, nil
}
