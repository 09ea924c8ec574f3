package core

import "github.com/google/btree"

// KeyDirEntry represents the in-memory index entry for a single key.
//
// Each entry points to the latest Set record for the key in the datafile.
// Older versions and tombstones may still exist earlier in the log but are
// never referenced.
type KeyDirEntry struct {
	Offset int64 // Byte offset in the datafile where the record starts
	Size   int64 // Total size of the record on disk (header + key + value)
}

const keyDirDegree = 32

type keyDirItem struct {
	key   string
	entry KeyDirEntry
}

func lessKeyDirItem(a, b keyDirItem) bool {
	return a.key < b.key
}

// KeyDir is the in-memory index mapping keys to their latest on-disk entries.
//
// Keys are kept ordered so compaction rewrites the log in ascending key
// order. The KeyDir is rebuilt on every open by replaying the datafile.
type KeyDir struct {
	tree *btree.BTreeG[keyDirItem]
}

// NewKeyDir returns an empty KeyDir.
func NewKeyDir() *KeyDir {
	return &KeyDir{tree: btree.NewG[keyDirItem](keyDirDegree, lessKeyDirItem)}
}

// Put points key at entry and returns the entry it replaced, if any.
func (kd *KeyDir) Put(key string, entry KeyDirEntry) (KeyDirEntry, bool) {
	old, replaced := kd.tree.ReplaceOrInsert(keyDirItem{key: key, entry: entry})
	return old.entry, replaced
}

// Get returns the entry for key and whether it exists.
func (kd *KeyDir) Get(key string) (KeyDirEntry, bool) {
	item, ok := kd.tree.Get(keyDirItem{key: key})
	return item.entry, ok
}

// Delete removes key and returns the entry it held, if any.
func (kd *KeyDir) Delete(key string) (KeyDirEntry, bool) {
	item, ok := kd.tree.Delete(keyDirItem{key: key})
	return item.entry, ok
}

// Len returns the number of live keys.
func (kd *KeyDir) Len() int {
	return kd.tree.Len()
}

// Ascend calls fn for every key in ascending order until fn returns false.
func (kd *KeyDir) Ascend(fn func(key string, entry KeyDirEntry) bool) {
	kd.tree.Ascend(func(item keyDirItem) bool {
		return fn(item.key, item.entry)
	})
}

// Keys returns all keys in ascending order.
func (kd *KeyDir) Keys() []string {
	keys := make([]string, 0, kd.Len())
	kd.Ascend(func(key string, _ KeyDirEntry) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}
