package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyDir_Put(t *testing.T) {
	kd := NewKeyDir()

	_, replaced := kd.Put("a", KeyDirEntry{Offset: 0, Size: 15})
	assert.False(t, replaced)

	old, replaced := kd.Put("a", KeyDirEntry{Offset: 15, Size: 15})
	assert.True(t, replaced)
	assert.Equal(t, int64(0), old.Offset)

	assert.Equal(t, 1, kd.Len())
}

func TestKeyDir_Get(t *testing.T) {
	kd := NewKeyDir()

	_, ok := kd.Get("missing")
	assert.False(t, ok)

	kd.Put("", KeyDirEntry{Offset: 100, Size: 13})
	entry, ok := kd.Get("")
	assert.True(t, ok)
	assert.Equal(t, int64(100), entry.Offset)

	kd.Put("a", KeyDirEntry{Offset: 2, Size: 15})
	kd.Put("a", KeyDirEntry{Offset: 3, Size: 15})
	entry, ok = kd.Get("a")
	assert.True(t, ok)
	assert.Equal(t, int64(3), entry.Offset)
}

func TestKeyDir_Delete(t *testing.T) {
	kd := NewKeyDir()

	_, ok := kd.Delete("aaa")
	assert.False(t, ok)

	kd.Put("aaa", KeyDirEntry{Offset: 33, Size: 20})
	old, ok := kd.Delete("aaa")
	assert.True(t, ok)
	assert.Equal(t, int64(33), old.Offset)
	assert.Equal(t, 0, kd.Len())
}

func TestKeyDir_AscendingOrder(t *testing.T) {
	kd := NewKeyDir()
	for i, k := range []string{"pear", "apple", "fig", "banana"} {
		kd.Put(k, KeyDirEntry{Offset: int64(i)})
	}

	assert.Equal(t, []string{"apple", "banana", "fig", "pear"}, kd.Keys())

	var visited []string
	kd.Ascend(func(key string, _ KeyDirEntry) bool {
		visited = append(visited, key)
		return len(visited) < 2
	})
	assert.Equal(t, []string{"apple", "banana"}, visited)
}
