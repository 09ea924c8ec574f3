package lock_test

import (
	"errors"
	"testing"

	"github.com/0xRadioAc7iv/go-kvs/internal/lock"
)

func TestLockFile(t *testing.T) {
	t.Run("process does not allow access to directory while lock is active", func(t *testing.T) {
		dir := t.TempDir()

		f, err := lock.LockDirectory(dir)
		if err != nil {
			t.Fatalf("could not acquire initial lock: %v", err)
		}
		defer lock.UnlockDirectory(f)

		_, err = lock.LockDirectory(dir)
		if !errors.Is(err, lock.ErrLocked) {
			t.Errorf("expected ErrLocked, got %v", err)
		}
	})

	t.Run("process allows access to directory while lock is not active", func(t *testing.T) {
		dir := t.TempDir()

		f, err := lock.LockDirectory(dir)
		if err != nil {
			t.Fatalf("could not acquire lock: %v", err)
		}
		if err := lock.UnlockDirectory(f); err != nil {
			t.Fatalf("unlock failed: %v", err)
		}

		f, err = lock.LockDirectory(dir)
		if err != nil {
			t.Errorf("lock was supposed to be free again: %v", err)
		}
		lock.UnlockDirectory(f)
	})
}
