// Package lock keeps two store handles from opening the same data
// directory at once.
package lock

import "errors"

// FileName is the lock file created inside a locked directory.
const FileName = "LOCK"

var ErrLocked = errors.New("directory already in use by another kvs store")
