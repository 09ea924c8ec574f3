package core

import (
	"github.com/0xRadioAc7iv/go-kvs/internal"
	"github.com/0xRadioAc7iv/go-kvs/internal/logfile"
)

const (
	DataFileName = logfile.DataFileName

	DefaultGarbageRatio = internal.DEFAULT_GARBAGE_RATIO
	MinGarbageRatio     = internal.MIN_GARBAGE_RATIO
	MaxGarbageRatio     = internal.MAX_GARBAGE_RATIO
)
