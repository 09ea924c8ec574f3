package core

// Stats is a point-in-time view of a store.
type Stats struct {
	LiveKeys int
	DeadKeys int
	LogSize  int64 // bytes, including writes still buffered

	SetCount     uint64
	GetCount     uint64
	RemoveCount  uint64
	Compactions  uint64
	ReplayedRecs int
}

// DeadRatio is the value compared against the compaction threshold.
func (s Stats) DeadRatio() float64 {
	if s.LiveKeys == 0 {
		return 0
	}
	return float64(s.DeadKeys) / float64(s.LiveKeys)
}

type counters struct {
	sets        uint64
	gets        uint64
	removes     uint64
	compactions uint64
}
