// Package core provides a persistent, single-file, log-structured
// key-value store.
//
// Every Set and Remove is appended to a datafile; an in-memory KeyDir maps
// each live key to the offset of its latest Set record. The KeyDir is
// rebuilt by replaying the datafile on Open. Once dead entries (overwritten
// values and tombstones) outweigh live keys by the configured ratio, the
// datafile is rewritten to hold only live records.
//
// Example:
//
//	store, err := core.Open("./data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	err = store.Set("foo", "bar")
//	val, found, err := store.Get("foo")
package core
