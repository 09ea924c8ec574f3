/*
	Basic Script that churns random data through a store to exercise
	overwrites, removals and compaction.
*/

package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/0xRadioAc7iv/go-kvs/core"
)

const (
	// Fixed universe
	totalKeys   = 100
	totalValues = 100

	// Per-cycle behavior
	keysPerCycleWrite  = 20
	keysPerCycleDelete = 10

	progressEvery = 500
)

func main() {
	dir := flag.String("dir", "./churn-data", "Directory Path for the generated store")
	cycles := flag.Int("cycles", 5000, "Number of write/delete/rewrite cycles")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	start := time.Now()
	fmt.Println("Starting kvs churn-heavy load generator")

	store, err := core.Open(*dir)
	if err != nil {
		fmt.Println("open error:", err)
		os.Exit(1)
	}

	if err := churn(store, rand.New(rand.NewSource(*seed)), *cycles); err != nil {
		fmt.Println(err)
		store.Close()
		os.Exit(1)
	}

	st := store.Stats()
	fmt.Printf("Load finished in %v\n", time.Since(start))
	fmt.Printf("keys=%d dead=%d log_bytes=%d compactions=%d\n", st.LiveKeys, st.DeadKeys, st.LogSize, st.Compactions)

	if err := store.Close(); err != nil {
		fmt.Println("close error:", err)
		os.Exit(1)
	}
}

func churn(store *core.Store, rng *rand.Rand, cycles int) error {
	keys := makeKeys(totalKeys)
	values := makeValues(totalValues)

	for cycle := 1; cycle <= cycles; cycle++ {

		// ---- WRITE / OVERWRITE PHASE ----
		for i := 0; i < keysPerCycleWrite; i++ {
			key := keys[rng.Intn(len(keys))]
			val := values[rng.Intn(len(values))]

			if err := store.Set(key, val); err != nil {
				return fmt.Errorf("SET error: %w", err)
			}
		}

		// ---- DELETE PHASE ----
		for i := 0; i < keysPerCycleDelete; i++ {
			key := keys[rng.Intn(len(keys))]

			if err := store.Remove(key); err != nil && !errors.Is(err, core.ErrKeyNotFound) {
				return fmt.Errorf("DELETE error: %w", err)
			}
		}

		// ---- REWRITE PHASE (forces overwrite garbage) ----
		for i := 0; i < keysPerCycleWrite/2; i++ {
			key := keys[rng.Intn(len(keys))]
			val := values[rng.Intn(len(values))]

			if err := store.Set(key, val); err != nil {
				return fmt.Errorf("REWRITE error: %w", err)
			}
		}

		if cycle%progressEvery == 0 {
			fmt.Printf("completed %d cycles (%d compactions)\n", cycle, store.Stats().Compactions)
		}
	}

	return nil
}

func makeKeys(n int) []string {
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = fmt.Sprintf("key-%03d", i)
	}
	return keys
}

func makeValues(n int) []string {
	values := make([]string, n)
	for i := 0; i < n; i++ {
		values[i] = fmt.Sprintf("value-%03d-xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx", i)
	}
	return values
}
