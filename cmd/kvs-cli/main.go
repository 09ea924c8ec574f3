package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/0xRadioAc7iv/go-kvs/core"
	"github.com/0xRadioAc7iv/go-kvs/internal"
	"github.com/0xRadioAc7iv/go-kvs/internal/utils"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, utils.InterruptOrKill()))
}

func run(args []string, in io.Reader, out, errOut io.Writer, interrupt <-chan os.Signal) int {
	inputs, err := utils.HandleCLIInputs("kvs-cli", args, errOut)
	if err != nil {
		return 2
	}

	cfg, err := utils.ResolveConfig(inputs)
	if err != nil {
		fmt.Fprintln(errOut, "config error:", err)
		return 1
	}

	store, err := core.Open(cfg.Dir, core.WithConfig(cfg), core.WithLogger(internal.NewLogger(cfg.LogLevel, errOut)))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	fmt.Fprintf(out, "Opened %v (%d keys)\n", store.Dir(), store.Len())
	fmt.Fprintln(out, "Type commands. 'help' for information or 'exit' to quit.")

	repl(store, in, out, interrupt)

	if err := store.Close(); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

// repl reads commands until exit, end of input or a signal. Lines are read
// on a separate goroutine so a signal can stop the loop while it waits on
// input; the store itself is only touched from this goroutine.
func repl(store *core.Store, in io.Reader, out io.Writer, interrupt <-chan os.Signal) {
	done := make(chan struct{})
	defer close(done)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	for {
		fmt.Fprint(out, "> ")

		var line string
		select {
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return
			}
			line = strings.TrimSpace(l)
		case <-interrupt:
			fmt.Fprintln(out)
			return
		}

		if line == "" {
			continue
		}
		if line == "exit" {
			return
		}

		cmd, key, value, err := utils.SplitStringIntoCommandAndArguments(line)
		if err != nil {
			fmt.Fprintln(out, "parse error:", err)
			continue
		}

		fmt.Fprintln(out, handleCommand(store, cmd, key, value))
	}
}

func handleCommand(store *core.Store, cmd, key, value string) string {
	switch strings.ToLower(cmd) {
	case "set":
		if key == "" {
			return "usage: set <key> <value>"
		}
		if err := store.Set(key, value); err != nil {
			return "error: " + err.Error()
		}
		return "ok"

	case "get":
		v, found, err := store.Get(key)
		if err != nil {
			return "error: " + err.Error()
		}
		if !found {
			return core.ErrKeyNotFound.Error()
		}
		return v

	case "rm", "delete":
		if err := store.Remove(key); err != nil {
			if errors.Is(err, core.ErrKeyNotFound) {
				return err.Error()
			}
			return "error: " + err.Error()
		}
		return "ok"

	case "exists":
		return strconv.FormatBool(store.Has(key))

	case "count":
		return strconv.Itoa(store.Len())

	case "list":
		keys := store.Keys()
		if len(keys) == 0 {
			return "nil"
		}
		return "----- KEYS START -----\n" + strings.Join(keys, "\n") + "\n----- KEYS END -----"

	case "compact":
		if err := store.Compact(); err != nil {
			return "error: " + err.Error()
		}
		return "ok"

	case "stats":
		st := store.Stats()
		return fmt.Sprintf("keys=%d dead=%d ratio=%.2f log_bytes=%d sets=%d gets=%d removes=%d compactions=%d",
			st.LiveKeys, st.DeadKeys, st.DeadRatio(), st.LogSize, st.SetCount, st.GetCount, st.RemoveCount, st.Compactions)

	case "help":
		return strings.TrimSpace(helpString)

	default:
		return "Invalid Command"
	}
}

const helpString = `
Available Commands:

SET <key> <value>
  Store a value for the given key. Quote values containing spaces.
  Response: ok

GET <key>
  Retrieve the value associated with the key.
  Response: value | Key not found

RM <key>
  Delete the key and its value.
  Response: ok | Key not found

EXISTS <key>
  Check if a key exists.
  Response: true | false

COUNT
  Return the total number of keys stored.

LIST
  List all stored keys in ascending order.

COMPACT
  Rewrite the datafile keeping only live keys.

STATS
  Show key, garbage and operation counters.

HELP
  Show this help message.

EXIT
  Close the store and quit.
`
