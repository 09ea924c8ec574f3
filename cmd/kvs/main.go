package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/0xRadioAc7iv/go-kvs/core"
	"github.com/0xRadioAc7iv/go-kvs/internal"
	"github.com/0xRadioAc7iv/go-kvs/internal/utils"
)

const usage = `usage: kvs [-dir DIR] [-config FILE] [-log-level LEVEL] <command>

commands:
  set <key> <value>   store value under key
  get <key>           print the value stored under key
  rm <key>            remove key
  compact             rewrite the datafile keeping only live keys`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	inputs, err := utils.HandleCLIInputs("kvs", args, stderr)
	if err != nil {
		return 2
	}

	cmd, ok := parseCommand(inputs.Args)
	if !ok {
		fmt.Fprintln(stderr, usage)
		return 2
	}

	cfg, err := utils.ResolveConfig(inputs)
	if err != nil {
		fmt.Fprintln(stderr, "config error:", err)
		return 1
	}

	store, err := core.Open(cfg.Dir, core.WithConfig(cfg), core.WithLogger(internal.NewLogger(cfg.LogLevel, stderr)))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	code := execute(store, cmd, stdout, stderr)

	if err := store.Close(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return code
}

type command struct {
	name  string
	key   string
	value string
}

func parseCommand(args []string) (command, bool) {
	if len(args) == 0 {
		return command{}, false
	}

	cmd := command{name: args[0]}
	switch cmd.name {
	case "set":
		if len(args) != 3 {
			return command{}, false
		}
		cmd.key, cmd.value = args[1], args[2]
	case "get", "rm":
		if len(args) != 2 {
			return command{}, false
		}
		cmd.key = args[1]
	case "compact":
		if len(args) != 1 {
			return command{}, false
		}
	default:
		return command{}, false
	}

	return cmd, true
}

func execute(store *core.Store, cmd command, stdout, stderr io.Writer) int {
	switch cmd.name {
	case "set":
		if err := store.Set(cmd.key, cmd.value); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}

	case "get":
		value, found, err := store.Get(cmd.key)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		if !found {
			fmt.Fprintln(stdout, core.ErrKeyNotFound)
			return 0
		}
		fmt.Fprintln(stdout, value)

	case "rm":
		if err := store.Remove(cmd.key); err != nil {
			if errors.Is(err, core.ErrKeyNotFound) {
				fmt.Fprintln(stdout, core.ErrKeyNotFound)
			} else {
				fmt.Fprintln(stderr, err)
			}
			return 1
		}

	case "compact":
		if err := store.Compact(); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}

	return 0
}
