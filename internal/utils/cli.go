package utils

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/kballard/go-shellquote"

	"github.com/0xRadioAc7iv/go-kvs/internal"
)

const DefaultDirectoryPath = "./"
const DefaultLogLevel = "warn"

// CLIInputs holds the global flags shared by the kvs binaries and the
// positional arguments left after parsing them.
type CLIInputs struct {
	DirectoryPath string
	ConfigPath    string
	LogLevel      string
	Args          []string

	// set records which flags were given explicitly so they can take
	// precedence over the config file.
	set map[string]bool
}

// WasSet reports whether the named flag appeared on the command line.
func (c *CLIInputs) WasSet(name string) bool {
	return c.set[name]
}

// HandleCLIInputs parses the global flags of a kvs binary. Usage and parse
// errors are written to output.
func HandleCLIInputs(name string, args []string, output io.Writer) (*CLIInputs, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	inputs := &CLIInputs{set: make(map[string]bool)}
	fs.StringVar(&inputs.DirectoryPath, "dir", DefaultDirectoryPath, "Directory Path holding the datafile")
	fs.StringVar(&inputs.ConfigPath, "config", "", "Path to a YAML config file")
	fs.StringVar(&inputs.LogLevel, "log-level", DefaultLogLevel, "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		inputs.set[f.Name] = true
	})
	inputs.Args = fs.Args()

	return inputs, nil
}

// SplitStringIntoCommandAndArguments splits a shell line into a command and
// up to two arguments, honouring quotes so values may contain spaces.
func SplitStringIntoCommandAndArguments(line string) (cmd, key, value string, err error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return "", "", "", err
	}

	switch len(words) {
	case 0:
		return "", "", "", errors.New("empty command")
	case 1:
		return words[0], "", "", nil
	case 2:
		return words[0], words[1], "", nil
	case 3:
		return words[0], words[1], words[2], nil
	default:
		return "", "", "", fmt.Errorf("too many arguments: expected at most 2, got %d", len(words)-1)
	}
}

// ResolveConfig loads the config file named by -config (plus KVS_*
// environment overrides) and lets flags given on the command line win.
func ResolveConfig(inputs *CLIInputs) (*internal.Config, error) {
	cfg, err := internal.LoadConfig(inputs.ConfigPath)
	if err != nil {
		return nil, err
	}

	if inputs.WasSet("dir") {
		cfg.Dir = inputs.DirectoryPath
	}
	if inputs.WasSet("log-level") {
		cfg.LogLevel = inputs.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
