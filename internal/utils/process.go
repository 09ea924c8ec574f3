package utils

import (
	"os"
	"os/signal"
	"syscall"
)

// InterruptOrKill returns a channel that receives an interrupt (Ctrl+C)
// or termination signal (SIGTERM). Long running commands select on it so
// they can release the store before exiting.
func InterruptOrKill() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	return sigChan
}
