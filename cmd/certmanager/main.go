package main

import (
	"errors"
	"os"

	"certmanager/internal/domain"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps validation failures (bad spreadsheet, bad input) to 2 and
// everything else to 1.
func exitCode(err error) int {
	if errors.Is(err, domain.ErrValidation) {
		return 2
	}
	return 1
}
