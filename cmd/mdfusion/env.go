package main

import (
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/alnah/go-mdfusion"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now      func() time.Time
	Stdout   io.Writer
	Stderr   io.Writer
	Getwd    func() (string, error)
	LookPath func(string) (string, error)

	// FuserOptions are applied after the CLI's own options, so tests can
	// swap the pandoc runner or the deck printer.
	FuserOptions []mdfusion.Option
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:      time.Now,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Getwd:    os.Getwd,
		LookPath: exec.LookPath,
	}
}
