// Package xmain provides a standard stub for the main of a command handling logging,
// flags, signals and shutdown.
package xmain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"oss.terrastruct.com/reflow/lib/log"
)

type RunFunc func(context.Context, *State) error

// ShutdownGrace is how long a canceled run may take to return after a signal.
var ShutdownGrace = time.Minute

func Main(run RunFunc) {
	name := ""
	args := []string(nil)
	if len(os.Args) > 0 {
		name = os.Args[0]
		args = os.Args[1:]
	}

	ms := &State{
		Name: name,

		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,

		Getenv: os.Getenv,
	}
	ms.Opts = NewOpts(ms.Getenv, args)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	ctx := log.Stderr(context.Background())
	err := ms.Main(ctx, sigs, run)
	if err != nil {
		code, msg := exitStatus(err)
		if msg != "" {
			log.Error(ctx, msg)
		}
		log.Sync(ctx)
		os.Exit(code)
	}
}

// exitStatus maps an error returned by a RunFunc to the process exit code and
// the message to log. Usage errors point at --help.
func exitStatus(err error) (int, string) {
	var eerr ExitError
	if errors.As(err, &eerr) {
		return eerr.Code, eerr.Message
	}
	var uerr UsageError
	if errors.As(err, &uerr) {
		return 1, fmt.Sprintf("%s\nRun with --help to see usage.", err)
	}
	return 1, err.Error()
}

type State struct {
	Name string

	Stdin  io.Reader
	Stdout io.WriteCloser
	Stderr io.WriteCloser

	Getenv func(string) string
	Opts   *Opts
}

func (ms *State) Main(ctx context.Context, sigs <-chan os.Signal, run func(context.Context, *State) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- run(ctx, ms)
	}()

	select {
	case err := <-done:
		return err
	case sig := <-sigs:
		log.Warn(ctx, fmt.Sprintf("received signal %v: shutting down...", sig))
		cancel()
		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("failed to shutdown: %w", err)
			}
			if sig == syscall.SIGTERM {
				// We successfully shutdown.
				return nil
			}
			return ExitError{Code: 1}
		case <-time.After(ShutdownGrace):
			return ExitError{
				Code:    1,
				Message: fmt.Sprintf("took longer than %v to shutdown: exiting forcefully", ShutdownGrace),
			}
		}
	}
}

type ExitError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (ee ExitError) Error() string {
	s := fmt.Sprintf("exiting with code %d", ee.Code)
	if ee.Message != "" {
		s += ": " + ee.Message
	}
	return s
}

type UsageError struct {
	Message string `json:"message"`
}

func UsageErrorf(msg string, v ...interface{}) UsageError {
	return UsageError{
		Message: fmt.Sprintf(msg, v...),
	}
}

func (ue UsageError) Error() string {
	return fmt.Sprintf("bad usage: %s", ue.Message)
}

func (ms *State) ReadPath(fp string) ([]byte, error) {
	if fp == "-" {
		return io.ReadAll(ms.Stdin)
	}
	return os.ReadFile(fp)
}

// WritePath writes p to fp, or to stdout when fp is -. Files are replaced
// through a temporary file in the same directory so a watcher never sees a
// partially written diagram. An existing file keeps its permissions.
func (ms *State) WritePath(fp string, p []byte) (err error) {
	if fp == "-" {
		_, err := ms.Stdout.Write(p)
		return err
	}

	mode := os.FileMode(0644)
	if fi, err := os.Stat(fp); err == nil {
		mode = fi.Mode().Perm()
	}
	f, err := os.CreateTemp(filepath.Dir(fp), "."+filepath.Base(fp)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()
	if _, err = f.Write(p); err != nil {
		return err
	}
	if err = f.Chmod(mode); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), fp)
}
