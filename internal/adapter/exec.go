package adapter

import (
	"bytes"
	"context"
	"os/exec"
)

// CommandRunner defines an interface for running external programs to enable mocking
//
//go:generate mockgen -source=exec.go -destination=../mocks/exec.go -package=mocks -mock_names=CommandRunner=MockCommandRunner
type CommandRunner interface {
	// LookPath searches for an executable; a name containing a slash is checked directly
	LookPath(file string) (string, error)

	// Run executes name with args and returns its stdout and stderr.
	// The process is killed when ctx is done.
	Run(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// RealCommandRunner implements CommandRunner using os/exec
type RealCommandRunner struct{}

// NewCommandRunner creates a new real command runner
func NewCommandRunner() CommandRunner {
	return &RealCommandRunner{}
}

func (r *RealCommandRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (r *RealCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec,G204
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
