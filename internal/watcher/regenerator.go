package watcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
)

// Regenerator runs one regeneration of the generated artifact. The scheduler
// invokes it, tracks the active run and cancels it on shutdown; it never
// manages the regeneration mechanics itself.
type Regenerator interface {
	// Run executes one regeneration and blocks until it finishes.
	Run(ctx context.Context) error

	// Cancel requests termination of an active run: graceful first, and
	// forceful when graceful did not help.
	Cancel(graceful bool) error
}

// FuncRegenerator adapts an in-process pipeline function. Cancellation is
// cooperative through the run context; graceful and forceful cancellation
// are the same operation.
type FuncRegenerator struct {
	fn func(ctx context.Context) error

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewFuncRegenerator wraps fn.
func NewFuncRegenerator(fn func(ctx context.Context) error) *FuncRegenerator {
	return &FuncRegenerator{fn: fn}
}

// Run calls the pipeline function with a cancelable context.
func (r *FuncRegenerator) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	return r.fn(runCtx)
}

// Cancel cancels the active run context, if any.
func (r *FuncRegenerator) Cancel(graceful bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	return nil
}

// CommandRegenerator runs an external command per regeneration, for setups
// where generation is a separate process. Graceful cancellation sends
// SIGTERM, forceful kills the process.
type CommandRegenerator struct {
	name string
	args []string

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewCommandRegenerator creates a regenerator invoking name with args.
func NewCommandRegenerator(name string, args ...string) *CommandRegenerator {
	return &CommandRegenerator{name: name, args: args}
}

// Run starts the command and waits for it to exit.
func (r *CommandRegenerator) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := exec.Command(r.name, r.args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	r.mu.Lock()
	r.cmd = cmd
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.cmd = nil
		r.mu.Unlock()
	}()

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("regeneration command failed: %w", err)
	}

	return nil
}

// Cancel signals the active process. No-op when nothing is running.
func (r *CommandRegenerator) Cancel(graceful bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd == nil || r.cmd.Process == nil {
		return nil
	}

	if graceful {
		return r.cmd.Process.Signal(syscall.SIGTERM)
	}
	return r.cmd.Process.Kill()
}
