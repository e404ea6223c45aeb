package demucs

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
)

// Process is a handle on a started separation run. Lines carries the
// combined stdout/stderr stream and is closed at EOF.
type Process interface {
	Lines() <-chan string
	Exited() (code int, done bool)
	Kill() error
	Wait() error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Start(ctx context.Context, binary string, args []string) (Process, error)
}

type commandExecutor struct{}

func (commandExecutor) Start(ctx context.Context, binary string, args []string) (Process, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	// Own session keeps the child clear of terminal signals aimed at us.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("output pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, fmt.Errorf("start command: %w", err)
	}
	// The parent's write end must close so the reader sees EOF when the
	// child exits.
	pw.Close()

	proc := &commandProcess{
		cmd:   cmd,
		lines: make(chan string, 256),
	}
	go proc.pump(pr)
	go proc.reap()
	return proc, nil
}

type commandProcess struct {
	cmd   *exec.Cmd
	lines chan string

	done     atomic.Bool
	exitCode atomic.Int64

	waitOnce sync.Once
	waitErr  error
}

func (p *commandProcess) pump(r *os.File) {
	defer r.Close()
	defer close(p.lines)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.lines <- scanner.Text()
	}
}

func (p *commandProcess) reap() {
	err := p.wait()
	code := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
	} else if err != nil {
		code = -1
	}
	p.exitCode.Store(int64(code))
	p.done.Store(true)
}

func (p *commandProcess) wait() error {
	p.waitOnce.Do(func() {
		p.waitErr = p.cmd.Wait()
	})
	return p.waitErr
}

func (p *commandProcess) Lines() <-chan string { return p.lines }

func (p *commandProcess) Exited() (int, bool) {
	if !p.done.Load() {
		return 0, false
	}
	return int(p.exitCode.Load()), true
}

func (p *commandProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

func (p *commandProcess) Wait() error { return p.wait() }
