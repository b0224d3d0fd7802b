package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultGracePeriod is how long a cancelled process may take to exit
// after SIGTERM before it is killed.
const DefaultGracePeriod = 3 * time.Second

// Exit codes reported by Exited lines that do not come from the process itself.
const (
	// ExitCancelled is reported when the stream was cancelled by the caller.
	ExitCancelled = -1

	// ExitKilled is reported when the process was terminated by a signal
	// it did not receive from this package.
	ExitKilled = -2
)

const maxLineSize = 1024 * 1024

// LineKind tags a Line.
type LineKind int

const (
	Stdout LineKind = iota
	Stderr
	Exited
)

func (k LineKind) String() string {
	switch k {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	case Exited:
		return "exited"
	default:
		return "unknown"
	}
}

// Line is one unit of output from a running process.
// Text is set for Stdout and Stderr lines, Code for the final Exited line.
type Line struct {
	Kind LineKind
	Text string
	Code int
}

// SpawnError reports that a command could not be started at all.
type SpawnError struct {
	Cmd string
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("cannot start %s: %v", e.Cmd, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Result is the captured output of a bounded command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner starts external commands.
//
// The zero value is usable and uses DefaultGracePeriod.
type Runner struct {
	// GracePeriod is the delay between SIGTERM and SIGKILL on cancellation.
	GracePeriod time.Duration

	// Dir is the working directory of started commands; empty means the current one.
	Dir string

	// Env is appended to the current environment.
	Env []string
}

// NewRunner creates a Runner with the given cancellation grace period.
func NewRunner(grace time.Duration) *Runner {
	return &Runner{GracePeriod: grace}
}

func (r *Runner) grace() time.Duration {
	if r.GracePeriod <= 0 {
		return DefaultGracePeriod
	}
	return r.GracePeriod
}

func (r *Runner) command(name string, args []string) (*exec.Cmd, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, &SpawnError{Cmd: name, Err: err}
	}

	cmd := exec.Command(path, args...)
	cmd.Dir = r.Dir
	setProcessGroup(cmd)
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	return cmd, nil
}

// Run starts name with args and returns a Stream of its output.
//
// Run returns as soon as the process has started. If the command cannot be
// started, a *SpawnError is returned and no stream is created. Cancelling ctx
// has the same effect as Stream.Cancel.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (*Stream, error) {
	cmd, err := r.command(name, args)
	if err != nil {
		return nil, err
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Cmd: name, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Cmd: name, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Cmd: name, Err: err}
	}

	s := &Stream{
		out:    make(chan Line),
		cancel: make(chan struct{}),
		acked:  make(chan struct{}),
	}

	lines := make(chan Line, 64)
	exit := make(chan int, 1)

	var g errgroup.Group
	g.Go(func() error { return scan(stdout, Stdout, lines) })
	g.Go(func() error { return scan(stderr, Stderr, lines) })

	go func() {
		if err := g.Wait(); err != nil {
			log.Printf("process %s: reading output: %v", name, err)
		}
		close(lines)
		exit <- exitCode(cmd.Wait())
	}()

	go s.forward(cmd.Process, lines, exit, r.grace())

	go func() {
		select {
		case <-ctx.Done():
			s.requestCancel()
		case <-s.acked:
		}
	}()

	return s, nil
}

// Output runs name with args to completion and captures its output.
//
// A nonzero exit is not an error; it is reported in Result.ExitCode.
// If ctx is cancelled the process is terminated and ctx.Err() is returned.
func (r *Runner) Output(ctx context.Context, name string, args ...string) (*Result, error) {
	cmd, err := r.command(name, args)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = r.grace()

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Cmd: name, Err: err}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		terminate(cmd.Process)
		timer := time.AfterFunc(r.grace(), func() { kill(cmd.Process) })
		<-done
		timer.Stop()
		return nil, ctx.Err()
	}

	return &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(err),
	}, nil
}

// Stream delivers the output of a running process.
type Stream struct {
	out chan Line

	cancel     chan struct{}
	cancelOnce sync.Once

	acked   chan struct{}
	ackOnce sync.Once
}

// Lines returns the channel of output lines. Stdout and Stderr lines arrive in
// the order each pipe produced them; the last value is always exactly one
// Exited line, after which the channel is closed.
//
// The consumer must drain the channel until it is closed.
func (s *Stream) Lines() <-chan Line {
	return s.out
}

// Cancel asks the process to terminate. It returns once the stream has
// acknowledged the request: no Stdout or Stderr line is delivered afterwards,
// and the stream ends with Exited{Code: ExitCancelled}.
//
// Cancel is safe to call more than once and after the process has exited,
// in which case it returns immediately.
func (s *Stream) Cancel() {
	s.requestCancel()
	<-s.acked
}

func (s *Stream) requestCancel() {
	s.cancelOnce.Do(func() { close(s.cancel) })
}

func (s *Stream) ack() {
	s.ackOnce.Do(func() { close(s.acked) })
}

func (s *Stream) forward(proc *os.Process, lines <-chan Line, exit <-chan int, grace time.Duration) {
	defer close(s.out)
	defer s.ack()

	in := lines
	var done <-chan int

	for {
		select {
		case <-s.cancel:
			s.stop(proc, lines, exit, grace)
			return

		case line, ok := <-in:
			if !ok {
				in = nil
				done = exit
				continue
			}
			select {
			case s.out <- line:
			case <-s.cancel:
				s.stop(proc, lines, exit, grace)
				return
			}

		case code := <-done:
			select {
			case s.out <- Line{Kind: Exited, Code: code}:
			case <-s.cancel:
				s.ack()
				s.out <- Line{Kind: Exited, Code: ExitCancelled}
			}
			return
		}
	}
}

// stop terminates the process and discards its remaining output.
func (s *Stream) stop(proc *os.Process, lines <-chan Line, exit <-chan int, grace time.Duration) {
	s.ack()

	terminate(proc)
	timer := time.AfterFunc(grace, func() { kill(proc) })
	defer timer.Stop()

	for range lines {
	}
	<-exit

	s.out <- Line{Kind: Exited, Code: ExitCancelled}
}

func terminate(proc *os.Process) {
	if err := signalGroup(proc, syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		kill(proc)
	}
}

func kill(proc *os.Process) {
	_ = signalGroup(proc, syscall.SIGKILL)
}

func scan(r io.Reader, kind LineKind, lines chan<- Line) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	sc.Split(scanLines)

	for sc.Scan() {
		lines <- Line{Kind: kind, Text: sc.Text()}
	}
	if err := sc.Err(); err != nil {
		// keep the pipe drained so the child never blocks on a full buffer
		_, _ = io.Copy(io.Discard, r)
		return err
	}
	return nil
}

// scanLines splits on \n, \r\n and bare \r, since progress bars rewrite
// the current line with carriage returns.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\r' {
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if !atEOF {
				// need one more byte to tell \r from \r\n
				return 0, nil, nil
			}
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
		return ExitKilled
	}
	log.Printf("process wait: %v", err)
	return ExitKilled
}
