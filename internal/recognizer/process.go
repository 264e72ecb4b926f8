package recognizer

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// DefaultIdleTimeout is how long an unused service process is kept alive.
const DefaultIdleTimeout = 30 * time.Second

// ProcessRecognizer talks to a long-lived recognition service over stdin and
// stdout. Each request is a 4-byte big-endian length followed by a JPEG; each
// reply is one JSON line with the same fields as the HTTP service.
type ProcessRecognizer struct {
	command     string
	args        []string
	env         []string
	idleTimeout time.Duration
	quality     int

	mu        sync.Mutex
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	started   bool
	lastUsed  time.Time
	idleTimer *time.Timer
}

// NewProcessRecognizer creates a recognizer running command with args.
// The process is started lazily on the first call.
func NewProcessRecognizer(command string, args ...string) *ProcessRecognizer {
	return &ProcessRecognizer{
		command:     command,
		args:        args,
		idleTimeout: DefaultIdleTimeout,
		quality:     DefaultJPEGQuality,
	}
}

// SetEnv sets extra environment variables (KEY=VALUE) for the process.
func (p *ProcessRecognizer) SetEnv(env ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.env = env
}

// SetIdleTimeout changes how long an idle process is kept. Values less than
// or equal to 0 are ignored.
func (p *ProcessRecognizer) SetIdleTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idleTimeout = d
}

// Running reports whether the service process is up.
func (p *ProcessRecognizer) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

// Recognize encodes frame and exchanges it with the service process.
func (p *ProcessRecognizer) Recognize(ctx context.Context, frame *gocv.Mat) (Result, error) {
	jpeg, err := EncodeFrame(frame, p.quality)
	if err != nil {
		return Result{}, err
	}
	return p.RecognizeJPEG(ctx, jpeg)
}

// RecognizeJPEG exchanges an already encoded frame with the service process.
// If ctx ends mid-exchange the process is killed and restarted on the next call.
func (p *ProcessRecognizer) RecognizeJPEG(ctx context.Context, jpeg []byte) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if err := p.ensureStarted(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	proc := p.cmd.Process
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			proc.Kill()
		case <-done:
		}
	}()

	line, err := p.exchange(jpeg)
	if err != nil {
		p.shutdown()
		return Result{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	p.lastUsed = time.Now()
	p.resetIdleTimer()

	var wire wireResponse
	if err := json.Unmarshal([]byte(line), &wire); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return wire.toResult()
}

func (p *ProcessRecognizer) exchange(jpeg []byte) (string, error) {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(jpeg)))

	if _, err := p.stdin.Write(length); err != nil {
		return "", fmt.Errorf("write length: %w", err)
	}
	if _, err := p.stdin.Write(jpeg); err != nil {
		return "", fmt.Errorf("write data: %w", err)
	}

	line, err := p.stdout.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return line, nil
}

// Close shuts down the service process.
func (p *ProcessRecognizer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shutdown()
}

func (p *ProcessRecognizer) ensureStarted() error {
	if p.started {
		return nil
	}

	p.cmd = exec.Command(p.command, p.args...)
	if len(p.env) > 0 {
		p.cmd.Env = append(os.Environ(), p.env...)
	}

	stdin, err := p.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := p.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Surface service diagnostics in our own log stream.
	p.cmd.Stderr = os.Stderr

	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("start recognition service: %w", err)
	}

	p.stdin = stdin
	p.stdout = bufio.NewReader(stdout)
	p.started = true
	p.lastUsed = time.Now()

	log.Printf("Recognition service started: %s (pid %d)", p.command, p.cmd.Process.Pid)
	return nil
}

func (p *ProcessRecognizer) shutdown() error {
	if !p.started {
		return nil
	}

	if p.idleTimer != nil {
		p.idleTimer.Stop()
		p.idleTimer = nil
	}

	if p.stdin != nil {
		p.stdin.Close()
	}

	err := p.cmd.Wait()
	p.started = false
	p.cmd = nil
	p.stdin = nil
	p.stdout = nil

	return err
}

func (p *ProcessRecognizer) resetIdleTimer() {
	if p.idleTimer != nil {
		p.idleTimer.Stop()
	}
	p.idleTimer = time.AfterFunc(p.idleTimeout, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if time.Since(p.lastUsed) < p.idleTimeout {
			return
		}
		if err := p.shutdown(); err != nil {
			log.Printf("Recognition service exited: %v", err)
		}
	})
}
