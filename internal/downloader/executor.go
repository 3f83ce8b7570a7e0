package downloader

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go-wallhaven-rotator/internal/helpers"

	log "github.com/sirupsen/logrus"
)

// CommandKind identifies which step of a download a command performs.
type CommandKind string

const (
	KindEnsureDir CommandKind = "mkdir"
	KindTransfer  CommandKind = "curl"
)

// Command is one asynchronous request issued to an Executor.
type Command struct {
	Kind CommandKind
	// Dir is the directory to create (KindEnsureDir).
	Dir string
	// Target and URL describe the transfer (KindTransfer).
	Target string
	URL    string
}

// String renders the command as the shell line a ShellExecutor runs.
func (c Command) String() string {
	switch c.Kind {
	case KindEnsureDir:
		return fmt.Sprintf("mkdir -p %s", shellQuote(c.Dir))
	case KindTransfer:
		return fmt.Sprintf("curl -L -o %s %s", shellQuote(c.Target), shellQuote(c.URL))
	}
	return string(c.Kind)
}

var shellEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")

// shellQuote wraps s in double quotes, escaping the characters sh still
// interprets inside them.
func shellQuote(s string) string {
	return `"` + shellEscaper.Replace(s) + `"`
}

// RequestID correlates a Completion with the Execute call that caused it.
type RequestID string

// Completion is delivered exactly once per executed request.
type Completion struct {
	ID       RequestID
	Command  Command
	ExitCode int
	Stdout   string
	Stderr   string
}

// Succeeded reports a zero exit code.
func (c Completion) Succeeded() bool { return c.ExitCode == 0 }

// Executor runs commands asynchronously. Execute never fails synchronously;
// failures surface as a Completion with a non-zero exit code.
type Executor interface {
	Execute(ctx context.Context, cmd Command) RequestID
	Completions() <-chan Completion
	// Release frees resources held for a handled request.
	Release(id RequestID)
}

// runFunc performs a single command and returns its exit code and output.
type runFunc func(ctx context.Context, cmd Command) (exitCode int, stdout, stderr string)

// asyncExecutor runs each request on its own goroutine and publishes the
// result on a shared channel.
type asyncExecutor struct {
	run     runFunc
	out     chan Completion
	mu      sync.Mutex
	cancels map[RequestID]context.CancelFunc
	seq     atomic.Uint64
}

func newAsyncExecutor(run runFunc) *asyncExecutor {
	return &asyncExecutor{
		run:     run,
		out:     make(chan Completion, 16),
		cancels: make(map[RequestID]context.CancelFunc),
	}
}

// newRequestID returns a random hex identifier, falling back to a counter.
func (e *asyncExecutor) newRequestID() RequestID {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return RequestID(fmt.Sprintf("req-%d-%d", time.Now().UnixNano(), e.seq.Add(1)))
	}
	return RequestID(hex.EncodeToString(b))
}

func (e *asyncExecutor) Execute(ctx context.Context, cmd Command) RequestID {
	id := e.newRequestID()
	runCtx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	e.cancels[id] = cancel
	e.mu.Unlock()

	log.WithFields(log.Fields{"request": id, "command": cmd.String()}).Debug("Executing command")
	go func() {
		code, stdout, stderr := e.run(runCtx, cmd)
		c := Completion{ID: id, Command: cmd, ExitCode: code, Stdout: stdout, Stderr: stderr}
		if runCtx.Err() != nil {
			log.WithField("request", id).Debug("Dropping completion, request released")
			return
		}
		select {
		case e.out <- c:
		case <-runCtx.Done():
			log.WithField("request", id).Debug("Dropping completion, request released")
		}
	}()
	return id
}

func (e *asyncExecutor) Completions() <-chan Completion { return e.out }

func (e *asyncExecutor) Release(id RequestID) {
	e.mu.Lock()
	cancel, ok := e.cancels[id]
	delete(e.cancels, id)
	e.mu.Unlock()
	if ok {
		cancel()
	}
}

// ShellExecutor runs commands through "sh -c" using the system mkdir and curl.
type ShellExecutor struct {
	*asyncExecutor
	Shell string
}

// NewShellExecutor creates a ShellExecutor using /bin/sh.
func NewShellExecutor() *ShellExecutor {
	s := &ShellExecutor{Shell: "sh"}
	s.asyncExecutor = newAsyncExecutor(s.runShell)
	return s
}

func (s *ShellExecutor) runShell(ctx context.Context, cmd Command) (int, string, string) {
	var stdout, stderr bytes.Buffer
	c := exec.CommandContext(ctx, s.Shell, "-c", cmd.String())
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	if err == nil {
		return 0, stdout.String(), stderr.String()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode(), stdout.String(), stderr.String()
	}
	// Could not start, or killed by a signal.
	if stderr.Len() == 0 {
		stderr.WriteString(err.Error())
	}
	return -1, stdout.String(), stderr.String()
}

// NativeExecutor performs the same steps in-process without external tools.
type NativeExecutor struct {
	*asyncExecutor
	downloader *Downloader

	progressMu sync.Mutex
	progress   map[string]*helpers.CounterWriter
}

// NewNativeExecutor creates a NativeExecutor backed by d.
func NewNativeExecutor(d *Downloader) *NativeExecutor {
	if d == nil {
		d = NewDownloader(nil, "")
	}
	n := &NativeExecutor{downloader: d, progress: make(map[string]*helpers.CounterWriter)}
	n.asyncExecutor = newAsyncExecutor(n.runNative)
	return n
}

// Progress returns the bytes received so far for every transfer in flight, keyed by URL.
func (n *NativeExecutor) Progress() map[string]uint64 {
	n.progressMu.Lock()
	defer n.progressMu.Unlock()
	out := make(map[string]uint64, len(n.progress))
	for url, cw := range n.progress {
		out[url] = cw.Total()
	}
	return out
}

func (n *NativeExecutor) runNative(ctx context.Context, cmd Command) (int, string, string) {
	switch cmd.Kind {
	case KindEnsureDir:
		if !helpers.CheckAndMakeDir(cmd.Dir) {
			return 1, "", fmt.Sprintf("cannot create directory %s", cmd.Dir)
		}
		return 0, "", ""
	case KindTransfer:
		counter := &helpers.CounterWriter{}
		n.progressMu.Lock()
		n.progress[cmd.URL] = counter
		n.progressMu.Unlock()
		defer func() {
			n.progressMu.Lock()
			delete(n.progress, cmd.URL)
			n.progressMu.Unlock()
		}()

		written, err := n.downloader.DownloadFile(ctx, cmd.Target, cmd.URL, counter)
		if err != nil {
			return 1, "", err.Error()
		}
		return 0, fmt.Sprintf("%d bytes", written), ""
	}
	return 127, "", fmt.Sprintf("unknown command kind %q", cmd.Kind)
}
