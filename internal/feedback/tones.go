package feedback

import (
	"errors"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// ErrNoBackend is returned by DetectBackend when no audio CLI is installed.
var ErrNoBackend = errors.New("feedback: no audio backend found")

// Backend is an audio CLI that plays raw s16le stereo PCM from stdin.
type Backend struct {
	Name string
	Path string
	Args []string
}

var candidates = []Backend{
	{Name: "pacat", Args: []string{"--raw", "--format=s16le", "--rate=44100", "--channels=2", "--latency-msec=50", "--playback"}},
	{Name: "pw-cat", Args: []string{"--playback", "--format=s16", "--rate=44100", "--channels=2", "--latency=50ms", "-"}},
	{Name: "aplay", Args: []string{"-t", "raw", "-f", "S16_LE", "-r", "44100", "-c", "2", "-q"}},
	{Name: "play", Args: []string{"-t", "raw", "-e", "signed", "-b", "16", "-c", "2", "-r", "44100", "-", "-d", "-q"}},
}

// DetectBackend returns the first installed audio CLI.
// Priority: pacat > pw-cat > aplay > play (sox).
func DetectBackend() (Backend, error) {
	for _, c := range candidates {
		if path, err := exec.LookPath(c.Name); err == nil {
			c.Path = path
			return c, nil
		}
	}
	return Backend{}, ErrNoBackend
}

const queueSize = 16

// Tones is a Sink that plays a short synthesized tone per event.
// Without an audio backend it runs in silent mode.
type Tones struct {
	logger *log.Logger
	cache  map[Kind][]byte
	queue  chan Kind
	done   chan struct{}

	out io.WriteCloser
	cmd *exec.Cmd

	silent  atomic.Bool
	played  atomic.Uint64
	dropped atomic.Uint64

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewTones starts the detected audio backend. It never fails: a missing or
// broken backend leaves the sink silent.
func NewTones(logger *log.Logger, gain float64) *Tones {
	backend, err := DetectBackend()
	if err != nil {
		logger.Info("feedback: silent mode", "reason", err)
		return newSilent(logger)
	}

	cmd := exec.Command(backend.Path, backend.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		logger.Warn("feedback: stdin pipe", "backend", backend.Name, "err", err)
		return newSilent(logger)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		logger.Warn("feedback: start backend", "backend", backend.Name, "err", err)
		return newSilent(logger)
	}

	t := NewTonesTo(stdin, logger, gain)
	t.cmd = cmd
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if err := cmd.Wait(); err != nil && !t.silent.Load() {
			logger.Debug("feedback: backend exited", "backend", backend.Name, "err", err)
		}
		t.silent.Store(true)
	}()
	logger.Info("feedback: tones enabled", "backend", backend.Name)
	return t
}

// NewTonesTo plays tones into w, which receives raw PCM.
func NewTonesTo(w io.WriteCloser, logger *log.Logger, gain float64) *Tones {
	t := &Tones{
		logger: logger,
		cache:  make(map[Kind][]byte, len(voices)),
		queue:  make(chan Kind, queueSize),
		done:   make(chan struct{}),
		out:    w,
	}
	for k := range voices {
		t.cache[k] = Render(Streamer(k, gain))
	}
	t.wg.Add(1)
	go t.loop()
	return t
}

func newSilent(logger *log.Logger) *Tones {
	t := &Tones{logger: logger}
	t.silent.Store(true)
	return t
}

func (t *Tones) loop() {
	defer t.wg.Done()
	for {
		select {
		case <-t.done:
			return
		case k := <-t.queue:
			if t.silent.Load() {
				continue
			}
			if _, err := t.out.Write(t.cache[k]); err != nil {
				t.logger.Debug("feedback: write failed, going silent", "err", err)
				t.silent.Store(true)
				continue
			}
			t.played.Add(1)
		}
	}
}

// Notify queues the tone for k. When the queue is full the event is dropped.
func (t *Tones) Notify(k Kind) {
	if t.silent.Load() || t.queue == nil {
		return
	}
	select {
	case t.queue <- k:
	default:
		t.dropped.Add(1)
	}
}

// Silent reports whether tones are being discarded.
func (t *Tones) Silent() bool {
	return t.silent.Load()
}

// Stats returns played and dropped counts.
func (t *Tones) Stats() (played, dropped uint64) {
	return t.played.Load(), t.dropped.Load()
}

// Close stops the writer and the backend process. Safe to call twice.
func (t *Tones) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.silent.Store(true)
		if t.done != nil {
			close(t.done)
		}
		if t.out != nil {
			err = t.out.Close()
		}
		if t.cmd != nil && t.cmd.Process != nil {
			_ = t.cmd.Process.Kill()
		}
		t.wg.Wait()
	})
	return err
}
