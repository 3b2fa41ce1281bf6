package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jarod-johnson-23/audiobot/pkg/audio/player"
	"github.com/jarod-johnson-23/audiobot/pkg/realtime"
	"github.com/jarod-johnson-23/audiobot/pkg/transcript"
)

// System messages inserted into the transcript on session transitions.
const (
	SystemSettingsChanged = "Assistant settings changed."
	SystemStartFailed     = "An error occurred while starting the session."
)

// ErrSuperseded is returned by Start when a newer Start took over before
// this one settled.
var ErrSuperseded = errors.New("session: superseded by newer start")

// Config is the user-chosen session configuration.
type Config struct {
	// Instructions is the assistant instruction text.
	Instructions string

	// Voice is one of the realtime voice IDs.
	Voice string
}

// TokenSource supplies session credentials.
type TokenSource interface {
	CreateSession(ctx context.Context, instructions, voice string) (string, error)
}

// Transport is one wire connection to the agent.
type Transport interface {
	Connect(ctx context.Context, credential string) error
	Send(event interface{}) error
	SetRecording(enabled bool)
	Close() error
}

// ManagerConfig wires a Manager.
type ManagerConfig struct {
	// Store is the transcript store. Required.
	Store *transcript.Store

	// Player is the audio chunk player. Required.
	Player *player.Player

	// Tokens supplies session credentials. Required.
	Tokens TokenSource

	// Search is the function call collaborator. Optional.
	Search Searcher

	// NewTransport builds a fresh transport whose inbound events flow into
	// the given handler. Required.
	NewTransport func(h realtime.Handler) Transport

	// RetryDelay is the fixed wait between credential retries. Default 1s.
	RetryDelay time.Duration

	// MaxRetries caps additional attempts after the first failure. Default 3.
	MaxRetries int
}

// Manager owns the session lifecycle. At most one transport is live at a
// time; every Start supersedes the previous session, archiving its
// transcript rather than discarding it.
type Manager struct {
	store        *transcript.Store
	player       *player.Player
	tokens       TokenSource
	newTransport func(h realtime.Handler) Transport
	retryDelay   time.Duration
	maxRetries   int

	dispatcher *Dispatcher

	mu         sync.Mutex
	transport  Transport
	status     Status
	generation int
	observers  []func(Status)
}

// NewManager creates a manager and its dispatcher.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	m := &Manager{
		store:        cfg.Store,
		player:       cfg.Player,
		tokens:       cfg.Tokens,
		newTransport: cfg.NewTransport,
		retryDelay:   cfg.RetryDelay,
		maxRetries:   cfg.MaxRetries,
		status:       StatusIdle,
	}
	m.dispatcher = NewDispatcher(cfg.Store, cfg.Player, m, cfg.Search, func() {
		m.setStatus(StatusReady)
	})
	return m
}

// Dispatcher returns the manager's event dispatcher.
func (m *Manager) Dispatcher() *Dispatcher {
	return m.dispatcher
}

// Status returns the current session status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// OnStatusChange registers an observer for status transitions.
func (m *Manager) OnStatusChange(fn func(Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Start applies a session configuration: the previous session's messages are
// archived, its transport torn down, and a new session negotiated. A 5xx
// from the credential endpoint is retried up to MaxRetries times with a
// fixed delay; any other failure is terminal for this attempt. A newer Start
// supersedes an in-flight one — its stale retries and results are discarded.
//
// Start blocks through retries; run it on its own goroutine when the caller
// must stay responsive.
func (m *Manager) Start(ctx context.Context, cfg Config) error {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	old := m.transport
	m.transport = nil
	m.mu.Unlock()

	if old != nil {
		old.Close()
	}
	m.player.Reset()

	n := m.store.Archive()
	if n > 0 {
		slog.Debug("archived previous session messages", "count", n)
	}
	m.store.AddSystem(SystemSettingsChanged)

	m.setStatusIfCurrent(gen, StatusNegotiating)

	credential, err := m.fetchCredential(ctx, gen, cfg)
	if err != nil {
		if errors.Is(err, ErrSuperseded) {
			return err
		}
		slog.Error("failed to start session", "error", err)
		m.failIfCurrent(gen)
		return err
	}

	t := m.newTransport(m.dispatcher.Handle)

	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		t.Close()
		return ErrSuperseded
	}
	m.transport = t
	m.mu.Unlock()

	m.setStatusIfCurrent(gen, StatusConnecting)

	if err := t.Connect(ctx, credential); err != nil {
		slog.Error("failed to connect transport", "error", err)
		t.Close()
		m.mu.Lock()
		if m.transport == t {
			m.transport = nil
		}
		m.mu.Unlock()
		m.failIfCurrent(gen)
		return err
	}

	return nil
}

// fetchCredential runs the bounded retry loop for session creation. Only
// transient server errors are retried, and a retry fires only while its
// generation is still current.
func (m *Manager) fetchCredential(ctx context.Context, gen int, cfg Config) (string, error) {
	for attempt := 0; ; attempt++ {
		credential, err := m.tokens.CreateSession(ctx, cfg.Instructions, cfg.Voice)
		if err == nil {
			if !m.current(gen) {
				return "", ErrSuperseded
			}
			return credential, nil
		}

		if attempt >= m.maxRetries || !realtime.IsRetryable(err) {
			return "", err
		}

		slog.Warn("session creation failed, retrying", "attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.retryDelay):
		}
		if !m.current(gen) {
			return "", ErrSuperseded
		}
	}
}

// Send delivers an event over the live transport. Without one it fails with
// ErrNotReady; events are never queued.
func (m *Manager) Send(event interface{}) error {
	m.mu.Lock()
	t := m.transport
	m.mu.Unlock()

	if t == nil {
		return realtime.ErrNotReady
	}
	return t.Send(event)
}

// SendUserMessage sends a user text message and triggers a response.
func (m *Manager) SendUserMessage(text string) error {
	if err := m.Send(realtime.UserMessageEvent(text)); err != nil {
		return err
	}
	return m.Send(realtime.ResponseCreateEvent())
}

// SetRecording flips the microphone gate on the live transport.
func (m *Manager) SetRecording(enabled bool) {
	m.mu.Lock()
	t := m.transport
	m.mu.Unlock()

	if t != nil {
		t.SetRecording(enabled)
	}
}

// Close tears down the live session. It is idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.generation++
	t := m.transport
	m.transport = nil
	m.mu.Unlock()

	m.player.Reset()

	if t != nil {
		return t.Close()
	}
	return nil
}

// current reports whether gen is still the live generation.
func (m *Manager) current(gen int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gen == m.generation
}

// setStatus transitions the status and notifies observers.
func (m *Manager) setStatus(status Status) {
	m.mu.Lock()
	if m.status == status {
		m.mu.Unlock()
		return
	}
	m.status = status
	observers := make([]func(Status), len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	slog.Debug("session status", "status", status)
	for _, fn := range observers {
		fn(status)
	}
}

// setStatusIfCurrent transitions only when gen is still live, so a
// superseded attempt cannot clobber its successor's state.
func (m *Manager) setStatusIfCurrent(gen int, status Status) {
	if m.current(gen) {
		m.setStatus(status)
	}
}

// failIfCurrent records a terminal start failure.
func (m *Manager) failIfCurrent(gen int) {
	if !m.current(gen) {
		return
	}
	m.store.AddSystem(SystemStartFailed)
	m.setStatus(StatusFailed)
}
