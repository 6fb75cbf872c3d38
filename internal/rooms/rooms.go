// Package rooms implements the room pairing state machine.
//
// A [Machine] moves through idle, comparing and results. While idle the session owns a room code
// (requested from the service and shown to the user for sharing) and accumulates the peer's code.
// Submitting a complete code starts the comparison; its outcome either lands on results or returns to
// idle with the reason surfaced and the entered code kept. Resetting from results starts over with a
// freshly requested room code.
//
// Network calls are made without holding the machine's lock. Room codes that arrive after a newer
// request was started are discarded. Every state change is published on [Machine.Updates].
package rooms

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vibesync/internal/models"
	"github.com/desertthunder/vibesync/internal/services"
	"github.com/desertthunder/vibesync/internal/shared"
)

// InvalidCodeReason is surfaced when a comparison is submitted with an incomplete code.
const InvalidCodeReason = "Enter a valid 6-character code."

// Recorder keeps finished comparisons, e.g. in the local history.
type Recorder interface {
	Record(code models.RoomCode, c *models.Comparison) error
}

// State is a snapshot of a [Machine].
type State struct {
	Phase            models.Phase
	OwnCode          models.RoomCode // empty until the service answers
	ExpiresInMinutes int
	Input            models.RoomCode
	Reason           string
	Result           *models.Comparison
}

// MachineOpts contains optional collaborators of a [Machine].
type MachineOpts struct {
	Recorder Recorder
	Logger   *log.Logger
}

// Machine is the room pairing state machine. It is safe for concurrent use.
type Machine struct {
	mu       sync.Mutex
	api      services.RoomService
	recorder Recorder
	logger   *log.Logger

	phase   models.Phase
	joining bool
	own     models.RoomCode
	expires int
	input   models.RoomCode
	reason  string
	result  *models.Comparison
	gen     uint64
	epoch   uint64

	updates chan State
}

// NewMachine creates a machine in the idle phase without an owned code.
func NewMachine(api services.RoomService, opts MachineOpts) *Machine {
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	return &Machine{
		api:      api,
		recorder: opts.Recorder,
		logger:   opts.Logger.WithPrefix("rooms"),
		phase:    models.Idle,
		updates:  make(chan State, 1),
	}
}

// State returns the current snapshot.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Machine) snapshot() State {
	phase := m.phase
	if phase == models.Idle && m.joining {
		phase = models.Joining
	}
	return State{
		Phase:            phase,
		OwnCode:          m.own,
		ExpiresInMinutes: m.expires,
		Input:            m.input,
		Reason:           m.reason,
		Result:           m.result,
	}
}

// Updates delivers the latest state after each change. Only the newest undelivered state is kept.
func (m *Machine) Updates() <-chan State { return m.updates }

func (m *Machine) publish() {
	s := m.State()
	for {
		select {
		case m.updates <- s:
			return
		default:
		}
		select {
		case <-m.updates:
		default:
		}
	}
}

// RequestCode asks the service for a room owned by this session and attaches its code.
//
// A code that arrives after a newer request started is discarded and reported as [shared.ErrInvalidState].
func (m *Machine) RequestCode(ctx context.Context) (models.RoomCode, error) {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.own, m.expires = "", 0
	m.mu.Unlock()
	m.publish()

	room, err := m.api.CreateRoom(ctx)

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		m.logger.Debug("discarding superseded room code")
		return "", fmt.Errorf("%w: room code superseded", shared.ErrInvalidState)
	}
	if err != nil {
		m.mu.Unlock()
		m.logger.Warn("failed to create room", "error", err)
		return "", err
	}
	m.own, m.expires = room.Code, room.ExpiresInMinutes
	m.mu.Unlock()
	m.publish()

	m.logger.Info("room ready", "code", room.Code, "expires_in", room.ExpiresInMinutes)
	return room.Code, nil
}

// Type appends keyboard input to the peer code. It reports whether the input was accepted.
func (m *Machine) Type(s string) bool {
	m.mu.Lock()
	if m.phase != models.Idle {
		m.mu.Unlock()
		return false
	}
	m.input = models.NormalizeRoomCode(m.input.String() + s)
	m.joining, m.reason = m.input != "", ""
	m.mu.Unlock()
	m.publish()
	return true
}

// SetInput replaces the peer code. It reports whether the input was accepted.
func (m *Machine) SetInput(s string) bool {
	m.mu.Lock()
	if m.phase != models.Idle {
		m.mu.Unlock()
		return false
	}
	m.input = models.NormalizeRoomCode(s)
	m.joining, m.reason = m.input != "", ""
	m.mu.Unlock()
	m.publish()
	return true
}

// Backspace removes the last character of the peer code.
func (m *Machine) Backspace() bool {
	m.mu.Lock()
	if m.phase != models.Idle || m.input == "" {
		m.mu.Unlock()
		return false
	}
	m.input = m.input[:len(m.input)-1]
	m.joining, m.reason = m.input != "", ""
	m.mu.Unlock()
	m.publish()
	return true
}

// Submit compares libraries with the owner of the entered code.
//
// An incomplete code fails with [shared.ErrValidationFailed] without touching the network. Submitting outside
// the idle phase fails with [shared.ErrInvalidState].
func (m *Machine) Submit(ctx context.Context) (*models.Comparison, error) {
	m.mu.Lock()
	if m.phase != models.Idle {
		phase := m.phase
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot submit while %s", shared.ErrInvalidState, phase)
	}
	if !m.input.Complete() {
		m.reason = InvalidCodeReason
		m.mu.Unlock()
		m.publish()
		return nil, fmt.Errorf("%w: %s", shared.ErrValidationFailed, InvalidCodeReason)
	}
	code, epoch := m.input, m.epoch
	m.phase, m.reason = models.Comparing, ""
	m.mu.Unlock()
	m.publish()

	m.logger.Info("comparing", "code", code)
	result, err := m.api.JoinRoom(ctx, code)

	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		m.logger.Debug("discarding comparison from a previous session", "code", code)
		return nil, fmt.Errorf("%w: session restarted", shared.ErrInvalidState)
	}
	if err != nil {
		m.phase, m.joining = models.Idle, true
		m.reason = shared.Reason(err)
		m.mu.Unlock()
		m.publish()
		m.logger.Warn("comparison failed", "code", code, "reason", shared.Reason(err))
		return nil, err
	}
	m.phase, m.result = models.Results, result
	m.mu.Unlock()
	m.publish()

	if m.recorder != nil {
		if err := m.recorder.Record(code, result); err != nil {
			m.logger.Warn("failed to record comparison", "error", err)
		}
	}
	return result, nil
}

// Reset leaves the results phase, clearing the result and the entered code, and requests a fresh room code.
// Outside the results phase it does nothing.
func (m *Machine) Reset(ctx context.Context) error {
	m.mu.Lock()
	if m.phase != models.Results {
		m.mu.Unlock()
		return nil
	}
	m.phase, m.joining = models.Idle, false
	m.result, m.input, m.reason = nil, "", ""
	m.mu.Unlock()
	m.publish()

	_, err := m.RequestCode(ctx)
	return err
}

// Restart returns the machine to its initial state for a new session: idle, with no owned code, input, reason
// or result. In-flight code requests and comparisons are discarded when they complete.
func (m *Machine) Restart() {
	m.mu.Lock()
	m.gen++
	m.epoch++
	m.phase, m.joining = models.Idle, false
	m.own, m.expires = "", 0
	m.input, m.reason, m.result = "", "", nil
	m.mu.Unlock()
	m.publish()
	m.logger.Debug("room state restarted")
}

// Check probes the entered code without changing phase.
func (m *Machine) Check(ctx context.Context) (*models.RoomCheck, error) {
	m.mu.Lock()
	code := m.input
	m.mu.Unlock()

	if !code.Complete() {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidationFailed, InvalidCodeReason)
	}
	return m.api.CheckRoom(ctx, code)
}
