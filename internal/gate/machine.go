// gate/machine.go - Maintenance gate state machine
package gate

import (
	"errors"
	"fmt"
)

// State of the maintenance gate for one visitor
type State int

const (
	Active State = iota
	Bypassed
)

func (s State) String() string {
	if s == Bypassed {
		return "bypassed"
	}
	return "active"
}

var (
	ErrTransition       = errors.New("gate: invalid transition")
	ErrNotAuthenticated = errors.New("gate: bypass requires a successful authentication")
)

// Authentication is proof that a login succeeded. Only the login mutation produces one.
type Authentication struct {
	Username string
}

// Machine starts Active; Bypass is its only transition
type Machine struct {
	state State
}

func NewMachine() *Machine { return &Machine{state: Active} }

// Restore rebuilds a machine from persisted state
func Restore(bypassed bool) *Machine {
	if bypassed {
		return &Machine{state: Bypassed}
	}
	return NewMachine()
}

func (m *Machine) State() State { return m.state }

// Bypass moves Active to Bypassed
func (m *Machine) Bypass(auth *Authentication) error {
	if m.state != Active {
		return fmt.Errorf("%w: %s to %s", ErrTransition, m.state, Bypassed)
	}
	if auth == nil || auth.Username == "" {
		return ErrNotAuthenticated
	}
	m.state = Bypassed
	return nil
}

// Activate exists so callers get a typed error instead of a silent reset
func (m *Machine) Activate() error {
	return fmt.Errorf("%w: %s to %s", ErrTransition, m.state, Active)
}
