// Package state holds the presentation state of the unlock indicator and the
// pure mapping from that state to the indicator's base color.
package state

import "github.com/phinze/ringlock/internal/paint"

// AuthPhase is the authenticator's current phase.
type AuthPhase int

const (
	Idle AuthPhase = iota
	Verifying
	WrongCredential
	LockFailed
)

func (p AuthPhase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Verifying:
		return "verifying"
	case WrongCredential:
		return "wrong"
	case LockFailed:
		return "lock-failed"
	}
	return "unknown"
}

// InputActivity describes the most recent keystroke.
type InputActivity int

const (
	None InputActivity = iota
	KeyAccepted
	KeyRejected
)

func (a InputActivity) String() string {
	switch a {
	case None:
		return "none"
	case KeyAccepted:
		return "key"
	case KeyRejected:
		return "backspace"
	}
	return "unknown"
}

// ParsePhase maps a phase name as printed by String back to its value.
func ParsePhase(s string) (AuthPhase, bool) {
	for p := Idle; p <= LockFailed; p++ {
		if p.String() == s {
			return p, true
		}
	}
	return Idle, false
}

// ParseActivity maps an activity name as printed by String back to its value.
func ParseActivity(s string) (InputActivity, bool) {
	for a := None; a <= KeyRejected; a++ {
		if a.String() == s {
			return a, true
		}
	}
	return None, false
}

// Tone names which configured base color the indicator is drawn with.
type Tone int

const (
	ToneIdle Tone = iota
	ToneVerify
	ToneWrong
)

func (t Tone) String() string {
	switch t {
	case ToneVerify:
		return "verify"
	case ToneWrong:
		return "wrong"
	}
	return "idle"
}

// ToneFor returns the base color for a phase and input activity.
func ToneFor(phase AuthPhase, activity InputActivity) Tone {
	switch phase {
	case Verifying:
		return ToneVerify
	case LockFailed, WrongCredential:
		return ToneWrong
	}
	if activity == KeyRejected {
		return ToneWrong
	}
	return ToneIdle
}

// Palette holds the configured base colors.
type Palette struct {
	Background paint.RGB
	Verify     paint.RGB
	Wrong      paint.RGB
	Idle       paint.RGB
}

// Color returns the base color for a tone.
func (p Palette) Color(t Tone) paint.RGB {
	switch t {
	case ToneVerify:
		return p.Verify
	case ToneWrong:
		return p.Wrong
	}
	return p.Idle
}

// Presentation is the pair the indicator color depends on.
type Presentation struct {
	Phase    AuthPhase
	Activity InputActivity
}

// Tone returns the base color for the pair.
func (p Presentation) Tone() Tone {
	return ToneFor(p.Phase, p.Activity)
}

// Model is the presentation state plus the side inputs read on every redraw.
type Model struct {
	Presentation

	// Modifiers lists the pressed modifier keys ("Shift, Caps Lock"), or ""
	// when none are held.
	Modifiers string

	// FailedAttempts counts rejected unlock attempts.
	FailedAttempts int
}

// Settle clears a consumed keystroke. While the authenticator is verifying
// the activity is kept so the notch stays visible.
func (m *Model) Settle() {
	if m.Phase != Verifying {
		m.Activity = None
	}
}

// Change mutates a Model.
type Change func(*Model)

// WithPhase sets the authentication phase.
func WithPhase(p AuthPhase) Change {
	return func(m *Model) { m.Phase = p }
}

// WithActivity records a keystroke.
func WithActivity(a InputActivity) Change {
	return func(m *Model) { m.Activity = a }
}

// WithModifiers sets the modifier label.
func WithModifiers(s string) Change {
	return func(m *Model) { m.Modifiers = s }
}

// WithFailedAttempts sets the failed attempt counter.
func WithFailedAttempts(n int) Change {
	return func(m *Model) { m.FailedAttempts = n }
}

// Cleared resets the indicator to idle with no pending keystroke.
func Cleared() Change {
	return func(m *Model) {
		m.Phase = Idle
		m.Activity = None
	}
}

// Apply runs changes in order.
func (m *Model) Apply(changes ...Change) {
	for _, c := range changes {
		if c != nil {
			c(m)
		}
	}
}
