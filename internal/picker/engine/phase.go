// Package engine runs the animated reveal for each tool and resolves exactly
// one winner per run.
//
// Both engines follow the same phase machine:
//
//	Idle ──trigger──▶ Animating ──timer──▶ Resolved ──trigger──▶ Animating
//	  ▲                   │                    │
//	  └──────────────── Reset ◀────────────────┘
//
// A trigger while Animating is rejected with picker.ErrInvalidState and changes
// nothing. Reset and Close cancel the pending timer before touching state, and
// every scheduled callback carries the generation it was created under, so a
// callback that races a Reset is discarded.
package engine

// Phase is the engine's position in the reveal state machine.
type Phase int

const (
	Idle Phase = iota
	Animating
	Resolved
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Animating:
		return "animating"
	case Resolved:
		return "resolved"
	default:
		return "idle"
	}
}
