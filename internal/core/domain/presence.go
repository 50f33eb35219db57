package domain

import (
	"fmt"
	"net/url"
	"time"
)

type InstanceID string

// ActivityKind selects the presence category shown by the host. Only the four
// categories below are representable; the native SDK's remaining categories
// have no constants here on purpose.
type ActivityKind int

const (
	ActivityPlaying   ActivityKind = 0
	ActivityListening ActivityKind = 2
	ActivityWatching  ActivityKind = 3
	ActivityCompeting ActivityKind = 5
)

func (k ActivityKind) String() string {
	switch k {
	case ActivityPlaying:
		return "playing"
	case ActivityListening:
		return "listening"
	case ActivityWatching:
		return "watching"
	case ActivityCompeting:
		return "competing"
	default:
		return "unknown"
	}
}

// ParseActivityKind maps a category name to its kind. The empty string is
// the playing default.
func ParseActivityKind(name string) (ActivityKind, error) {
	switch name {
	case "", "playing":
		return ActivityPlaying, nil
	case "listening":
		return ActivityListening, nil
	case "watching":
		return ActivityWatching, nil
	case "competing":
		return ActivityCompeting, nil
	default:
		return ActivityPlaying, fmt.Errorf("unknown activity kind %q", name)
	}
}

const (
	// MaxButtons is the most link buttons a presence can carry.
	MaxButtons = 2
	// MaxButtonLabelLen is the longest button label the host displays, in runes.
	MaxButtonLabelLen = 32
)

type Button struct {
	Label string
	URL   *url.URL
}

type Assets struct {
	LargeImageKey string
	LargeText     string
	SmallImageKey string
	SmallText     string
}

// Presence is the caller-facing description of a rich-presence payload. It is
// an immutable value: construct it with NewPresence and read it through the
// accessors. The zero value is the canonical "clear" presence.
type Presence struct {
	details        string
	state          string
	name           string
	kind           ActivityKind
	elapsedSince   *time.Time
	remainingUntil *time.Time
	assets         Assets
	buttons        []Button
}

// PresenceOption is a functional option for building a Presence.
type PresenceOption func(*Presence)

func WithDetails(details string) PresenceOption {
	return func(p *Presence) { p.details = details }
}

func WithState(state string) PresenceOption {
	return func(p *Presence) { p.state = state }
}

// WithName overrides the application name shown alongside the presence.
func WithName(name string) PresenceOption {
	return func(p *Presence) { p.name = name }
}

func WithKind(kind ActivityKind) PresenceOption {
	return func(p *Presence) { p.kind = kind }
}

func WithAssets(assets Assets) PresenceOption {
	return func(p *Presence) { p.assets = assets }
}

// WithElapsedSince shows a count-up timer from t. Mutually exclusive with
// WithRemainingUntil; when both are supplied, elapsed-since wins regardless
// of option order.
func WithElapsedSince(t time.Time) PresenceOption {
	return func(p *Presence) {
		ts := t
		p.elapsedSince = &ts
	}
}

// WithRemainingUntil shows a countdown timer toward t. Discarded when an
// elapsed-since timestamp is also supplied.
func WithRemainingUntil(t time.Time) PresenceOption {
	return func(p *Presence) {
		ts := t
		p.remainingUntil = &ts
	}
}

// WithButtons attaches link buttons. At most the first two presentable
// buttons are kept, in order; extras are dropped silently, never an error.
// A presentable button has a non-empty label and a non-nil URL. Labels
// longer than MaxButtonLabelLen runes are truncated.
func WithButtons(buttons ...Button) PresenceOption {
	return func(p *Presence) {
		kept := make([]Button, 0, MaxButtons)
		for _, b := range buttons {
			if len(kept) == MaxButtons {
				break
			}
			if b.Label == "" || b.URL == nil {
				continue
			}
			if runes := []rune(b.Label); len(runes) > MaxButtonLabelLen {
				b.Label = string(runes[:MaxButtonLabelLen])
			}
			u := *b.URL
			b.URL = &u
			kept = append(kept, b)
		}
		p.buttons = kept
	}
}

// NewPresence builds an immutable presence description. Invariants are
// enforced here, not at translation time.
func NewPresence(opts ...PresenceOption) Presence {
	var p Presence
	for _, opt := range opts {
		opt(&p)
	}
	if p.elapsedSince != nil {
		p.remainingUntil = nil
	}
	return p
}

// ClearPresence returns the canonical empty presence used to blank the
// display.
func ClearPresence() Presence {
	return Presence{}
}

func (p Presence) Details() string { return p.details }

func (p Presence) State() string { return p.state }

func (p Presence) Name() string { return p.name }

func (p Presence) Kind() ActivityKind { return p.kind }

func (p Presence) Assets() Assets { return p.assets }

// ElapsedSince reports the count-up anchor, if set.
func (p Presence) ElapsedSince() (time.Time, bool) {
	if p.elapsedSince == nil {
		return time.Time{}, false
	}
	return *p.elapsedSince, true
}

// RemainingUntil reports the countdown target, if set.
func (p Presence) RemainingUntil() (time.Time, bool) {
	if p.remainingUntil == nil {
		return time.Time{}, false
	}
	return *p.remainingUntil, true
}

// Buttons returns a copy of the attached buttons.
func (p Presence) Buttons() []Button {
	if len(p.buttons) == 0 {
		return nil
	}
	out := make([]Button, len(p.buttons))
	for i, b := range p.buttons {
		u := *b.URL
		b.URL = &u
		out[i] = b
	}
	return out
}

// IsClear reports whether every field is absent or default.
func (p Presence) IsClear() bool {
	return p.details == "" &&
		p.state == "" &&
		p.name == "" &&
		p.kind == ActivityPlaying &&
		p.elapsedSince == nil &&
		p.remainingUntil == nil &&
		p.assets == (Assets{}) &&
		len(p.buttons) == 0
}
