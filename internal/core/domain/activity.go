package domain

// Activity is the flat, peer-facing form of a presence. Timestamps are
// reduced to independent optional epoch seconds and buttons to at most two
// label/url pairs. Callers never build one directly; Presence.Activity is
// the only producer.
type Activity struct {
	Details        string           `json:"details,omitempty"`
	State          string           `json:"state,omitempty"`
	Name           string           `json:"name,omitempty"`
	Kind           ActivityKind     `json:"type"`
	StartTimestamp *int64           `json:"start_timestamp,omitempty"`
	EndTimestamp   *int64           `json:"end_timestamp,omitempty"`
	LargeImageKey  string           `json:"large_image_key,omitempty"`
	LargeText      string           `json:"large_text,omitempty"`
	SmallImageKey  string           `json:"small_image_key,omitempty"`
	SmallText      string           `json:"small_text,omitempty"`
	Buttons        []ActivityButton `json:"buttons,omitempty"`
}

type ActivityButton struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Activity translates the presence into its peer-facing form. The function
// is pure and total: any valid Presence maps to an Activity.
func (p Presence) Activity() Activity {
	a := Activity{
		Details:       p.details,
		State:         p.state,
		Name:          p.name,
		Kind:          p.kind,
		LargeImageKey: p.assets.LargeImageKey,
		LargeText:     p.assets.LargeText,
		SmallImageKey: p.assets.SmallImageKey,
		SmallText:     p.assets.SmallText,
	}

	switch {
	case p.elapsedSince != nil:
		start := p.elapsedSince.Unix()
		a.StartTimestamp = &start
	case p.remainingUntil != nil:
		end := p.remainingUntil.Unix()
		a.EndTimestamp = &end
	}

	if len(p.buttons) > 0 {
		a.Buttons = make([]ActivityButton, len(p.buttons))
		for i, b := range p.buttons {
			a.Buttons[i] = ActivityButton{
				Label: b.Label,
				URL:   b.URL.String(),
			}
		}
	}

	return a
}

// IsEmpty reports whether the activity carries nothing to display.
func (a Activity) IsEmpty() bool {
	return a.Details == "" &&
		a.State == "" &&
		a.Name == "" &&
		a.Kind == ActivityPlaying &&
		a.StartTimestamp == nil &&
		a.EndTimestamp == nil &&
		a.LargeImageKey == "" &&
		a.LargeText == "" &&
		a.SmallImageKey == "" &&
		a.SmallText == "" &&
		len(a.Buttons) == 0
}
