// Package card models the flip state of entity cards.
//
// At most one card is open system-wide. The Machine owns that single slot:
// Open and Close are the only mutators, so "two cards flipped at once" is
// unrepresentable rather than merely avoided.
package card

// State is a card's visual flip state.
type State int

const (
	StateFlat State = iota
	// StateFlippedForward reveals the question form face (lower-half click).
	StateFlippedForward
	// StateFlippedBackward reveals the same face flipped the other way
	// (upper-half or indicator click); the distinction drives animation only.
	StateFlippedBackward
)

func (s State) String() string {
	switch s {
	case StateFlippedForward:
		return "flipped-forward"
	case StateFlippedBackward:
		return "flipped-backward"
	default:
		return "flat"
	}
}

// Region is where on the card front a pointer press landed.
type Region int

const (
	// RegionImage is the portrait itself; flip direction comes from the
	// vertical click position.
	RegionImage Region = iota
	// RegionHoverOverlay sits at the bottom of the portrait and always flips
	// forward.
	RegionHoverOverlay
	// RegionIndicator is the small question-count badge in the upper region
	// and always flips backward.
	RegionIndicator
)

// FlipFor resolves the flip direction for a press. y is measured from the top
// of the portrait, height is the portrait height.
func FlipFor(region Region, y, height int) State {
	switch region {
	case RegionHoverOverlay:
		return StateFlippedForward
	case RegionIndicator:
		return StateFlippedBackward
	}
	if height <= 0 {
		return StateFlippedForward
	}
	// Strictly below the midline counts as the bottom half.
	if 2*y > height {
		return StateFlippedForward
	}
	return StateFlippedBackward
}

// Face is what the reverse side shows, decided by the stored-question count.
type Face int

const (
	// FaceForm: no stored questions, submission form only.
	FaceForm Face = iota
	// FaceFormWithQuestion: form plus the one existing question.
	FaceFormWithQuestion
	// FaceLimit: two questions with delete affordances, no form.
	FaceLimit
)

func FaceFor(questionCount int) Face {
	switch {
	case questionCount <= 0:
		return FaceForm
	case questionCount == 1:
		return FaceFormWithQuestion
	default:
		return FaceLimit
	}
}

// Placement is the card's pre-relocation bounding box in screen coordinates.
// The portal keeps rendering the open card at exactly this box, above the
// dimmed backdrop, while a same-size placeholder holds its grid slot.
type Placement struct {
	Top, Left     int
	Width, Height int
}

// Open is the currently flipped card.
type Open struct {
	Entity    string
	State     State
	Relocated bool
	Origin    Placement
	// ShowingSuccess is set after a successful submission until the user
	// dismisses the acknowledgement (which also closes the card).
	ShowingSuccess bool
}

// Machine is the single-slot owner of the open card.
type Machine struct {
	open *Open
}

// Current returns the open card, if any.
func (m *Machine) Current() (Open, bool) {
	if m.open == nil {
		return Open{}, false
	}
	return *m.open, true
}

// IsOpen reports whether any card is flipped.
func (m *Machine) IsOpen() bool { return m.open != nil }

// ScrollLocked reports whether page scrolling is suspended (it is whenever a
// card is open).
func (m *Machine) ScrollLocked() bool { return m.open != nil }

// Open flips a card. While a card is already open this is a no-op and
// returns false: all other pointer input routes to closing, never to
// flipping a second card.
func (m *Machine) Open(entity string, state State, origin Placement) bool {
	if m.open != nil {
		return false
	}
	if state == StateFlat {
		return false
	}
	m.open = &Open{
		Entity:    entity,
		State:     state,
		Relocated: true,
		Origin:    origin,
	}
	return true
}

// Close flattens the open card, releasing the relocation slot. Returns the
// entity that was open so the caller can reset its form and drop any success
// overlay.
func (m *Machine) Close() (string, bool) {
	if m.open == nil {
		return "", false
	}
	entity := m.open.Entity
	m.open = nil
	return entity, true
}

// ShowSuccess marks the open card as displaying the post-submission
// acknowledgement overlay.
func (m *Machine) ShowSuccess() bool {
	if m.open == nil {
		return false
	}
	m.open.ShowingSuccess = true
	return true
}

// DismissSuccess removes the acknowledgement overlay and closes the card
// (the overlay's dismiss control doubles as a close control).
func (m *Machine) DismissSuccess() (string, bool) {
	if m.open == nil || !m.open.ShowingSuccess {
		return "", false
	}
	return m.Close()
}

// RoutePress decides what a pointer press does while a card is open:
// presses inside the open card or on its interactive controls pass through,
// anything else closes the card.
func (m *Machine) RoutePress(insideOpenCard, onInteractiveControl bool) PressAction {
	if m.open == nil {
		return PressFlip
	}
	if insideOpenCard || onInteractiveControl {
		return PressPassThrough
	}
	return PressClose
}

type PressAction int

const (
	// PressFlip: no card open, the press may flip the card it landed on.
	PressFlip PressAction = iota
	// PressPassThrough: press belongs to the open card's controls.
	PressPassThrough
	// PressClose: press outside the open card closes it.
	PressClose
)
