package preview

// State is the lifecycle of a preview for the selected item.
type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateRendered State = "rendered"
	StateErrored  State = "errored"
)

// Session tracks the preview state of one selection on the client side:
// Idle -> Loading -> Rendered | Errored. Render only ever reports the
// terminal half; Loading lives between a Select and the response.
// Errored is final for that load; selecting the item again restarts it.
// A Session is not safe for concurrent use.
type Session struct {
	itemID string
	state  State
}

// Select starts loading itemID, discarding any previous outcome.
func (s *Session) Select(itemID string) {
	s.itemID = itemID
	s.state = StateLoading
}

// Succeed moves a loading selection to Rendered. Results for an item that is
// no longer selected are ignored.
func (s *Session) Succeed(itemID string) bool {
	return s.settle(itemID, StateRendered)
}

// Fail moves a loading selection to Errored.
func (s *Session) Fail(itemID string) bool {
	return s.settle(itemID, StateErrored)
}

func (s *Session) settle(itemID string, to State) bool {
	if s.state != StateLoading || s.itemID != itemID {
		return false
	}
	s.state = to
	return true
}

// Apply settles the selection with a Render result.
func (s *Session) Apply(p Preview) bool {
	if p.State == StateErrored {
		return s.Fail(p.ItemID)
	}
	return s.Succeed(p.ItemID)
}

// State returns the current state; the zero Session is Idle.
func (s *Session) State() State {
	if s.state == "" {
		return StateIdle
	}
	return s.state
}

// Selected returns the selected item ID, empty when idle.
func (s *Session) Selected() string { return s.itemID }
