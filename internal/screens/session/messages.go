package session

// loadedMsg is sent when the controller finished loading the task.
type loadedMsg struct {
	Err error
}

// advancedMsg is sent when the final Advance (and its completion call)
// has returned.
type advancedMsg struct{}
