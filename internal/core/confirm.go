package core

// Confirmation is a two-state machine guarding a destructive action. It is
// either idle or pending on a single token; a new request replaces the
// pending token.
type Confirmation[T comparable] struct {
	token   T
	pending bool
}

// Request moves the machine to pending(token), replacing any earlier token.
func (c *Confirmation[T]) Request(token T) {
	c.token = token
	c.pending = true
}

// Pending returns the pending token, if any, without changing state.
func (c *Confirmation[T]) Pending() (T, bool) {
	return c.token, c.pending
}

// Take returns the pending token and resets the machine to idle. Confirm
// paths call it so the machine is idle whatever the action's outcome.
func (c *Confirmation[T]) Take() (T, bool) {
	token, ok := c.token, c.pending
	c.reset()
	return token, ok
}

// Cancel resets the machine to idle and reports whether anything was pending.
func (c *Confirmation[T]) Cancel() bool {
	was := c.pending
	c.reset()
	return was
}

func (c *Confirmation[T]) reset() {
	var zero T
	c.token = zero
	c.pending = false
}
