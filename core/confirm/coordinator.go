// Package confirm owns the process-wide delete-confirmation state:
// any caller can request a confirmation without owning prompt state itself,
// and a single subscriber renders the one visible prompt.
package confirm

import "sync"

// Defaults shown when a request does not set its own text.
const (
	DefaultTitle       = "Delete Confirmation"
	DefaultDescription = "Are you sure you want to delete this item? This action cannot be undone."
)

// Request is one pending confirmation. OnConfirm and OnCancel each fire at
// most once and are mutually exclusive; dismissal routes through OnCancel.
type Request struct {
	Title       string
	Description string
	OnConfirm   func()
	OnCancel    func()
}

// Coordinator serializes confirmations: at most one request is open at a
// time process-wide. A new request while one is open replaces it and cancels
// the replaced request (its OnCancel fires), so no request's callbacks are
// ever silently dropped.
//
// Callbacks are invoked after the coordinator has fully closed the request,
// so re-entrant calls to RequestConfirmation from inside a callback open a
// fresh, independent confirmation.
type Coordinator struct {
	mu      sync.Mutex
	pending *Request
	show    func(Request)
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Subscribe registers the single renderer notified on each open request.
// Exactly one subscriber owns rendering; a second Subscribe is a wiring bug.
func (c *Coordinator) Subscribe(show func(Request)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.show != nil {
		panic("confirm: coordinator already has a subscriber")
	}
	c.show = show
}

// RequestConfirmation opens a confirmation and returns immediately; the
// coordinator owns subsequent prompt rendering and callback dispatch.
func (c *Coordinator) RequestConfirmation(req Request) {
	if c == nil {
		panic("confirm: coordinator is not wired")
	}
	if req.Title == "" {
		req.Title = DefaultTitle
	}
	if req.Description == "" {
		req.Description = DefaultDescription
	}

	c.mu.Lock()
	replaced := c.pending
	c.pending = &req
	show := c.show
	c.mu.Unlock()

	if replaced != nil && replaced.OnCancel != nil {
		replaced.OnCancel()
	}
	if show != nil {
		show(req)
	}
}

// Confirm resolves the open request, firing its OnConfirm exactly once.
// It reports whether a request was open.
func (c *Coordinator) Confirm() bool {
	req := c.take()
	if req == nil {
		return false
	}
	if req.OnConfirm != nil {
		req.OnConfirm()
	}
	return true
}

// Cancel resolves the open request, firing its OnCancel exactly once.
// It reports whether a request was open.
func (c *Coordinator) Cancel() bool {
	req := c.take()
	if req == nil {
		return false
	}
	if req.OnCancel != nil {
		req.OnCancel()
	}
	return true
}

// Dismiss is a cancellation without an explicit button press
// (backdrop click, escape).
func (c *Coordinator) Dismiss() bool { return c.Cancel() }

// IsOpen reports whether a confirmation is currently pending.
func (c *Coordinator) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// Pending returns the open request's display content, if any.
func (c *Coordinator) Pending() (title, description string, open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return "", "", false
	}
	return c.pending.Title, c.pending.Description, true
}

// take closes the open request before its callback runs; this is what makes
// callback dispatch at-most-once and re-entrant requests safe.
func (c *Coordinator) take() *Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	req := c.pending
	c.pending = nil
	return req
}
