package pagination

// Controller owns the pagination State of one section. It is not safe for
// concurrent use; the owning session serialises access.
type Controller struct {
	state State
}

// NewController returns a controller on page 1 with the given page size.
func NewController(pageSize int) *Controller {
	return &Controller{state: NewState(pageSize)}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// Update merges p into the state. It returns the request to issue and true
// when the page or size actually changed and both are non-zero; otherwise the
// merge is recorded and no fetch is due.
func (c *Controller) Update(p Patch) (Request, bool) {
	prev := c.state
	if p.CurrentPage != nil {
		c.state.CurrentPage = *p.CurrentPage
	}
	if p.PageSize != nil {
		c.state.PageSize = *p.PageSize
	}

	changed := prev.CurrentPage != c.state.CurrentPage || prev.PageSize != c.state.PageSize
	if !changed || !c.state.Ready() {
		return Request{}, false
	}
	return c.state.Request(), true
}

// Settle applies server metadata from a successful fetch. Zero page or size in
// the metadata keeps the local value.
func (c *Controller) Settle(m Meta) {
	if m.CurrentPage > 0 {
		c.state.CurrentPage = m.CurrentPage
	}
	if m.PageSize > 0 {
		c.state.PageSize = m.PageSize
	}
	c.state.TotalCount = m.TotalCount
	c.state.TotalPages = m.TotalPages
}
