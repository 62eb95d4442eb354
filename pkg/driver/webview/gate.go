package webview

import "sync"

// gate holds scripts until the page they target has loaded. SetHtml
// returns before the new document exists, so a script evaluated right
// after it runs against the previous page.
type gate struct {
	mu      sync.Mutex
	open    bool
	pending []string
}

// reset closes the gate for a new page. Held scripts are dropped: the new
// page is rendered from the current document and already reflects them.
func (g *gate) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = false
	g.pending = nil
}

// admit reports whether script may run now. Otherwise it is held.
func (g *gate) admit(script string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		return true
	}
	g.pending = append(g.pending, script)
	return false
}

// release opens the gate and returns the held scripts in order.
func (g *gate) release() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = true
	held := g.pending
	g.pending = nil
	return held
}
