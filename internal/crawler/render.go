package crawler

import (
	"errors"
	"time"
)

// ErrRenderingUnavailable is returned by NoopRenderer.
var ErrRenderingUnavailable = errors.New("rendering fallback unavailable")

// Renderer fetches fully rendered HTML for pages behind JavaScript anti-bot
// checks. It is invoked only when a direct fetch returns HTTP 403. A real
// implementation drives a headless browser; environments without one inject
// NoopRenderer.
type Renderer interface {
	Render(url string, timeout time.Duration) (string, error)
}

// NoopRenderer is the default Renderer for environments without a browser.
type NoopRenderer struct{}

// Render always reports the fallback as unavailable.
func (NoopRenderer) Render(string, time.Duration) (string, error) {
	return "", ErrRenderingUnavailable
}
