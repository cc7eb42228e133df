package client

import (
	"log/slog"
	"net/http"
	"net/url"
	"sync"
)

// CookieJar implements http.CookieJar for storing cookies in memory.
// The session cookie issued at login is replayed on every later request to the same host.
type CookieJar struct {
	log *slog.Logger
	mu  sync.Mutex
	jar map[string][]*http.Cookie
}

// NewCookieJar initializes an in-memory cookie jar.
func NewCookieJar(log *slog.Logger) *CookieJar {
	return &CookieJar{
		jar: make(map[string][]*http.Cookie),
		log: log,
		mu:  sync.Mutex{},
	}
}

// SetCookies stores cookies for a given URL. A cookie replaces the stored one with the same
// name, and a cookie with a negative MaxAge deletes it.
func (c *CookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := c.jar[u.Host]
	for _, cookie := range cookies {
		kept := make([]*http.Cookie, 0, len(stored)+1)
		for _, existing := range stored {
			if existing.Name != cookie.Name {
				kept = append(kept, existing)
			}
		}
		stored = kept
		if cookie.MaxAge >= 0 {
			stored = append(stored, cookie)
		}
	}

	c.jar[u.Host] = stored
	c.log.Debug("Set cookies", "host", u.Host, "count", len(stored))
}

// Cookies retrieves cookies for a given URL.
func (c *CookieJar) Cookies(u *url.URL) []*http.Cookie {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.jar[u.Host]
}

// Clear forgets every cookie. It is called on logout.
func (c *CookieJar) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.jar = make(map[string][]*http.Cookie)
}
