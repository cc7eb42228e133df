package client

import (
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const maxRedirects = 10

var ErrTooManyRedirects = errors.New("stopped after too many redirects")

// CreateHTTPClient initializes an HTTP client with a custom cookie jar.
// A zero timeout leaves requests bounded only by their context.
func CreateHTTPClient(log *slog.Logger, timeout time.Duration) *http.Client {
	jar := NewCookieJar(log)

	return &http.Client{
		Jar:     jar,
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return ErrTooManyRedirects
			}
			log.Debug("Redirected to URL", "URL", req.URL)

			return nil
		},
	}
}
