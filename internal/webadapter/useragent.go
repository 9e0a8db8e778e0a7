package webadapter

import "sync"

// FallbackUserAgent is reported when no browser is present.
const FallbackUserAgent = "Undefined User Agent"

var (
	userAgentOnce sync.Once
	userAgent     string
)

// UserAgent returns the browser's navigator.userAgent, or
// FallbackUserAgent outside a browser. The value is read once.
func UserAgent() string {
	userAgentOnce.Do(func() {
		userAgent = hostUserAgent()
		if userAgent == "" {
			userAgent = FallbackUserAgent
		}
	})
	return userAgent
}
