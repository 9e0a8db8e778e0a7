// Package webadapter provides the browser-only services a native core
// imports: colored console output, URI component encoding, the user agent
// string, blocking alert and confirm prompts, synchronous HTTP fetches and
// a table of one-shot pseudo-signal handlers.
//
// Every service has two backends. Under js/wasm the browser does the work
// through syscall/js. Everywhere else a native equivalent is used:
//
//	LogColored          24-bit ANSI color on terminals, plain text otherwise
//	UserAgent           the fixed placeholder "Undefined User Agent"
//	DisplayAlert        a native message box, or a log line when headless
//	FetchSync           an HTTP client with a per-request timeout
//
// # Fetch status
//
// FetchSync returns the HTTP status of a completed transfer. StatusFailed
// (-1) is returned when the request cannot be opened or sent, when the
// response is incomplete or has no readable body, and when the progress
// callback aborts the transfer. An empty body is a valid response.
//
// # Signals
//
// A Signals table holds at most one handler per signal number. Raising a
// signal invokes its handler once and clears the slot, so a handler must
// re-register itself to observe the next raise.
package webadapter
