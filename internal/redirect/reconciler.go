// Package redirect reconciles the client's return from an external,
// redirect-based flow (Stripe Checkout for tips, Stripe Connect for bank
// onboarding).
//
// The entire wire contract with the processor is one query parameter on
// the return URL: result=success or result=cancel. The signal is strictly
// one-shot — it appears once when the browser lands back on the page, is
// consumed exactly once, and is scrubbed from the URL so that neither a
// refresh nor back-navigation can re-fire it.
//
// Interpret and Scrub are pure; the HTTP half of the contract lives in
// flash.go: the handler sets a one-shot flash cookie and answers with a
// history-REPLACING redirect to the scrubbed URL (303), which is this
// server's equivalent of the SPA's replaceState. The follow-up request
// consumes the cookie and shows the banner; visiting the page again shows
// nothing.
package redirect

import "net/url"

// ResultParam is the query parameter the processor's return redirect
// carries.
const ResultParam = "result"

// Outcome is what the redirect signal said, if anything.
type Outcome int

const (
	// None: no signal present, or an unrecognized value — both no-ops.
	None Outcome = iota
	Success
	Cancel
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Cancel:
		return "cancel"
	default:
		return "none"
	}
}

// Interpret reads the one-shot signal out of a query string. Anything
// other than the two recognized values — including an absent parameter —
// is None. An unrecognized value is deliberately NOT an error: the query
// string is attacker-writable, and garbage in it must not break the page.
func Interpret(query url.Values) Outcome {
	switch query.Get(ResultParam) {
	case "success":
		return Success
	case "cancel":
		return Cancel
	default:
		return None
	}
}

// Scrub returns a copy of u with the result parameter removed, but only
// when it held a recognized value — an unrecognized value is treated as
// absence and left alone. The original URL is never mutated.
func Scrub(u *url.URL) *url.URL {
	clean := *u
	query := clean.Query()

	if Interpret(query) == None {
		return &clean
	}

	query.Del(ResultParam)
	clean.RawQuery = query.Encode()
	return &clean
}
