package redirect

import "net/http"

// flashCookie carries the consumed signal across the scrubbing redirect.
// Value is "<kind>:<outcome>", e.g. "tip:success" or "bank:cancel". No
// MaxAge: it is a session cookie, and ConsumeFlash expires it on first
// read.
const flashCookie = "tubetip_flash"

// Kind says which external flow the outcome belongs to, so the page can
// word the banner ("tip received" vs "bank connected").
type Kind string

const (
	KindTip  Kind = "tip"
	KindBank Kind = "bank"
)

// Flash is one consumed redirect signal, ready to render.
type Flash struct {
	Kind    Kind
	Outcome Outcome
}

// SetFlash stores the outcome for the request that follows the scrubbing
// redirect. HttpOnly and Lax for the same reasons as every other cookie
// this server sets.
func SetFlash(w http.ResponseWriter, kind Kind, outcome Outcome) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    string(kind) + ":" + outcome.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ConsumeFlash reads and immediately expires the flash cookie. The second
// call for the same browser finds nothing — this is where the "shown at
// most once" guarantee lives.
func ConsumeFlash(w http.ResponseWriter, r *http.Request) (Flash, bool) {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return Flash{}, false
	}

	// Expire it before anything can re-read it.
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	kind, outcome, ok := splitFlash(cookie.Value)
	if !ok {
		return Flash{}, false
	}
	return Flash{Kind: kind, Outcome: outcome}, true
}

func splitFlash(value string) (Kind, Outcome, bool) {
	for _, kind := range []Kind{KindTip, KindBank} {
		prefix := string(kind) + ":"
		if len(value) > len(prefix) && value[:len(prefix)] == prefix {
			switch value[len(prefix):] {
			case "success":
				return kind, Success, true
			case "cancel":
				return kind, Cancel, true
			}
		}
	}
	return "", None, false
}
