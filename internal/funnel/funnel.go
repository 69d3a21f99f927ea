// Package funnel encodes the creator onboarding sequence as a small state
// machine: register → profile details → profile images (optional) → bank
// connection.
//
// Two different things are modelled here and it pays to keep them apart:
//
//   - StepForUser derives WHERE an account stands from its two server-side
//     flags. It is a pure function and the single source of truth — route
//     guards, post-login redirects, and the setup progress indicator all
//     call it instead of re-reading has_profile/is_bank_connected ad hoc.
//   - Advance encodes WHICH transitions exist. The funnel is forward-only:
//     no event ever decreases completeness, which is what makes every
//     completed-step gate safe to enforce as "never re-enterable".
//
// NeedsImages is the odd one out: it is a client-only sub-step, reached
// only by explicit navigation after submitting profile details, and it is
// NOT derivable from the User record — an account that left the images
// page is simply at NeedsBank.
package funnel

import (
	"fmt"

	"github.com/tubetip/tubetip/internal/model"
)

// Step is a position in the onboarding funnel.
type Step int

const (
	// Anonymous: no account yet.
	Anonymous Step = iota
	// NeedsProfile: registered, profile details not yet submitted.
	NeedsProfile
	// NeedsImages: optional client-only sub-step after profile details.
	NeedsImages
	// NeedsBank: profile exists, bank connection outstanding.
	NeedsBank
	// Done: fully onboarded, profile can accept tips.
	Done
	// DoneUnconnected: the creator chose "later" at the bank step. A valid
	// steady state — the profile is live but tipping is disabled, and a
	// persistent banner offers the bank connection. Unlike the gated setup
	// steps this one IS re-enterable.
	DoneUnconnected
)

func (s Step) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case NeedsProfile:
		return "needs_profile"
	case NeedsImages:
		return "needs_images"
	case NeedsBank:
		return "needs_bank"
	case Done:
		return "done"
	case DoneUnconnected:
		return "done_unconnected"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Event is something that happened which may move the funnel forward.
type Event int

const (
	Registered Event = iota
	ProfileSubmitted
	ImagesSubmitted
	ImagesSkipped
	BankConnected
	BankDeferred
)

func (e Event) String() string {
	switch e {
	case Registered:
		return "registered"
	case ProfileSubmitted:
		return "profile_submitted"
	case ImagesSubmitted:
		return "images_submitted"
	case ImagesSkipped:
		return "images_skipped"
	case BankConnected:
		return "bank_connected"
	case BankDeferred:
		return "bank_deferred"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// StepForUser derives the funnel position from an account record. nil
// means nobody is logged in. NeedsImages is never returned — it only
// exists between an explicit navigation and leaving the page.
func StepForUser(user *model.User) Step {
	switch {
	case user == nil:
		return Anonymous
	case !user.HasProfile:
		return NeedsProfile
	case !user.IsBankConnected:
		return NeedsBank
	default:
		return Done
	}
}

// transitions is the complete forward-only table. Anything absent is
// invalid.
var transitions = map[Step]map[Event]Step{
	Anonymous: {
		Registered: NeedsProfile,
	},
	NeedsProfile: {
		ProfileSubmitted: NeedsImages,
		// Skipping the images page entirely goes straight to the bank step.
		ImagesSkipped: NeedsBank,
	},
	NeedsImages: {
		ImagesSubmitted: NeedsBank,
		ImagesSkipped:   NeedsBank,
	},
	NeedsBank: {
		BankConnected: Done,
		BankDeferred:  DoneUnconnected,
	},
	DoneUnconnected: {
		// The banner's path back in — the one legal "re-entry".
		BankConnected: Done,
	},
}

// Advance applies an event to a step. Unknown pairs — above all anything
// that would move backwards — return the unchanged step and an error.
func Advance(from Step, ev Event) (Step, error) {
	if next, ok := transitions[from][ev]; ok {
		return next, nil
	}
	return from, fmt.Errorf("funnel: no transition from %s on %s", from, ev)
}

// Complete reports whether the step is one of the two terminal states.
func Complete(s Step) bool {
	return s == Done || s == DoneUnconnected
}
