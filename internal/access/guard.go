// Package access decides, for every navigation, whether the page renders,
// waits, or redirects.
//
// The whole policy is one pure function: Evaluate(snapshot, path, groups).
// No HTTP, no router, no hidden read of "the current location" — the path
// comes in as an argument, the session comes in as an immutable snapshot,
// and the answer comes out as a value. The chi adapter in middleware.go is
// the only place that touches the framework.
//
// TWO RULES EVERYTHING ELSE HANGS OFF:
//
//  1. Never redirect while identity is unresolved. While the snapshot is
//     still loading, the only legal decisions are "render a public page"
//     or "show the loading state". Redirecting a not-yet-resolved session
//     would bounce every authenticated user to /login on every refresh.
//
//  2. Completed steps are never re-enterable. The setup and bank-connect
//     gates are idempotent and one-directional: once has_profile or
//     is_bank_connected is true, their pages redirect to the creator's own
//     profile. That is what prevents duplicate profile or bank-connect
//     submissions, so the gates — not ad hoc page logic — are authoritative.
package access

import (
	"github.com/tubetip/tubetip/internal/session"
)

// Route paths the guard needs to know about. The profile page itself is
// "/{username}" and is always public.
const (
	PathLogin             = "/login"
	PathRegister          = "/register"
	PathProfileSetup      = "/profile/setup"
	PathSetupPictures     = "/profile/setup/pictures"
	PathSetupConfirmation = "/profile/setup/confirmation"
	PathConnectBank       = "/bank/connect"
	PathConnectSuccess    = "/bank/connect/success"
)

// OwnProfilePath is where a fully-set-up creator gets sent.
func OwnProfilePath(username string) string {
	return "/" + username
}

// Action is what the caller should do with the request.
type Action int

const (
	// Allow: render the page.
	Allow Action = iota
	// ShowLoading: identity unresolved; render the loading state, decide
	// nothing.
	ShowLoading
	// Redirect: send the client to Decision.Target, replacing history.
	Redirect
)

// Decision is the guard's verdict for one navigation.
type Decision struct {
	Action Action
	Target string // set iff Action == Redirect
}

func allow() Decision             { return Decision{Action: Allow} }
func loading() Decision           { return Decision{Action: ShowLoading} }
func redirect(to string) Decision { return Decision{Action: Redirect, Target: to} }

// Group is one composable gate. Routes declare the groups that wrap them;
// Evaluate applies them in order.
type Group int

const (
	// Public: no gate at all.
	Public Group = iota
	// UnauthenticatedOnly: login/register. Anyone with an account gets
	// forwarded to wherever their funnel stands instead.
	UnauthenticatedOnly
	// PrivateAny: requires some authenticated user, and pushes accounts
	// without a profile back to setup (except on the setup pages
	// themselves).
	PrivateAny
	// ProfileSetupGate: the setup page itself — forbidden once the profile
	// exists.
	ProfileSetupGate
	// ConnectBankGate: the bank-connect page — forbidden once connected.
	ConnectBankGate
)

// Evaluate runs the given gates against a session snapshot and a requested
// path, returning the first non-allow decision. With no groups (or only
// Public) everything renders, loading or not.
func Evaluate(snap session.Snapshot, path string, groups ...Group) Decision {
	for _, g := range groups {
		if d := evaluateOne(g, snap, path); d.Action != Allow {
			return d
		}
	}
	return allow()
}

func evaluateOne(g Group, snap session.Snapshot, path string) Decision {
	if g == Public {
		return allow()
	}

	// Identity unknown: no gate may redirect yet.
	if snap.LoadingUser {
		return loading()
	}

	user := snap.User

	switch g {
	case UnauthenticatedOnly:
		switch {
		case user == nil:
			return allow()
		case !user.HasProfile:
			// Mid-funnel: forward motion toward the next incomplete step.
			return redirect(PathProfileSetup)
		case !user.IsBankConnected:
			return redirect(PathConnectBank)
		default:
			return redirect(OwnProfilePath(user.Username))
		}

	case PrivateAny:
		if user == nil {
			return redirect(PathLogin)
		}
		// An account with no profile yet may only be on the setup pages.
		if !user.HasProfile && path != PathProfileSetup && path != PathSetupConfirmation {
			return redirect(PathProfileSetup)
		}
		return allow()

	case ProfileSetupGate:
		if user != nil && user.HasProfile {
			// Step already complete — cannot redo it.
			return redirect(OwnProfilePath(user.Username))
		}
		return allow()

	case ConnectBankGate:
		if user != nil && user.IsBankConnected {
			return redirect(OwnProfilePath(user.Username))
		}
		return allow()
	}

	return allow()
}
