package funnel

import (
	"testing"

	"github.com/tubetip/tubetip/internal/model"
)

func TestStepForUser(t *testing.T) {
	tests := []struct {
		name string
		user *model.User
		want Step
	}{
		{"nobody logged in", nil, Anonymous},
		{"fresh account", &model.User{}, NeedsProfile},
		{"profile only", &model.User{HasProfile: true}, NeedsBank},
		{"fully onboarded", &model.User{HasProfile: true, IsBankConnected: true}, Done},
		// An account can never be bank-connected without a profile server-side,
		// but if the backend ever said so, the profile step still comes first.
		{"bank without profile", &model.User{IsBankConnected: true}, NeedsProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StepForUser(tt.user); got != tt.want {
				t.Errorf("StepForUser() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStepForUser_NeverDerivesImages(t *testing.T) {
	// NeedsImages is reached only by explicit navigation; no User record
	// can produce it.
	users := []*model.User{
		nil,
		{},
		{HasProfile: true},
		{HasProfile: true, IsBankConnected: true},
	}
	for _, u := range users {
		if StepForUser(u) == NeedsImages {
			t.Errorf("StepForUser(%+v) derived NeedsImages", u)
		}
	}
}

func TestAdvance_HappyPath(t *testing.T) {
	steps := []struct {
		from Step
		ev   Event
		want Step
	}{
		{Anonymous, Registered, NeedsProfile},
		{NeedsProfile, ProfileSubmitted, NeedsImages},
		{NeedsImages, ImagesSubmitted, NeedsBank},
		{NeedsBank, BankConnected, Done},
	}

	for _, tt := range steps {
		got, err := Advance(tt.from, tt.ev)
		if err != nil {
			t.Fatalf("Advance(%v, %v) error = %v", tt.from, tt.ev, err)
		}
		if got != tt.want {
			t.Errorf("Advance(%v, %v) = %v, want %v", tt.from, tt.ev, got, tt.want)
		}
	}
}

func TestAdvance_ImagesAreSkippable(t *testing.T) {
	// Skipping from the images page and never visiting it land in the same
	// place.
	fromImages, err := Advance(NeedsImages, ImagesSkipped)
	if err != nil {
		t.Fatalf("Advance(NeedsImages, ImagesSkipped) error = %v", err)
	}
	fromProfile, err := Advance(NeedsProfile, ImagesSkipped)
	if err != nil {
		t.Fatalf("Advance(NeedsProfile, ImagesSkipped) error = %v", err)
	}
	if fromImages != NeedsBank || fromProfile != NeedsBank {
		t.Errorf("skip paths diverge: %v vs %v, both want NeedsBank", fromImages, fromProfile)
	}
}

func TestAdvance_DeferredBankIsSteadyButReenterable(t *testing.T) {
	deferred, err := Advance(NeedsBank, BankDeferred)
	if err != nil {
		t.Fatalf("Advance(NeedsBank, BankDeferred) error = %v", err)
	}
	if deferred != DoneUnconnected {
		t.Fatalf("deferred = %v, want DoneUnconnected", deferred)
	}
	if !Complete(deferred) {
		t.Error("DoneUnconnected should count as a terminal steady state")
	}

	// The banner path: DoneUnconnected can still reach Done.
	connected, err := Advance(deferred, BankConnected)
	if err != nil {
		t.Fatalf("Advance(DoneUnconnected, BankConnected) error = %v", err)
	}
	if connected != Done {
		t.Errorf("banner reconnection = %v, want Done", connected)
	}
}

// Forward-only: no event may ever move a step backwards.
func TestAdvance_NeverMovesBackwards(t *testing.T) {
	order := map[Step]int{
		Anonymous:       0,
		NeedsProfile:    1,
		NeedsImages:     2,
		NeedsBank:       3,
		DoneUnconnected: 4,
		Done:            5,
	}

	allSteps := []Step{Anonymous, NeedsProfile, NeedsImages, NeedsBank, Done, DoneUnconnected}
	allEvents := []Event{Registered, ProfileSubmitted, ImagesSubmitted, ImagesSkipped, BankConnected, BankDeferred}

	for _, from := range allSteps {
		for _, ev := range allEvents {
			next, err := Advance(from, ev)
			if err != nil {
				if next != from {
					t.Errorf("Advance(%v, %v) errored but changed the step to %v", from, ev, next)
				}
				continue
			}
			if order[next] < order[from] {
				t.Errorf("Advance(%v, %v) = %v moved backwards", from, ev, next)
			}
		}
	}
}

func TestAdvance_DoneIsTerminal(t *testing.T) {
	for _, ev := range []Event{Registered, ProfileSubmitted, ImagesSubmitted, ImagesSkipped, BankConnected, BankDeferred} {
		if next, err := Advance(Done, ev); err == nil {
			t.Errorf("Advance(Done, %v) = %v, want error — Done accepts no events", ev, next)
		}
	}
}
