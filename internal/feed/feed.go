// Package feed loads a public profile and paginates its tip list with
// "load more" semantics.
//
// Pagination is plain limit/offset against a backend that never reports a
// total: a short page is the only exhaustion signal, so hasMore is derived
// as "the last page came back full". The offset advances by exactly the
// limit that was requested — requesting limit 15 and advancing by 8, as an
// earlier incarnation of this page did, silently re-fetches seven tips per
// page. There is no dedup guard downstream; the feed owns offset
// monotonicity so its callers cannot get it wrong.
//
// STALE RESPONSES:
// Nothing cancels an in-flight fetch when the viewer navigates to another
// profile. Instead every Reset bumps a generation counter and a response
// is applied only if its generation is still current — a late page for the
// previous profile is dropped on the floor rather than clobbering the new
// one.
package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/tubetip/tubetip/internal/model"
)

// DefaultPageSize is what the profile page requests per "load more".
const DefaultPageSize = 15

// Loader is the slice of the backend client the feed needs.
type Loader interface {
	ProfileByUsername(ctx context.Context, username string) (*model.Profile, error)
	Tips(ctx context.Context, profileID int64, limit, offset int) ([]model.Tip, error)
}

// Page is one fetched slice of the tip list.
type Page struct {
	Tips []model.Tip
	// HasMore is derived: a full page means there may be more, a short
	// page means exhaustion.
	HasMore bool
	// NextOffset is where the following page starts.
	NextOffset int
}

// Feed is the stateful paginator for one viewer's walk through a profile.
type Feed struct {
	loader Loader
	limit  int

	mu       sync.Mutex
	gen      int
	username string
	profile  *model.Profile
	tips     []model.Tip
	offset   int
	hasMore  bool
}

// New creates a Feed. limit <= 0 falls back to DefaultPageSize.
func New(loader Loader, limit int) *Feed {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return &Feed{loader: loader, limit: limit, hasMore: true}
}

// Reset points the feed at a profile and discards everything loaded so
// far. Responses from fetches started before the Reset will be ignored.
func (f *Feed) Reset(username string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.gen++
	f.username = username
	f.profile = nil
	f.tips = nil
	f.offset = 0
	f.hasMore = true
}

// LoadProfile fetches the profile the feed currently points at, seeding
// the tip list with the first page the profile response embeds. A
// NotFound error passes through untouched — the page renders a dedicated
// "no such profile" state from it.
func (f *Feed) LoadProfile(ctx context.Context) (*model.Profile, error) {
	f.mu.Lock()
	gen, username := f.gen, f.username
	f.mu.Unlock()

	if username == "" {
		return nil, fmt.Errorf("feed: no username set, call Reset first")
	}

	profile, err := f.loader.ProfileByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("feed: loading profile %s: %w", username, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		// The viewer has moved on; this response is for a previous
		// profile.
		return profile, nil
	}

	f.profile = profile
	f.tips = append([]model.Tip(nil), profile.Tips...)
	f.offset = len(profile.Tips)
	f.hasMore = len(profile.Tips) < profile.NumberOfTips
	return profile, nil
}

// LoadMore appends the next page of tips. Call it only while HasMore()
// holds; past exhaustion it is a cheap no-op returning an empty page.
func (f *Feed) LoadMore(ctx context.Context) (Page, error) {
	f.mu.Lock()
	if f.profile == nil {
		f.mu.Unlock()
		return Page{}, fmt.Errorf("feed: profile not loaded")
	}
	if !f.hasMore {
		f.mu.Unlock()
		return Page{NextOffset: f.offset}, nil
	}
	gen, profileID, offset := f.gen, f.profile.ID, f.offset
	f.mu.Unlock()

	page, err := f.fetchPage(ctx, profileID, offset)
	if err != nil {
		return Page{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		return page, nil
	}

	f.tips = append(f.tips, page.Tips...)
	f.offset = page.NextOffset
	f.hasMore = page.HasMore
	return page, nil
}

// LoadPage fetches one page at an explicit offset without touching the
// feed's own cursor. The load-more HTTP endpoint uses this: the browser
// carries the offset, the derivation of HasMore stays in one place.
func (f *Feed) LoadPage(ctx context.Context, profileID int64, offset int) (Page, error) {
	if offset < 0 {
		return Page{}, fmt.Errorf("feed: negative offset %d", offset)
	}
	return f.fetchPage(ctx, profileID, offset)
}

func (f *Feed) fetchPage(ctx context.Context, profileID int64, offset int) (Page, error) {
	tips, err := f.loader.Tips(ctx, profileID, f.limit, offset)
	if err != nil {
		return Page{}, fmt.Errorf("feed: loading tips at offset %d: %w", offset, err)
	}
	return Page{
		Tips:       tips,
		HasMore:    len(tips) == f.limit,
		NextOffset: offset + f.limit,
	}, nil
}

// Tips returns everything loaded so far, oldest page first, most recent
// tip first within the full list (backend order).
func (f *Feed) Tips() []model.Tip {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Tip(nil), f.tips...)
}

// HasMore reports whether another LoadMore could yield tips.
func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

// Profile returns the loaded profile, or nil.
func (f *Feed) Profile() *model.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile
}
