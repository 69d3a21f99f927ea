package model

import "time"

// Profile is a creator's public tipping page, keyed by username.
//
// Everything here is read-only from the client's point of view unless the
// viewer is the profile's own creator, in which case edits flow back through
// the profile update endpoint and the session's User projection (display
// name, bio, picture) mirrors them.
type Profile struct {
	ID                 int64     `json:"id"`
	CreatorID          int64     `json:"creator_id"`
	DisplayName        string    `json:"display_name"`
	Bio                string    `json:"bio"`
	YoutubeChannelName string    `json:"youtube_channel_name"`
	Currency           string    `json:"currency"`
	IsBankConnected    bool      `json:"is_bank_connected"`
	Tips               []Tip     `json:"tips"`
	NumberOfTips       int       `json:"number_of_tips"`
	ProfilePictureURL  string    `json:"profile_picture_url,omitempty"`
	ProfileBannerURL   string    `json:"profile_banner_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// ProfileDetails is the form payload for creating or updating a profile.
// Zero-value fields are omitted on update so the backend leaves them alone.
type ProfileDetails struct {
	DisplayName        string
	Bio                string
	YoutubeChannelName string
}

// Tip is a single payment event from a supporter to a creator.
//
// Amount is in minor currency units (pence, cents). Tips are immutable once
// created server-side — the client only ever appends pages of them.
//
// The isPrivate JSON key is camelCase because that is what the backend
// emits for this one field; the rest of the API is snake_case.
type Tip struct {
	ID        int64     `json:"id"`
	Amount    int64     `json:"amount"`
	Name      string    `json:"name,omitempty"`
	Message   string    `json:"message,omitempty"`
	IsPrivate bool      `json:"isPrivate"`
	CreatedAt time.Time `json:"created_at"`
}
