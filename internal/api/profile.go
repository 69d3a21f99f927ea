package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/tubetip/tubetip/internal/model"
)

// Upload is an image file attached to a profile create/update request.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// CreateProfile submits the creator's page details, optionally with a
// profile picture and banner. The backend takes this as multipart form
// data because images may ride along with the text fields.
func (c *Client) CreateProfile(ctx context.Context, pair TokenPair, details model.ProfileDetails, picture, banner *Upload) (*model.Profile, error) {
	body, contentType, err := profileForm(details, picture, banner)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/creator/profile/create", pair, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var profile model.Profile
	if err := c.do(req, &profile, "profile"); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile patches an existing profile. Empty detail fields are left
// out of the form so the backend does not blank them; nil uploads mean
// "keep the current image".
func (c *Client) UpdateProfile(ctx context.Context, pair TokenPair, details model.ProfileDetails, picture, banner *Upload) (*model.Profile, error) {
	body, contentType, err := profileForm(details, picture, banner)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPatch, "/creator/profile/update", pair, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var profile model.Profile
	if err := c.do(req, &profile, "profile"); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ProfileByUsername fetches a creator's public page. Unknown usernames
// come back as apperror.ErrNotFound — callers render a dedicated
// "no such profile" page, not a generic failure.
func (c *Client) ProfileByUsername(ctx context.Context, username string) (*model.Profile, error) {
	var profile model.Profile
	path := "/creator/profile/username/" + url.PathEscape(username)
	if err := c.getJSON(ctx, path, TokenPair{}, &profile, "profile"); err != nil {
		return nil, err
	}
	return &profile, nil
}

// profileForm assembles the multipart body shared by create and update.
func profileForm(details model.ProfileDetails, picture, banner *Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"display_name":         details.DisplayName,
		"bio":                  details.Bio,
		"youtube_channel_name": details.YoutubeChannelName,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("api: writing form field %s: %w", name, err)
		}
	}

	uploads := map[string]*Upload{
		"profile_picture": picture,
		"profile_banner":  banner,
	}
	for name, up := range uploads {
		if up == nil {
			continue
		}
		part, err := w.CreateFormFile(name, up.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("api: attaching %s: %w", name, err)
		}
		if _, err := io.Copy(part, up.Reader); err != nil {
			return nil, "", fmt.Errorf("api: reading %s: %w", name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("api: finalising profile form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
