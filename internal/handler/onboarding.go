package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tubetip/tubetip/internal/access"
	"github.com/tubetip/tubetip/internal/api"
	"github.com/tubetip/tubetip/internal/apperror"
	"github.com/tubetip/tubetip/internal/auth"
	"github.com/tubetip/tubetip/internal/model"
)

// maxUploadBytes caps profile picture/banner uploads at 8 MiB each.
const maxUploadBytes = 8 << 20

// OnboardingHandler walks a new creator through the funnel: profile
// details, pictures (skippable), confirmation, and the bank connection.
type OnboardingHandler struct {
	renderer *Renderer
	client   *api.Client
	logger   *slog.Logger
}

// NewOnboardingHandler creates an OnboardingHandler.
func NewOnboardingHandler(renderer *Renderer, client *api.Client, logger *slog.Logger) *OnboardingHandler {
	return &OnboardingHandler{renderer: renderer, client: client, logger: logger}
}

// ShowSetup renders the profile-details form.
//
// HTTP: GET /profile/setup
func (h *OnboardingHandler) ShowSetup(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "profile_setup", View{
		Title: "Set up your profile",
		User:  viewer(r),
	})
}

// HandleSetup creates the creator profile and moves the funnel forward to
// the pictures step.
//
// HTTP: POST /profile/setup (form-encoded)
func (h *OnboardingHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	details := model.ProfileDetails{
		DisplayName:        strings.TrimSpace(r.PostFormValue("display_name")),
		Bio:                strings.TrimSpace(r.PostFormValue("bio")),
		YoutubeChannelName: strings.TrimSpace(r.PostFormValue("youtube_channel_name")),
	}

	form := map[string]string{
		"display_name":         details.DisplayName,
		"bio":                  details.Bio,
		"youtube_channel_name": details.YoutubeChannelName,
	}
	if details.DisplayName == "" {
		h.renderer.Render(w, http.StatusUnprocessableEntity, "profile_setup", View{
			Title: "Set up your profile", User: viewer(r),
			Errors: map[string]string{"display_name": "display name is required"},
			Form:   form,
		})
		return
	}

	backend := auth.BackendFromContext(r.Context())
	if _, err := h.client.CreateProfile(r.Context(), backend.Pair(), details, nil, nil); err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			h.renderer.Render(w, http.StatusUnprocessableEntity, "profile_setup", View{
				Title: "Set up your profile", User: viewer(r),
				Errors: fieldErrors(err), Form: form,
			})
			return
		}
		h.logger.Error("creating profile", slog.String("error", err.Error()))
		h.renderer.Render(w, http.StatusBadGateway, "profile_setup", View{
			Title: "Set up your profile", User: viewer(r),
			Errors: map[string]string{"form": "something went wrong, try again"},
			Form:   form,
		})
		return
	}

	// The profile now exists; update the in-request snapshot so redirects
	// computed later this request see the new funnel position.
	if user := viewer(r); user != nil {
		user.HasProfile = true
		auth.StoreFromContext(r.Context()).SetUser(user)
	}

	http.Redirect(w, r, access.PathSetupPictures, http.StatusSeeOther)
}

// ShowPictures renders the optional pictures step.
//
// HTTP: GET /profile/setup/pictures
func (h *OnboardingHandler) ShowPictures(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "setup_pictures", View{
		Title: "Add your pictures",
		User:  viewer(r),
	})
}

// HandlePictures uploads the profile picture and banner. Both fields are
// optional — submitting the empty form behaves like skipping.
//
// HTTP: POST /profile/setup/pictures (multipart)
func (h *OnboardingHandler) HandlePictures(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(2 * maxUploadBytes); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	picture := formUpload(r, "profile_picture")
	banner := formUpload(r, "profile_banner")

	if picture != nil || banner != nil {
		backend := auth.BackendFromContext(r.Context())
		_, err := h.client.UpdateProfile(r.Context(), backend.Pair(), model.ProfileDetails{}, picture, banner)
		if err != nil {
			if errors.Is(err, apperror.ErrValidation) {
				h.renderer.Render(w, http.StatusUnprocessableEntity, "setup_pictures", View{
					Title: "Add your pictures", User: viewer(r),
					Errors: fieldErrors(err),
				})
				return
			}
			h.logger.Error("uploading pictures", slog.String("error", err.Error()))
			h.renderer.Render(w, http.StatusBadGateway, "setup_pictures", View{
				Title: "Add your pictures", User: viewer(r),
				Errors: map[string]string{"form": "upload failed, try again"},
			})
			return
		}
	}

	http.Redirect(w, r, access.PathSetupConfirmation, http.StatusSeeOther)
}

// HandlePicturesSkip moves past the pictures step without uploading.
//
// HTTP: POST /profile/setup/pictures/skip
func (h *OnboardingHandler) HandlePicturesSkip(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, access.PathSetupConfirmation, http.StatusSeeOther)
}

// ShowConfirmation renders the "profile created" interstitial that offers
// the bank connection.
//
// HTTP: GET /profile/setup/confirmation
func (h *OnboardingHandler) ShowConfirmation(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "setup_confirmation", View{
		Title: "You're almost there",
		User:  viewer(r),
	})
}

// ShowConnectBank renders the bank-connect form (country selection).
//
// HTTP: GET /bank/connect
func (h *OnboardingHandler) ShowConnectBank(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "connect_bank", View{
		Title: "Connect your bank",
		User:  viewer(r),
	})
}

// HandleConnectBank asks the backend for a Stripe onboarding URL and sends
// the browser there. Stripe returns the creator to /bank/connect/success.
//
// HTTP: POST /bank/connect (form-encoded, field "country")
func (h *OnboardingHandler) HandleConnectBank(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	country := strings.ToUpper(strings.TrimSpace(r.PostFormValue("country")))
	if country == "" {
		h.renderer.Render(w, http.StatusUnprocessableEntity, "connect_bank", View{
			Title: "Connect your bank", User: viewer(r),
			Errors: map[string]string{"country": "pick your country"},
		})
		return
	}

	backend := auth.BackendFromContext(r.Context())
	url, err := h.client.ConnectBankURL(r.Context(), backend.Pair(), country)
	if err != nil {
		h.logger.Error("requesting bank connect URL", slog.String("error", err.Error()))
		h.renderer.Render(w, http.StatusBadGateway, "connect_bank", View{
			Title: "Connect your bank", User: viewer(r),
			Errors: map[string]string{"form": "could not reach the payment provider, try again"},
		})
		return
	}

	http.Redirect(w, r, url, http.StatusSeeOther)
}

// HandleConnectLater defers the bank step and lands on the creator's own
// profile. The profile page nags about it until connected.
//
// HTTP: POST /bank/connect/later
func (h *OnboardingHandler) HandleConnectLater(w http.ResponseWriter, r *http.Request) {
	user := viewer(r)
	if user == nil {
		http.Redirect(w, r, access.PathLogin, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, access.OwnProfilePath(user.Username), http.StatusSeeOther)
}

// ShowConnectSuccess renders the "bank connected" page. The session
// middleware refetched the account this request, so the snapshot already
// reflects the connected state.
//
// HTTP: GET /bank/connect/success
func (h *OnboardingHandler) ShowConnectSuccess(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "connect_success", View{
		Title: "Bank connected",
		User:  viewer(r),
	})
}

// viewer returns a copy of the logged-in user, or nil.
func viewer(r *http.Request) *model.User {
	return auth.SnapshotFromRequest(r).User
}

// formUpload adapts an optional multipart file field to an api.Upload.
func formUpload(r *http.Request, field string) *api.Upload {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil // field absent or empty
	}
	return &api.Upload{
		Filename: header.Filename,
		Reader:   http.MaxBytesReader(nil, file, maxUploadBytes),
	}
}
