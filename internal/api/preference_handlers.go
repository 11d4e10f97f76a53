package api

import (
	"net/http"

	"github.com/onnwee/newsai/internal/middleware"
	"github.com/onnwee/newsai/internal/user"
)

// PreferencesRequest is the body of POST /api/preferences.
type PreferencesRequest struct {
	Interests        []string `json:"interests"`
	PreferredSources []string `json:"preferred_sources"`
}

// PreferencesUpdatedResponse confirms a preferences update.
type PreferencesUpdatedResponse struct {
	Message     string            `json:"message"`
	Preferences *user.Preferences `json:"preferences"`
}

// PreferenceHandlers serves the caller's reading preferences.
type PreferenceHandlers struct {
	prefs user.PreferenceRepository
}

// NewPreferenceHandlers creates a new PreferenceHandlers instance.
func NewPreferenceHandlers(prefs user.PreferenceRepository) *PreferenceHandlers {
	return &PreferenceHandlers{prefs: prefs}
}

// GetPreferences handles GET /api/preferences.
func (h *PreferenceHandlers) GetPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := h.prefs.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeInternalError(w, r, err, "Failed to load preferences")
		return
	}
	WriteJSON(w, r.Context(), http.StatusOK, p)
}

// UpdatePreferences handles POST /api/preferences. Both lists are replaced;
// an omitted list is stored as empty.
func (h *PreferenceHandlers) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p := &user.Preferences{
		UserID:           middleware.GetUserID(r.Context()),
		Interests:        req.Interests,
		PreferredSources: req.PreferredSources,
	}
	if err := h.prefs.Upsert(r.Context(), p); err != nil {
		writeInternalError(w, r, err, "Failed to update preferences")
		return
	}
	WriteJSON(w, r.Context(), http.StatusOK, PreferencesUpdatedResponse{Message: "Preferences updated", Preferences: p})
}
