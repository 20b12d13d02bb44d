package api

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/policy"
)

func (a *API) getPreferences(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, "preferences", a.prefs.Snapshot(), nil)
}

// putPreferences replaces the whole document. A persistence failure still
// answers 200: the new policy is active in memory and the response says so.
func (a *API) putPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs policy.Preferences
	if err := decodeJSON(w, r, &prefs); err != nil {
		respondError(w, err)
		return
	}

	err := a.prefs.Replace(r.Context(), prefs)
	switch {
	case errors.Is(err, policy.ErrPreferencePersistence):
		a.logger.WarnContext(r.Context(), "preferences applied but not persisted", logger.Error(err))
		writeJSON(w, http.StatusOK, JSONResponse{
			Code:    "applied_not_persisted",
			Message: "preferences are active but could not be saved",
			Data:    a.prefs.Snapshot(),
		})
	case err != nil:
		respondError(w, err)
	default:
		respond(w, http.StatusOK, "preferences", a.prefs.Snapshot(), nil)
	}
}
