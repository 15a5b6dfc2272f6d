package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"planwise/internal/cache"
)

// TimeHandler handles activity time tracking endpoints
type TimeHandler struct {
	timeCache cache.ActivityTimeCache
}

// NewTimeHandler creates a new time handler
func NewTimeHandler(timeCache cache.ActivityTimeCache) *TimeHandler {
	return &TimeHandler{timeCache: timeCache}
}

// Get handles GET /v1/activities/{activityId}/time
func (h *TimeHandler) Get(w http.ResponseWriter, r *http.Request) {
	activityID := mux.Vars(r)["activityId"]

	total, err := h.timeCache.Total(r.Context(), activityID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"activityId": activityID,
		"totalTime":  total,
	})
}

// Increment handles POST /v1/activities/{activityId}/time
func (h *TimeHandler) Increment(w http.ResponseWriter, r *http.Request) {
	activityID := mux.Vars(r)["activityId"]

	var body struct {
		Seconds int64 `json:"seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	total, err := h.timeCache.Increment(r.Context(), activityID, body.Seconds)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"activityId": activityID,
		"totalTime":  total,
	})
}
