package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"planwise/internal/service"
)

// CursorHandler handles navigation cursor endpoints
type CursorHandler struct {
	planSvc *service.PlanService
}

// NewCursorHandler creates a new cursor handler
func NewCursorHandler(planSvc *service.PlanService) *CursorHandler {
	return &CursorHandler{planSvc: planSvc}
}

// Get handles GET /v1/plans/{planId}/cursor?userId=
func (h *CursorHandler) Get(w http.ResponseWriter, r *http.Request) {
	planID := mux.Vars(r)["planId"]
	userID := r.URL.Query().Get("userId")

	session, err := h.planSvc.Session(userID, planID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"currentIndex": session.Cursor(),
		"activity":     session.CurrentActivity(),
	})
}

// Set handles PUT /v1/plans/{planId}/cursor?userId=
func (h *CursorHandler) Set(w http.ResponseWriter, r *http.Request) {
	planID := mux.Vars(r)["planId"]
	userID := r.URL.Query().Get("userId")

	var body struct {
		CurrentIndex int `json:"currentIndex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.planSvc.SetCursor(r.Context(), userID, planID, body.CurrentIndex); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"currentIndex": body.CurrentIndex})
}

// Advance handles POST /v1/plans/{planId}/cursor/advance?userId=
func (h *CursorHandler) Advance(w http.ResponseWriter, r *http.Request) {
	planID := mux.Vars(r)["planId"]
	userID := r.URL.Query().Get("userId")

	session, err := h.planSvc.Session(userID, planID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	index, err := h.planSvc.AdvanceCursor(r.Context(), userID, planID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"currentIndex": index,
		"activity":     session.CurrentActivity(),
	})
}
