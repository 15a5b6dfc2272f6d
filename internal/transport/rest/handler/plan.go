package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"planwise/internal/service"
)

// PlanHandler handles plan, catalog, and aggregator endpoints
type PlanHandler struct {
	planSvc *service.PlanService
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(planSvc *service.PlanService) *PlanHandler {
	return &PlanHandler{planSvc: planSvc}
}

// Load handles POST /v1/plans/{planId}/load?userId=&force=
func (h *PlanHandler) Load(w http.ResponseWriter, r *http.Request) {
	planID := mux.Vars(r)["planId"]
	userID := r.URL.Query().Get("userId")
	force := r.URL.Query().Get("force") == "true"

	session, err := h.planSvc.LoadPlan(r.Context(), userID, planID, force)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"planId":        session.PlanID,
		"level":         session.Doc.Level,
		"bookId":        session.Doc.BookID,
		"dayCount":      session.DayCount(),
		"activityCount": len(session.Activities),
		"currentIndex":  session.Cursor(),
	})
}

// Activities handles GET /v1/plans/{planId}/activities?userId=
func (h *PlanHandler) Activities(w http.ResponseWriter, r *http.Request) {
	planID := mux.Vars(r)["planId"]
	userID := r.URL.Query().Get("userId")

	session, err := h.planSvc.Session(userID, planID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"activities": session.Activities,
	})
}

// Catalog handles GET /v1/plans/{planId}/catalog?userId=
func (h *PlanHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	planID := mux.Vars(r)["planId"]
	userID := r.URL.Query().Get("userId")

	session, err := h.planSvc.Session(userID, planID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, session.Catalog.Snapshot())
}

// DayTasks handles GET /v1/plans/{planId}/days/{dayIndex}/tasks?userId=
func (h *PlanHandler) DayTasks(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	planID := vars["planId"]
	userID := r.URL.Query().Get("userId")

	dayIndex, err := strconv.Atoi(vars["dayIndex"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid day index")
		return
	}

	tasks, err := h.planSvc.DayTasks(r.Context(), userID, planID, dayIndex)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"dayIndex": dayIndex,
		"tasks":    tasks,
	})
}

// SubchapterStatus handles GET /v1/plans/{planId}/subchapters/{subChapterId}?userId=&force=
func (h *PlanHandler) SubchapterStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	planID := vars["planId"]
	subChapterID := vars["subChapterId"]
	userID := r.URL.Query().Get("userId")
	force := r.URL.Query().Get("force") == "true"

	blob, err := h.planSvc.SubchapterStatus(r.Context(), userID, planID, subChapterID, force)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, blob)
}

// RefreshSubchapter handles POST /v1/plans/{planId}/subchapters/{subChapterId}/refresh?userId=
func (h *PlanHandler) RefreshSubchapter(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	planID := vars["planId"]
	subChapterID := vars["subChapterId"]
	userID := r.URL.Query().Get("userId")

	blob, err := h.planSvc.SubchapterStatus(r.Context(), userID, planID, subChapterID, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, blob)
}
