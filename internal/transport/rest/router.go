package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"planwise/internal/cache"
	"planwise/internal/service"
	"planwise/internal/transport/rest/handler"
)

// Container holds all dependencies for the router
type Container struct {
	PlanService *service.PlanService
	TimeCache   cache.ActivityTimeCache
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	planHandler := handler.NewPlanHandler(c.PlanService)
	cursorHandler := handler.NewCursorHandler(c.PlanService)
	timeHandler := handler.NewTimeHandler(c.TimeCache)

	r.Use(corsMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()

	// Plan loading and derived views
	v1.HandleFunc("/plans/{planId}/load", planHandler.Load).Methods("POST", "OPTIONS")
	v1.HandleFunc("/plans/{planId}/activities", planHandler.Activities).Methods("GET", "OPTIONS")
	v1.HandleFunc("/plans/{planId}/catalog", planHandler.Catalog).Methods("GET", "OPTIONS")
	v1.HandleFunc("/plans/{planId}/days/{dayIndex}/tasks", planHandler.DayTasks).Methods("GET", "OPTIONS")

	// Subchapter aggregator status
	v1.HandleFunc("/plans/{planId}/subchapters/{subChapterId}", planHandler.SubchapterStatus).Methods("GET", "OPTIONS")
	v1.HandleFunc("/plans/{planId}/subchapters/{subChapterId}/refresh", planHandler.RefreshSubchapter).Methods("POST", "OPTIONS")

	// Navigation cursor
	v1.HandleFunc("/plans/{planId}/cursor", cursorHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/plans/{planId}/cursor", cursorHandler.Set).Methods("PUT", "OPTIONS")
	v1.HandleFunc("/plans/{planId}/cursor/advance", cursorHandler.Advance).Methods("POST", "OPTIONS")

	// Activity time tracking
	v1.HandleFunc("/activities/{activityId}/time", timeHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/activities/{activityId}/time", timeHandler.Increment).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
