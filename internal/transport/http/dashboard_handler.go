package http

import (
	"encoding/json"
	"log"
	"net/http"

	"iq-quiz-service/internal/app"
)

// DashboardHandler serves the read-only results view.
type DashboardHandler struct {
	service *app.DashboardService
}

func NewDashboardHandler(service *app.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// ServeResults handles GET /api/results?search=&sort=.
func (h *DashboardHandler) ServeResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	search := r.URL.Query().Get("search")
	sortBy := app.DashboardSort(r.URL.Query().Get("sort"))
	switch sortBy {
	case "", app.SortByDate, app.SortByScore, app.SortByIQ:
	default:
		http.Error(w, "unknown sort", http.StatusBadRequest)
		return
	}

	page, err := h.service.Overview(r.Context(), search, sortBy)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(page); err != nil {
		log.Printf("encode dashboard page: %v", err)
	}
}
