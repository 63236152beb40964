package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ziadkadry99/moviesearch/internal/search"
)

// searchRequest is the body of POST /api/search and of each WebSocket message.
type searchRequest struct {
	Query     string  `json:"query"`
	NResults  *int    `json:"n_results"`
	MinRating float64 `json:"min_rating"`
}

func (r searchRequest) toQuery() search.Query {
	n := search.DefaultResults
	if r.NResults != nil {
		n = *r.NResults
	}
	return search.Query{Text: r.Query, NResults: n, MinRating: r.MinRating}
}

// searchResponse carries results or the reason there are none.
type searchResponse struct {
	Type    string          `json:"type"` // "results", "warning" or "error"
	Results []search.Result `json:"results"`
	Message string          `json:"message,omitempty"`
	Warning string          `json:"warning,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// statsResponse is the JSON response for the stats endpoint.
type statsResponse struct {
	Collection string `json:"collection"`
	Movies     int    `json:"movies"`
	Error      string `json:"error,omitempty"`
}

// runSearch maps a search outcome onto a response and HTTP status. Store
// failures are reported as an empty result set rather than a server error.
func (d *Dashboard) runSearch(ctx context.Context, req searchRequest) (searchResponse, int) {
	results, err := d.service.Search(ctx, req.toQuery())
	resp := searchResponse{Type: "results", Results: []search.Result{}}
	switch {
	case errors.Is(err, search.ErrEmptyQuery):
		resp.Type = "warning"
		resp.Warning = err.Error()
		return resp, http.StatusBadRequest
	case errors.Is(err, search.ErrResultCount):
		resp.Type = "error"
		resp.Error = err.Error()
		return resp, http.StatusBadRequest
	case err != nil:
		resp.Type = "error"
		resp.Error = err.Error()
		return resp, http.StatusOK
	}

	if len(results) == 0 {
		resp.Message = search.NoResultsMessage
	} else {
		resp.Results = results
		resp.Message = fmt.Sprintf("%d movies found!", len(results))
	}
	return resp, http.StatusOK
}

func (d *Dashboard) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, searchResponse{
			Type:    "error",
			Results: []search.Result{},
			Error:   "invalid request body",
		})
		return
	}

	resp, status := d.runSearch(r.Context(), req)
	writeJSON(w, status, resp)
}

func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	count, err := d.service.Count(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, statsResponse{Collection: d.collection, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Collection: d.collection, Movies: count})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
