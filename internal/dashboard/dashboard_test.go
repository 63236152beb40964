package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/moviesearch/internal/embeddings/mock"
	"github.com/ziadkadry99/moviesearch/internal/search"
	"github.com/ziadkadry99/moviesearch/internal/vectordb"
)

func rating(v float64) *float64 { return &v }

func seededHandle(t *testing.T) *vectordb.Handle {
	t.Helper()
	store, err := vectordb.NewChromemStore("", false, "movie_embeddings", mock.NewEmbedder(64))
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	err = store.Add(context.Background(),
		[]string{"Inception", "Up", "Heat"},
		[]string{"dreams within dreams", "balloons lift a house", "a crew of bank robbers"},
		[]vectordb.Metadata{
			{Genre: "Action, Sci-Fi", Rating: rating(8.8)},
			{Genre: "Animation", Rating: rating(7.0)},
			{Genre: "Crime", Rating: rating(9.0)},
		})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	return vectordb.NewHandle(func(context.Context) (vectordb.VectorStore, error) { return store, nil })
}

func setupRouter(t *testing.T, h *vectordb.Handle) chi.Router {
	t.Helper()
	d, err := New(search.NewService(h, nil), "movie_embeddings", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := chi.NewRouter()
	d.RegisterRoutes(r)
	return r
}

func postSearch(t *testing.T, r http.Handler, body string) (*httptest.ResponseRecorder, searchResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp searchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return w, resp
}

func TestServeIndex(t *testing.T) {
	r := setupRouter(t, seededHandle(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := w.Body.String()
	for _, want := range []string{
		`id="n" type="range" min="1" max="8" step="1" value="3"`,
		`id="rating" type="range" min="0" max="10" step="0.1"`,
		"<li>&quot;mind-bending science fiction&quot;</li>",
		"<strong>Try these search examples:</strong>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestSearchEndpoint(t *testing.T) {
	r := setupRouter(t, seededHandle(t))

	w, resp := postSearch(t, r, `{"query":"a film","n_results":3,"min_rating":8}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp.Type != "results" || len(resp.Results) != 2 {
		t.Fatalf("response = %+v, want 2 results", resp)
	}
	if resp.Message != "2 movies found!" {
		t.Errorf("Message = %q", resp.Message)
	}
	for _, res := range resp.Results {
		if res.Rating == nil || *res.Rating < 8 {
			t.Errorf("%s rating %v below threshold", res.Title, res.Rating)
		}
	}
}

func TestSearchEndpointDefaultsResultCount(t *testing.T) {
	r := setupRouter(t, seededHandle(t))

	_, resp := postSearch(t, r, `{"query":"a film"}`)
	if len(resp.Results) != search.DefaultResults {
		t.Errorf("got %d results, want %d", len(resp.Results), search.DefaultResults)
	}
}

func TestSearchEndpointEmptyQuery(t *testing.T) {
	r := setupRouter(t, seededHandle(t))

	w, resp := postSearch(t, r, `{"query":"   ","n_results":3}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp.Type != "warning" || resp.Warning == "" {
		t.Errorf("response = %+v, want warning", resp)
	}
}

func TestSearchEndpointResultCountOutOfRange(t *testing.T) {
	r := setupRouter(t, seededHandle(t))

	w, resp := postSearch(t, r, `{"query":"heist","n_results":9}`)
	if w.Code != http.StatusBadRequest || resp.Type != "error" {
		t.Errorf("got %d %+v, want 400 error", w.Code, resp)
	}
}

func TestSearchEndpointInvalidBody(t *testing.T) {
	r := setupRouter(t, seededHandle(t))

	w, resp := postSearch(t, r, `not json`)
	if w.Code != http.StatusBadRequest || resp.Error == "" {
		t.Errorf("got %d %+v, want 400 error", w.Code, resp)
	}
}

func TestSearchEndpointStoreUnavailable(t *testing.T) {
	h := vectordb.NewHandle(func(context.Context) (vectordb.VectorStore, error) {
		return nil, errors.New("OPENAI_API_KEY is not set")
	})
	r := setupRouter(t, h)

	w, resp := postSearch(t, r, `{"query":"heist","n_results":3}`)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if resp.Type != "error" || !strings.Contains(resp.Error, "database connection failed") {
		t.Errorf("response = %+v", resp)
	}
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Errorf("Results = %v, want empty", resp.Results)
	}
}

func TestSearchEndpointNoResults(t *testing.T) {
	r := setupRouter(t, seededHandle(t))

	_, resp := postSearch(t, r, `{"query":"a film","n_results":3,"min_rating":9.5}`)
	if resp.Type != "results" || len(resp.Results) != 0 || resp.Message != search.NoResultsMessage {
		t.Errorf("response = %+v", resp)
	}
}

func TestStatsEndpoint(t *testing.T) {
	r := setupRouter(t, seededHandle(t))

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var stats statsResponse
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("decoding stats: %v", err)
	}
	if stats.Movies != 3 || stats.Collection != "movie_embeddings" {
		t.Errorf("stats = %+v", stats)
	}
}

func dialSearch(t *testing.T, r http.Handler) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/search"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
	return conn
}

func TestWebSocketSearch(t *testing.T) {
	conn := dialSearch(t, setupRouter(t, seededHandle(t)))

	if err := conn.WriteJSON(map[string]any{"query": "bank robbers", "n_results": 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp searchResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Type != "results" || len(resp.Results) != 1 {
		t.Fatalf("response = %+v", resp)
	}

	// The connection serves further searches.
	if err := conn.WriteJSON(map[string]any{"query": "", "n_results": 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Type != "warning" {
		t.Errorf("Type = %q, want warning", resp.Type)
	}
}

func TestWebSocketInvalidMessage(t *testing.T) {
	conn := dialSearch(t, setupRouter(t, seededHandle(t)))

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{")); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp searchResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Type != "error" || !strings.Contains(resp.Error, "invalid message format") {
		t.Errorf("response = %+v", resp)
	}
}
