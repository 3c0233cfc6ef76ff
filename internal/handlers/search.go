package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	api "github.com/traingrc/textweaver/internal/api/search"
	"github.com/traingrc/textweaver/internal/auth"
	"github.com/traingrc/textweaver/internal/query"
)

// SearchHandler serves GET and POST /search. Shared-corpus searches are
// anonymous; user_table searches require a valid bearer token and never fall
// back to the shared corpus.
type SearchHandler struct {
	Engine *query.Engine
	Auth   auth.Authorizer
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	namespace := ""
	if req.UserTable {
		claims, err := h.authorize(r)
		if err != nil {
			http.Error(w, "", http.StatusUnauthorized)
			return
		}
		if claims.Username == "" {
			http.Error(w, "", http.StatusUnauthorized)
			return
		}
		namespace = claims.Username
	}

	start := time.Now()
	results, err := h.Engine.Search(r.Context(), req.Query, req.ResultsToReturn, namespace)
	if err != nil {
		log.Printf("Search failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, api.SearchResponse{
		TimeElapsed: round2(time.Since(start).Seconds()),
		Results:     results,
	})
}

func parseSearchRequest(r *http.Request) (api.SearchRequest, error) {
	var req api.SearchRequest

	switch r.Method {
	case http.MethodGet:
		params := r.URL.Query()
		req.Query = params.Get("query")
		req.UserTable = params.Get("user_table") == "true"
		if raw := params.Get("results_to_return"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return req, errors.New("results_to_return must be an integer")
			}
			req.ResultsToReturn = n
		}
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, errors.New("invalid request payload")
		}
	default:
		return req, errors.New("method not allowed")
	}

	if req.Query == "" {
		return req, errors.New("query cannot be empty")
	}
	if req.ResultsToReturn < 0 {
		return req, errors.New("results_to_return must not be negative")
	}
	return req, nil
}

func (h *SearchHandler) authorize(r *http.Request) (auth.Claims, error) {
	token, err := BearerToken(r)
	if err != nil {
		return auth.Claims{}, err
	}
	return h.Auth.Verify(r.Context(), token)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
