package ledger

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"trio-lite/apps/server/internal/auth"
)

// HTTPHandler serves the match archive. Every route requires a live
// session token.
type HTTPHandler struct {
	auth   auth.Service
	ledger Service
}

func NewHTTPHandler(authService auth.Service, ledgerService Service) *HTTPHandler {
	return &HTTPHandler{auth: authService, ledger: ledgerService}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/matches", h.handleList)
	mux.HandleFunc("/api/matches/", h.handleMatch)
}

func (h *HTTPHandler) authorize(w http.ResponseWriter, r *http.Request) bool {
	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing session token")
		return false
	}
	if _, _, ok := h.auth.ResolveSession(token); !ok {
		writeError(w, http.StatusUnauthorized, "invalid session token")
		return false
	}
	return true
}

func (h *HTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !h.authorize(w, r) {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	items, err := h.ledger.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleMatch serves /api/matches/{id} and /api/matches/{id}/tape.
func (h *HTTPHandler) handleMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !h.authorize(w, r) {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/matches/")
	matchID, wantTape := rest, false
	if strings.HasSuffix(rest, "/tape") {
		matchID = strings.TrimSuffix(rest, "/tape")
		wantTape = true
	}
	if matchID == "" || strings.Contains(matchID, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if wantTape {
		tape, err := h.ledger.GetTape(r.Context(), matchID)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tape)
		return
	}
	summary, err := h.ledger.GetMatch(r.Context(), matchID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeLedgerError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "lookup failed")
}

func bearerToken(raw string) string {
	if !strings.HasPrefix(raw, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
