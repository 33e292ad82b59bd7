// Package httpapi binds the sync hub to its HTTP wire protocol:
//
//	GET  /entries        catalog: date -> {modified_at, deleted}
//	GET  /entries/{date} one entry, 404 if the date was never created
//	POST /entries/{date} push an entry, answers the accepted modified_at
//
// There is no authentication: any reachable caller may read or write any
// entry. That is a stated limitation appropriate to a single trusted
// local network.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mkravets/daybook/internal/common"
	"github.com/mkravets/daybook/internal/journal"
	"github.com/mkravets/daybook/internal/logging"
	"github.com/mkravets/daybook/internal/server/hub"
)

// Server turns hub operations into HTTP handlers.
type Server struct {
	hub    *hub.Hub
	logger logging.Logger
}

func New(h *hub.Hub, logger logging.Logger) *Server {
	return &Server{hub: h, logger: logger.With("module", "httpapi")}
}

// Handler returns the routed HTTP handler for the sync protocol.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /entries", s.withLogging(s.handleCatalog))
	mux.HandleFunc("GET /entries/{date}", s.withLogging(s.handleGetEntry))
	mux.HandleFunc("POST /entries/{date}", s.withLogging(s.handlePushEntry))
	return mux
}

type pushRequest struct {
	Content    string    `json:"content"`
	ModifiedAt time.Time `json:"modified_at"`
	Deleted    bool      `json:"deleted"`
}

type pushResponse struct {
	ModifiedAt time.Time `json:"modified_at"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.hub.Catalog(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, catalog)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	date, err := journal.ParseDate(r.PathValue("date"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	entry, err := s.hub.GetEntry(r.Context(), date)
	if errors.Is(err, common.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, entry)
}

func (s *Server) handlePushEntry(w http.ResponseWriter, r *http.Request) {
	date, err := journal.ParseDate(r.PathValue("date"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	var req pushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, errors.New("malformed entry body"))
		return
	}
	if req.ModifiedAt.IsZero() {
		s.writeError(w, r, http.StatusBadRequest, errors.New("missing modified_at"))
		return
	}

	accepted, err := s.hub.AcceptPush(r.Context(), &journal.Entry{
		Date:       date,
		Content:    req.Content,
		ModifiedAt: req.ModifiedAt,
		Deleted:    req.Deleted,
	})
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, pushResponse{ModifiedAt: accepted})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(r.Context(), "failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.writeJSON(w, r, status, map[string]string{"error": err.Error()})
}
