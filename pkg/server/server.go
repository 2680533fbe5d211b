package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/openmf/bankimport/pkg/importer"
	"github.com/openmf/bankimport/pkg/service"
)

// Server exposes statement parsing over HTTP for previewing imports before
// the host applies them.
type Server struct {
	logger    *log.Logger
	mux       *http.ServeMux
	processor *service.Processor
}

func New(processor *service.Processor, logger *log.Logger) *Server {
	s := &Server{
		logger:    logger,
		mux:       http.NewServeMux(),
		processor: processor,
	}
	s.setupRoutes()
	return s
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/parse", s.withLogging(s.handleParse))
	s.mux.HandleFunc("/healthz", s.withLogging(s.handleHealth))
}

// handleParse accepts the raw statement bytes as the request body. The
// filename query parameter drives importer detection; the importer parameter
// overrides it.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	var imp importer.Importer
	var err error
	if name := r.URL.Query().Get("importer"); name != "" {
		imp, err = s.processor.ImporterByName(name)
	} else {
		imp, err = s.processor.ImporterFor(r.URL.Query().Get("filename"))
	}
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "no importer for file", err)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to read body", err)
		return
	}

	result := imp.Parse(data)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path)
		next(w, r)
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, code int, msg string, err error) {
	s.logger.Error(msg, "method", r.Method, "path", r.URL.Path, "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
