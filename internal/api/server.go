package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gerunddev/text2tana/internal/logger"
	"github.com/gerunddev/text2tana/internal/payload"
	"github.com/gerunddev/text2tana/internal/schema"
)

const maxBodyBytes = 64 << 10

// Server is the HTTP API that turns text into Tana payloads.
type Server struct {
	router    chi.Router
	converter *payload.Converter
	log       *logger.Logger
	token     string
}

// NewServer creates and configures the HTTP server. A non-empty token
// protects the /api routes with bearer auth.
func NewServer(conv *payload.Converter, log *logger.Logger, token string) *Server {
	s := &Server{
		converter: conv,
		log:       log,
		token:     token,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.token != "" {
			r.Use(AuthMiddleware(s.token))
		}

		r.Post("/api/parse", s.handleParse)
		r.Post("/api/payload", s.handlePayload)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type parseRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decodeBody(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, s.converter.Parse(req.Text))
}

// payloadRequest carries mappings as JSON strings, e.g.
// {"myproject": "wQZKLlsyFJw"}, merged onto the server's schema.
type payloadRequest struct {
	Text      string `json:"text"`
	Nodes     string `json:"nodes,omitempty"`
	Supertags string `json:"supertags,omitempty"`
	Fields    string `json:"fields,omitempty"`
	Strict    bool   `json:"strict,omitempty"`
}

func (s *Server) handlePayload(w http.ResponseWriter, r *http.Request) {
	var req payloadRequest
	if err := decodeBody(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var override schema.Schema
	var err error
	if override.Nodes, err = parseMapping("Node", req.Nodes); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if override.Supertags, err = parseMapping("Supertag", req.Supertags); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if override.Fields, err = parseMapping("Field", req.Fields); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	conv := s.converter
	if override.Nodes != nil || override.Supertags != nil || override.Fields != nil {
		conv = payload.NewConverter(schema.Resolve(conv.Schema(), override), conv.Settings())
	}

	res := conv.Parse(req.Text)
	if err := conv.Check(res); err != nil {
		if req.Strict {
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.log.UnknownKeys(err)
	}

	p := conv.Build(res)
	s.log.PayloadBuilt(res.Target, res.Name, len(p.Nodes[0].Children), len(p.Nodes[0].Supertags))
	writeJSON(w, http.StatusOK, p)
}

// parseMapping decodes one optional key -> identifier mapping
func parseMapping(label, raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("When loading %s mapping. JSON formatting error?", label)
	}
	return m, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body too large")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
