// Package server exposes schema documents over HTTP: a page preview per form
// plus JSON endpoints to validate values and resolve field visibility.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/MarJC5/slabs/pkg/conditional"
	"github.com/MarJC5/slabs/pkg/form"
	"github.com/MarJC5/slabs/pkg/page"
	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/schema/loader"
	"github.com/MarJC5/slabs/pkg/validation"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 1 << 20

// AssetsPrefix is where the built-in stylesheet is served.
const AssetsPrefix = "/assets/"

// Catalog resolves documents by name.
type Catalog interface {
	Get(name string) (schema.Document, error)
	Names() []string
}

// FormSummary is one entry of the form listing.
type FormSummary struct {
	Name   string `json:"name"`
	Title  string `json:"title,omitempty"`
	Fields int    `json:"fields"`
}

// ValidateResponse is returned by the validate endpoint.
type ValidateResponse struct {
	Values map[string]any    `json:"values"`
	Result validation.Result `json:"result"`
}

// VisibilityResponse is returned by the visibility endpoint.
type VisibilityResponse struct {
	Visible map[string]bool `json:"visible"`
}

// Server serves the forms of a catalog.
type Server struct {
	catalog    Catalog
	engine     *form.Engine
	pages      *page.Renderer
	renderOpts []form.RenderOption
	logger     *zap.Logger
	router     chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithEngine sets the form engine.
func WithEngine(engine *form.Engine) Option {
	return func(s *Server) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithPageRenderer sets the page renderer used by the preview endpoint.
func WithPageRenderer(pages *page.Renderer) Option {
	return func(s *Server) {
		if pages != nil {
			s.pages = pages
		}
	}
}

// WithRenderOptions adds render options applied to every preview.
func WithRenderOptions(opts ...form.RenderOption) Option {
	return func(s *Server) {
		s.renderOpts = append(s.renderOpts, opts...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds a server over catalog.
func New(catalog Catalog, opts ...Option) (*Server, error) {
	if catalog == nil {
		return nil, errors.New("server: catalog is nil")
	}
	s := &Server{
		catalog: catalog,
		engine:  form.Default(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.pages == nil {
		pages, err := page.New(page.WithStylesheet(AssetsPrefix+page.StylesheetName), page.WithLogger(s.logger))
		if err != nil {
			return nil, err
		}
		s.pages = pages
	}
	s.router = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Handle(AssetsPrefix+"*", http.StripPrefix(AssetsPrefix, http.FileServer(http.FS(page.AssetsFS()))))
	r.Route("/forms", func(r chi.Router) {
		r.Get("/", s.listForms)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.showForm)
			r.Get("/schema", s.showSchema)
			r.Post("/validate", s.validateForm)
			r.Post("/visibility", s.resolveVisibility)
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) listForms(w http.ResponseWriter, _ *http.Request) {
	names := s.catalog.Names()
	out := make([]FormSummary, 0, len(names))
	for _, name := range names {
		doc, err := s.catalog.Get(name)
		if err != nil {
			continue
		}
		out = append(out, FormSummary{Name: doc.Name, Title: doc.Title, Fields: doc.Fields.Len()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"forms": out})
}

func (s *Server) showForm(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	opts := append([]form.RenderOption(nil), s.renderOpts...)
	theme, err := s.pages.Theme()
	if err != nil {
		s.logger.Warn("theme selection failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "THEME_ERROR", err.Error())
		return
	}
	if theme != nil {
		opts = append(opts, form.WithThemeTokens(theme.Tokens))
	}
	root, err := s.engine.Render(doc.Fields, nil, opts...)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "INVALID_SCHEMA", err.Error())
		return
	}

	var buf bytes.Buffer
	if err := s.pages.Render(&buf, page.Data{Title: doc.DisplayTitle(), Description: doc.Description, Form: root}); err != nil {
		s.logger.Error("page render failed", zap.String("form", doc.Name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "RENDER_ERROR", "unable to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) showSchema(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) validateForm(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	values, ok := decodeValues(w, r)
	if !ok {
		return
	}
	s.engine.ClearHidden(doc.Fields, values)
	result, err := s.engine.Validate(doc.Fields, values)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "INVALID_SCHEMA", err.Error())
		return
	}
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, ValidateResponse{Values: values, Result: result})
}

func (s *Server) resolveVisibility(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	values, ok := decodeValues(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, VisibilityResponse{Visible: conditional.Resolve(doc.Fields, values)})
}

func (s *Server) document(w http.ResponseWriter, r *http.Request) (schema.Document, bool) {
	name := chi.URLParam(r, "name")
	doc, err := s.catalog.Get(name)
	if err != nil {
		if errors.Is(err, loader.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown form: "+name)
			return schema.Document{}, false
		}
		writeError(w, http.StatusInternalServerError, "CATALOG_ERROR", err.Error())
		return schema.Document{}, false
	}
	return doc, true
}

func decodeValues(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	defer r.Body.Close()
	var values map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "request body must be a JSON object")
		return nil, false
	}
	if values == nil {
		values = map[string]any{}
	}
	return values, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}
