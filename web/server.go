package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/foomo/contentserver-navigation/catalog"
	"github.com/foomo/contentserver-navigation/resources"
	"github.com/foomo/contentserver-navigation/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

//go:embed templates
var templateFS embed.FS

type Options struct {
	// MCP is mounted at MCPEndpoint when set
	MCP         http.Handler
	MCPEndpoint string
	// Gatherer backs /metrics, the default registry when nil
	Gatherer prometheus.Gatherer
	// Registry decides which static files are served below /assets
	Registry *resources.Registry
}

type server struct {
	logger    *zap.Logger
	service   service.Service
	templates *template.Template
}

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		// only for fields sanitized by the richtext package
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s) //nolint:gosec
		},
	}
	return template.New("_root").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
}

// NewRouter wires the page, api, asset, metrics and MCP endpoints
func NewRouter(logger *zap.Logger, serviceInstance service.Service, opts Options) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = resources.NewRegistry()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	assets, err := resources.Handler(resources.Static(), opts.Registry)
	if err != nil {
		return nil, err
	}
	s := &server{
		logger:    logger,
		service:   serviceInstance,
		templates: templates,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	r.Handle("/assets/*", http.StripPrefix("/assets", assets))
	if opts.MCP != nil && opts.MCPEndpoint != "" {
		r.Handle(opts.MCPEndpoint, opts.MCP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Get("/navigation", s.apiHandler(func(v *service.View, r *http.Request) (any, error) {
			return v.Navigation()
		}))
		r.Get("/news", s.apiHandler(func(v *service.View, r *http.Request) (any, error) {
			limit, err := intParam(r, "limit")
			if err != nil {
				return nil, err
			}
			return v.News(limit)
		}))
		r.Get("/references", s.apiHandler(func(v *service.View, r *http.Request) (any, error) {
			chunkSize, err := intParam(r, "chunkSize")
			if err != nil {
				return nil, err
			}
			randomize, err := boolParam(r, "random")
			if err != nil {
				return nil, err
			}
			return v.ProjectReferences(chunkSize, randomize)
		}))
		r.Get("/testimonial", s.apiHandler(func(v *service.View, r *http.Request) (any, error) {
			return v.Testimonial()
		}))
		r.Get("/breadcrumbs", s.apiHandler(func(v *service.View, r *http.Request) (any, error) {
			return v.Breadcrumbs()
		}))
		r.Get("/layout", s.apiHandler(func(v *service.View, r *http.Request) (any, error) {
			return v.Layout(), nil
		}))
	})

	r.Get("/", s.handlePage)
	r.Get("/*", s.handlePage)
	return r, nil
}

// badRequestError marks invalid query parameters
type badRequestError struct {
	err error
}

func (e badRequestError) Error() string { return e.err.Error() }

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, badRequestError{err: errors.New(name + " must be a non negative integer")}
	}
	return v, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, badRequestError{err: errors.New(name + " must be a boolean")}
	}
	return v, nil
}

// bind resolves the view for path and writes the error response if that fails
func (s *server) bind(w http.ResponseWriter, r *http.Request, path string) *service.View {
	view, err := s.service.View(r.Context(), path)
	if err == nil {
		return view
	}
	s.writeError(w, r, err)
	return nil
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var badRequest badRequestError
	switch {
	case errors.As(err, &badRequest):
		http.Error(w, badRequest.Error(), http.StatusBadRequest)
	case errors.Is(err, catalog.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		s.logger.Error("failed to render view", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (s *server) apiHandler(render func(v *service.View, r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("path")
		if path == "" {
			path = "/"
		}
		view := s.bind(w, r, path)
		if view == nil {
			return
		}
		data, err := render(view, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.Warn("failed to write response", zap.Error(err))
		}
	}
}

func (s *server) handlePage(w http.ResponseWriter, r *http.Request) {
	view := s.bind(w, r, r.URL.Path)
	if view == nil {
		return
	}
	page, err := view.Page()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "page", page); err != nil {
		s.logger.Error("failed to execute template", zap.String("path", r.URL.Path), zap.Error(err))
	}
}
