package httpapi

import (
	"io/fs"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"

	app "github.com/R3E-Network/petclinic/internal/app"
	"github.com/R3E-Network/petclinic/internal/app/i18n"
	"github.com/R3E-Network/petclinic/internal/app/metrics"
	"github.com/R3E-Network/petclinic/internal/middleware"
	"github.com/R3E-Network/petclinic/pkg/logger"
)

// Options configures the router.
type Options struct {
	Logger *logger.Logger
	// RateLimiter throttles every route except health and metrics when set.
	RateLimiter *middleware.RateLimiter
	// AllowedOrigins may read GET /vets cross-origin.
	AllowedOrigins []string
	// Metrics exposes GET /metrics.
	Metrics bool
	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies []string
}

// NewHandler builds the clinic's HTTP handler: chi recovery and path
// normalisation outside a gorilla/mux router carrying tracing, metrics,
// throttling and locale negotiation.
func NewHandler(application *app.Application, bundle *i18n.Bundle, opts Options) (http.Handler, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewDefault("http")
	}
	if bundle == nil {
		var err error
		if bundle, err = i18n.Embedded(i18n.DefaultLanguage); err != nil {
			return nil, err
		}
	}
	realIP, err := middleware.NewRealIPMiddleware(opts.TrustedProxies)
	if err != nil {
		return nil, err
	}
	views, err := newRenderer()
	if err != nil {
		return nil, err
	}

	h := &handler{app: application, views: views, log: log}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(h.notFound)

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	if opts.Metrics {
		r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}
	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, err
	}
	r.PathPrefix("/static").Handler(http.StripPrefix("/static", http.FileServer(assetFS{http.FS(static)})))

	pages := r.NewRoute().Subrouter()
	pages.Use(middleware.NewTracingMiddleware(log).Handler)
	pages.Use(middleware.MetricsMiddleware())
	if opts.RateLimiter != nil {
		pages.Use(opts.RateLimiter.Handler)
	}
	pages.Use(i18n.Middleware(bundle))

	pages.HandleFunc("/", h.welcome).Methods(http.MethodGet)
	pages.HandleFunc("/oups", h.oups).Methods(http.MethodGet)

	pages.HandleFunc("/owners/new", h.newOwnerForm).Methods(http.MethodGet)
	pages.HandleFunc("/owners/new", h.createOwner).Methods(http.MethodPost)
	pages.HandleFunc("/owners/find", h.findOwnersForm).Methods(http.MethodGet)
	pages.HandleFunc("/owners", h.listOwners).Methods(http.MethodGet)
	pages.HandleFunc("/owners/{ownerId:[0-9]+}", h.showOwner).Methods(http.MethodGet)
	pages.HandleFunc("/owners/{ownerId:[0-9]+}/edit", h.editOwnerForm).Methods(http.MethodGet)
	pages.HandleFunc("/owners/{ownerId:[0-9]+}/edit", h.updateOwner).Methods(http.MethodPost)

	pages.HandleFunc("/owners/{ownerId:[0-9]+}/pets/new", h.newPetForm).Methods(http.MethodGet)
	pages.HandleFunc("/owners/{ownerId:[0-9]+}/pets/new", h.createPet).Methods(http.MethodPost)
	pages.HandleFunc("/owners/{ownerId:[0-9]+}/pets/{petId:[0-9]+}/edit", h.editPetForm).Methods(http.MethodGet)
	pages.HandleFunc("/owners/{ownerId:[0-9]+}/pets/{petId:[0-9]+}/edit", h.updatePet).Methods(http.MethodPost)

	pages.HandleFunc("/owners/{ownerId:[0-9]+}/pets/{petId:[0-9]+}/visits/new", h.newVisitForm).Methods(http.MethodGet)
	pages.HandleFunc("/owners/{ownerId:[0-9]+}/pets/{petId:[0-9]+}/visits/new", h.createVisit).Methods(http.MethodPost)

	pages.HandleFunc("/vets.html", h.vetPage).Methods(http.MethodGet)
	cors := middleware.NewCORSMiddleware(opts.AllowedOrigins)
	pages.Handle("/vets", cors.Handler(http.HandlerFunc(h.vetResources))).Methods(http.MethodGet, http.MethodOptions)

	var root http.Handler = r
	root = chimiddleware.StripSlashes(root)
	root = realIP.Handler(root)
	root = chimiddleware.Recoverer(root)
	return root, nil
}

// assetFS serves files only; directories answer 404 instead of a listing.
type assetFS struct {
	http.FileSystem
}

func (a assetFS) Open(name string) (http.File, error) {
	f, err := a.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
