package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mrops-br/shopping-browser-api/internal/infrastructure/config"
	"github.com/mrops-br/shopping-browser-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/shopping-browser-api/internal/infrastructure/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Handlers groups the route handlers served by Server
type Handlers struct {
	Products *handler.ProductHandler
	Cart     *handler.CartHandler
	Searches *handler.SearchHandler
}

// Server represents the HTTP server
type Server struct {
	router        *chi.Mux
	config        *config.ServerConfig
	handlers      Handlers
	logger        *slog.Logger
	meterProvider metric.MeterProvider
	httpServer    *http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.ServerConfig,
	handlers Handlers,
	meterProvider metric.MeterProvider,
	logger *slog.Logger,
) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		config:        cfg,
		handlers:      handlers,
		logger:        logger,
		meterProvider: meterProvider,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// setupMiddleware configures the middleware chain
func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(middleware.StructuredLogger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.ActiveRequestsMiddleware(s.meterProvider.Meter("shopping-browser-api")))
}

// setupRoutes configures the API routes. Routes are registered flat inside
// one group so the route-context middleware runs after chi has matched the
// full pattern.
func (s *Server) setupRoutes() {
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.HTTPRouteContext())

		products := s.handlers.Products
		r.Get("/products", products.ListProducts)
		r.Post("/products/load", products.LoadProducts)
		r.Post("/products/more", products.LoadMoreProducts)
		r.Post("/products/refresh", products.RefreshProducts)
		r.Get("/products/{id}", products.GetProduct)
		r.Get("/products/{id}/thumbnail", products.GetProductThumbnail)
		r.Get("/categories", products.ListCategories)
		r.Get("/categories/all", products.ListAllCategories)
		r.Post("/filters", products.ApplyFilters)
		r.Delete("/filters", products.ResetFilters)

		searches := s.handlers.Searches
		r.Get("/searches", searches.ListSearches)
		r.Post("/searches", searches.RecordSearch)
		r.Delete("/searches", searches.ClearSearches)

		cart := s.handlers.Cart
		r.Get("/cart", cart.GetCart)
		r.Delete("/cart", cart.ClearCart)
		r.Post("/cart/items", cart.AddItem)
		r.Delete("/cart/items/{id}", cart.RemoveItem)
		r.Delete("/cart/items/{id}/all", cart.RemoveAllOfItem)
		r.Get("/cart/items/{id}/thumbnail", cart.GetItemThumbnail)
		r.Get("/cart/share", cart.ShareCart)
		r.Post("/cart/checkout", cart.Checkout)
		r.Get("/cart/events", cart.Events)
	})

	// Health check endpoint
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Prometheus metrics endpoint - exposes OpenTelemetry metrics
	s.router.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// Handler returns the router wrapped with otelhttp for HTTP server spans
// and the standard http.server.* metrics
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "http-server",
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
		otelhttp.WithMeterProvider(s.meterProvider),
		otelhttp.WithMetricAttributesFn(func(r *http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{
				attribute.String("http.route", middleware.RoutePattern(r)),
			}
		}),
	)
}

// Start starts the HTTP server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		slog.String("address", s.httpServer.Addr),
	)

	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
// Open event streams end when ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
