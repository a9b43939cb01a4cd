package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gitshopapp/gemcart/internal/config"
	"github.com/gitshopapp/gemcart/internal/handlers"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	router     *mux.Router
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	router := s.buildRouter()
	s.router = router
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) buildRouter() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.SecurityHeaders)
	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}` + "\n"))
	})

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/attributes", h.Attributes).Methods("GET").Name("api.attributes")
	api.HandleFunc("/pricing/resolve", h.ResolvePrice).Methods("POST").Name("api.pricing.resolve")
	api.HandleFunc("/products/{id}/variants", h.ListVariants).Methods("GET").Name("api.products.variants")
	api.HandleFunc("/products/{id}/selection", h.DefaultSelection).Methods("GET").Name("api.products.selection")
	api.HandleFunc("/products/{id}/selection", h.ResolveSelection).Methods("POST").Name("api.products.selection.resolve")

	// Seller routes - require a seller bearer token
	seller := api.PathPrefix("/seller").Subrouter()
	seller.Use(h.RequireSeller)
	seller.HandleFunc("/products", h.CreateProduct).Methods("POST").Name("seller.products.create")
	seller.HandleFunc("/products/{id}/advance", h.AdvanceProduct).Methods("POST").Name("seller.products.advance")
	seller.HandleFunc("/products/{id}/variants/build", h.BuildVariants).Methods("POST").Name("seller.variants.build")
	seller.HandleFunc("/products/{id}/variants", h.SaveVariants).Methods("PUT").Name("seller.variants.save")
	seller.HandleFunc("/products/{id}/variants/{sku}/pricing", h.UpdatePricing).Methods("PATCH").Name("seller.variants.pricing")
	seller.HandleFunc("/products/{id}/variants/{sku}/stock", h.UpdateStock).Methods("PATCH").Name("seller.variants.stock")

	return r
}
