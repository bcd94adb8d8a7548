// Package api DCT steganography REST API
//
// @title           DCT Steganography API
// @version         1.0.0
// @description     Hide text messages in images by forcing the sign of mid-frequency DCT coefficients.
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/swaggo/swag"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/dctsteg/pkg/config"
	"github.com/ssargent/dctsteg/pkg/fetch"
	"github.com/ssargent/dctsteg/pkg/stego"
	"github.com/ssargent/dctsteg/pkg/storage"
)

// NewRouter wires middleware and routes for server.
func NewRouter(server *Server) http.Handler {
	metrics := server.metrics
	origins := server.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", server.handleHome)

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(server.config.APIKey)))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		r.Post("/encode", metrics.InstrumentHandler("POST", "/api/v1/encode", server.handleEncode))
		r.Post("/decode", metrics.InstrumentHandler("POST", "/api/v1/decode", server.handleDecode))
		r.Post("/capacity", metrics.InstrumentHandler("POST", "/api/v1/capacity", server.handleCapacity))

		r.Get("/images/{id}", metrics.InstrumentHandler("GET", "/api/v1/images/{id}", server.handleGetImage))
		r.Delete("/images/{id}", metrics.InstrumentHandler("DELETE", "/api/v1/images/{id}", server.handleDeleteImage))
	})

	// Swagger documentation (unprotected)
	r.Get("/swagger/*", handleSwagger)

	return r
}

const swaggerUI = `<!DOCTYPE html>
<html>
<head>
	 <title>DCT Steganography API Documentation</title>
	 <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui.css" />
</head>
<body>
	 <div id="swagger-ui"></div>
	 <script src="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui-bundle.js"></script>
	 <script>
	   window.onload = function() {
	     SwaggerUIBundle({
	       url: '/swagger/swagger.json',
	       dom_id: '#swagger-ui',
	       presets: [
	         SwaggerUIBundle.presets.apis,
	         SwaggerUIBundle.presets.standalone
	       ]
	     });
	   };
	 </script>
</body>
</html>`

func handleSwagger(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/swagger/", "/swagger/index.html":
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerUI))

	case "/swagger/swagger.json":
		doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
		if err != nil {
			log.Printf("error generating swagger doc: %v", err)
			http.Error(w, "Failed to generate Swagger documentation", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))

	case "/swagger/swagger.yaml":
		doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
		if err != nil {
			log.Printf("error generating swagger doc: %v", err)
			http.Error(w, "Failed to generate Swagger documentation", http.StatusInternalServerError)
			return
		}
		// JSON is valid YAML, so a decode and re-encode converts it.
		var tree interface{}
		if err := yaml.Unmarshal([]byte(doc), &tree); err != nil {
			http.Error(w, "Failed to convert Swagger documentation", http.StatusInternalServerError)
			return
		}
		out, err := yaml.Marshal(tree)
		if err != nil {
			http.Error(w, "Failed to convert Swagger documentation", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(out)

	default:
		http.NotFound(w, r)
	}
}

// StartServer builds the codec, collaborators and router from cfg and serves
// until ctx is cancelled, then shuts down gracefully.
func StartServer(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	codec, err := stego.NewCodec(cfg.StegoParams(), cfg.Stego.Verify)
	if err != nil {
		return err
	}
	channel, err := cfg.Channel()
	if err != nil {
		return err
	}
	format, err := cfg.OutputFormat()
	if err != nil {
		return err
	}

	var fetcher *fetch.Fetcher
	if cfg.Fetch.Enabled {
		fetcher = fetch.New(fetch.Options{Timeout: cfg.FetchTimeout(), MaxBytes: cfg.Fetch.MaxBytes})
	}

	var store storage.ImageStore
	if cfg.Storage.Enabled {
		db, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := NewMetrics(reg)

	serverConfig := ServerConfig{
		Port:            cfg.Server.Port,
		Bind:            cfg.Server.Bind,
		APIKey:          cfg.Server.APIKey,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		MaxUploadBytes:  cfg.Server.MaxUploadBytes,
		ShutdownTimeout: cfg.ShutdownTimeout(),
		Channel:         channel,
		OutputFormat:    format,
		Debug:           cfg.Debug(),
	}
	server := NewServer(codec, fetcher, store, serverConfig, metrics)

	// Set Swagger host with port
	SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.Server.Port)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           NewRouter(server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting DCT steganography API server on %s", httpServer.Addr)
		log.Printf("Metrics available at: http://%s/metrics", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
