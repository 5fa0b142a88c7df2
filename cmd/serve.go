package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadfinder/internal/config"
	"github.com/sells-group/leadfinder/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP front-end for pipeline runs and exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", handleHealth)
		r.Get("/config", handleConfig)
		r.Post("/run", func(w http.ResponseWriter, req *http.Request) { handleRun(ctx, w, req) })
		r.Post("/export", handleExport)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleConfig(w http.ResponseWriter, req *http.Request) {
	c, err := loadRequestConfig(req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleRun accepts a pipeline run and executes it asynchronously, answering
// immediately with a run id. Map-browser overrides in the query string
// force-enable that source for the run.
func handleRun(serverCtx context.Context, w http.ResponseWriter, req *http.Request) {
	c, err := loadRequestConfig(req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	q := req.URL.Query()
	if parseBool(q.Get("no_enrich")) {
		c.Enrichment.FetchWebsiteForEmail = false
	}
	applyMapsOverrides(c, q.Get("gm_query"), q.Get("gm_cities"), q.Get("gm_max_results"))

	exportPath := q.Get("export")
	dryRun := parseBool(q.Get("dry_run"))
	runID := uuid.New().String()

	go func() {
		result, err := runOnce(serverCtx, c, exportPath, dryRun)
		if err != nil {
			zap.L().Error("async pipeline run failed", zap.String("run_id", runID), zap.Error(err))
			return
		}
		zap.L().Info("async pipeline run complete",
			zap.String("run_id", runID),
			zap.Int("fetched", result.Fetched),
			zap.Int("kept", result.Kept),
			zap.Int("saved", result.Saved),
		)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "run_id": runID})
}

func handleExport(w http.ResponseWriter, req *http.Request) {
	out := req.URL.Query().Get("out")
	if out == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing 'out' parameter"})
		return
	}

	c, err := loadRequestConfig(req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	st, err := store.Open(c.App.DBPath)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	defer st.Close()

	if err := st.Init(req.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if err := st.ExportCSV(req.Context(), out); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"exported_to": out})
}

// loadRequestConfig loads configuration for one request, honoring an optional
// config_path query parameter and falling back to the server's config path.
func loadRequestConfig(req *http.Request) (*config.Config, error) {
	path := req.URL.Query().Get("config_path")
	if path == "" {
		path = configPath
	}
	return config.Load(path)
}

// applyMapsOverrides force-enables the maps browser source when any override
// is supplied, mirroring the front-end's quick-run form.
func applyMapsOverrides(c *config.Config, query, cities, maxResults string) {
	if query == "" && cities == "" && maxResults == "" {
		return
	}
	gm := &c.Sources.MapsBrowser
	gm.Enabled = true
	if query != "" {
		gm.Query = query
	}
	if cities != "" {
		var parsed []string
		for _, city := range strings.Split(cities, ",") {
			if t := strings.TrimSpace(city); t != "" {
				parsed = append(parsed, t)
			}
		}
		gm.Cities = parsed
	}
	if maxResults != "" {
		if n, err := strconv.Atoi(maxResults); err == nil {
			gm.MaxResults = n
		}
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
