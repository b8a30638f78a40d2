package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mintvault/catalog-cli/internal/model"
	"github.com/mintvault/catalog-cli/internal/reconcile"
	"github.com/mintvault/catalog-cli/internal/review"
	"github.com/mintvault/catalog-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP facade for the admin dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(st),
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutCtx)
		})

		return g.Wait()
	},
}

func newRouter(st store.Store) http.Handler {
	rev := reviewService(st)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/map/run", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Marketplace string `json:"marketplace"`
			BatchSize   int    `json:"batch_size"`
			AutoVerify  *bool  `json:"auto_verify"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		marketplace := model.Marketplace(body.Marketplace)
		if !marketplace.Valid() || marketplace == model.MarketplaceUPC {
			writeError(w, http.StatusBadRequest, "marketplace must be tcgplayer or cardtrader")
			return
		}

		batchSize := body.BatchSize
		if batchSize <= 0 {
			batchSize = cfg.Map.BatchSize
		}
		autoVerify := cfg.Map.AutoVerify
		if body.AutoVerify != nil {
			autoVerify = *body.AutoVerify
		}

		m, err := newMapperFor(st, marketplace, autoVerify)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		summary, err := m.RunBatch(req.Context(), batchSize)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, summary)
	})

	r.Post("/api/reconcile/run", func(w http.ResponseWriter, req *http.Request) {
		pipeline := reconcile.New(st, feedSource(), rev, reconcile.Config{
			Threshold: cfg.Match.StagingThreshold,
		})
		summary, err := pipeline.Run(req.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, summary)
	})

	r.Get("/api/staged", func(w http.ResponseWriter, req *http.Request) {
		staged, err := st.ListStaged(req.Context(), 100)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if staged == nil {
			staged = []model.StagedCandidate{}
		}
		writeJSON(w, http.StatusOK, staged)
	})

	r.Post("/api/staged/{id}/approve", func(w http.ResponseWriter, req *http.Request) {
		decision, err := rev.Approve(req.Context(), chi.URLParam(req, "id"))
		writeDecision(w, decision, err)
	})

	r.Post("/api/staged/{id}/reject", func(w http.ResponseWriter, req *http.Request) {
		decision, err := rev.Reject(req.Context(), chi.URLParam(req, "id"))
		writeDecision(w, decision, err)
	})

	return r
}

func writeDecision(w http.ResponseWriter, decision review.Decision, err error) {
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusOK
	if !decision.Success {
		status = http.StatusNotFound
	}
	writeJSON(w, status, decision)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
