package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/assessment-hisan/auction-backend/config"
	"github.com/assessment-hisan/auction-backend/controllers"
	"github.com/assessment-hisan/auction-backend/database"
	"github.com/assessment-hisan/auction-backend/realtime"
	"github.com/assessment-hisan/auction-backend/routes"
	"github.com/assessment-hisan/auction-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const (
	sectionsCacheTTL = 15 * time.Second
	shutdownTimeout  = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the viewer socket",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, log)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides config and PORT)")
	serveCmd.Flags().Bool("legacy-timers", false, "never cancel scheduled pool advances")
	_ = v.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = v.BindPFlag("auto_advance.legacy_timers", serveCmd.Flags().Lookup("legacy-timers"))
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	db, err := openDatabase(cfg, log, cfg.Database.AutoMigrate)
	if err != nil {
		return err
	}

	rdb, err := database.InitRedis(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	hub := realtime.NewHub(log, cfg.Realtime.SendBuffer, cfg.Server.FrontendURL)
	defer hub.Close()

	var bc realtime.Broadcaster = hub
	if rdb != nil {
		relay := realtime.NewRedisRelay(rdb, cfg.Realtime.Channel, hub, log)
		go func() {
			if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("broadcast relay stopped", "error", err)
			}
		}()
		bc = relay
	}

	snapshots := services.NewSnapshotter(db, bc, log)
	snapshotsDone := make(chan struct{})
	go func() {
		snapshots.Run(ctx)
		close(snapshotsDone)
	}()

	advancer := services.NewPoolAdvancer(db, bc, log, cfg.AutoAdvance.LegacyTimers)
	defer advancer.Stop()

	deps := services.Deps{
		DB:          db,
		Broadcaster: bc,
		Snapshots:   snapshots,
		Cache:       services.NewCache(rdb, sectionsCacheTTL, log),
		Advancer:    advancer,
		Log:         log,
	}

	if cfg.Server.ReconcileOnStart {
		if _, err := services.NewReconciler(deps).Run(ctx); err != nil {
			log.Warn("startup reconciliation failed", "error", err)
		}
	}

	if !log.Enabled(ctx, slog.LevelDebug) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRouter(routes.Handlers{
		Students: controllers.NewStudentController(services.NewStudentService(deps)),
		Teams:    controllers.NewTeamController(services.NewTeamService(deps)),
		Settings: controllers.NewTvSettingsController(services.NewSettingsService(deps)),
		Transfer: controllers.NewTransferController(services.NewTransferService(deps)),
		Viewers:  hub,
	}, cfg.Server.FrontendURL, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "legacy_timers", cfg.AutoAdvance.LegacyTimers)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	<-snapshotsDone
	log.Info("server stopped")
	return nil
}
