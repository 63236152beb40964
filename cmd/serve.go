package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/moviesearch/internal/config"
	"github.com/ziadkadry99/moviesearch/internal/dashboard"
	"github.com/ziadkadry99/moviesearch/internal/db"
	"github.com/ziadkadry99/moviesearch/internal/history"
	"github.com/ziadkadry99/moviesearch/internal/search"
	"github.com/ziadkadry99/moviesearch/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the movie search web page and JSON API",
	Long:  `Serves the search page with result-count and minimum-rating sliders, plus /api/search, /ws/search, /api/stats and the history API.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		handle := newStoreHandle(cfg)
		defer handle.Close()
		service := search.NewService(handle, logger)

		database, hist, err := openHistory(cfg)
		if err != nil {
			logger.Warn("history disabled", "error", err)
		} else if hist != nil {
			defer database.Close()
			service.WithHistory(hist, "web")
		}

		srv, err := newWebServer(cfg, service, database, hist)
		if err != nil {
			return err
		}

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		// The store opens on the first request.
		fmt.Fprintf(os.Stderr, "moviesearch %s: serving collection %q\n", Version, cfg.Collection)
		fmt.Fprintf(os.Stderr, "Open http://localhost:%d\n", cfg.Server.Port)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// newWebServer wires the dashboard and, when enabled, the history API.
// database and hist may be nil.
func newWebServer(cfg *config.Config, service *search.Service, database *db.DB, hist *history.Store) (*server.Server, error) {
	srv := server.New(server.Config{
		Port:     cfg.Server.Port,
		AllowAll: cfg.Server.AllowAll,
	}, database, logger)

	dash, err := dashboard.New(service, cfg.Collection, logger)
	if err != nil {
		return nil, err
	}
	dash.RegisterRoutes(srv.Router())
	if hist != nil {
		history.RegisterRoutes(srv.Router(), hist)
	}
	return srv, nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8501, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
