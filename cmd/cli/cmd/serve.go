package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/accelbench/specbench/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve loaded results over HTTP",
	Long: `Serve the loaded results as JSON on read-only endpoints:

  GET /healthz
  GET /api/v1/accuracy?model=&limit=
  GET /api/v1/sd?model=&limit=
  GET /api/v1/loadtests?model=&limit=

Examples:
  specbench serve --db results.db --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

const shutdownTimeout = 5 * time.Second

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", serveAddr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           api.NewServer(store, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.WithField("addr", ln.Addr().String()).Info("specbench API server starting")
	return serve(ctx, srv, ln)
}

// serve runs srv on ln until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
