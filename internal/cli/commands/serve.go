package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nonibytes/pgfulltext/internal/cliutil"
	"github.com/nonibytes/pgfulltext/internal/server"
	"github.com/nonibytes/pgfulltext/pgfulltext/connection"
)

const shutdownTimeout = 10 * time.Second

func NewServeCommand(env *cliutil.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve queries over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			opts := env.Options()
			opts.Metrics = connection.NewMetrics(reg)

			svc, err := env.OpenService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			srv := &http.Server{
				Addr:              env.Settings.Listen,
				Handler:           server.New(svc, env.Log, reg).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				env.Log.WithField("listen", srv.Addr).Info("serving")
				if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				env.Log.Info("shutting down")
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
}
