package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hugr-lab/aggql/auth"
	"github.com/hugr-lab/aggql/executor"
	"github.com/hugr-lab/aggql/flight"
	"github.com/hugr-lab/aggql/httpapi"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		flightAddr string
		httpAddr   string
		dbPath     string
		noHTTP     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve requests over Arrow Flight and HTTP",
		Long: "Start the Flight server and the HTTP API backed by a DuckDB database.\n" +
			"Both listeners stop on SIGINT or SIGTERM.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flightAddr == "" {
				flightAddr = a.config.FlightAddr
			}
			if httpAddr == "" {
				httpAddr = a.config.HTTPAddr
			}
			if dbPath == "" {
				dbPath = a.config.DuckDBPath
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := executor.Open(dbPath, a.logger)
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			authenticator := auth.StaticTokens(a.config.AuthTokens...)
			allocator := memory.NewGoAllocator()
			flightServer, err := flight.NewServer(flight.ServerConfig{
				Compiler:      a.compiler,
				Executor:      db,
				Allocator:     allocator,
				Logger:        a.logger,
				Authenticator: authenticator,
			})
			if err != nil {
				return err
			}
			grpcServer := flight.NewGRPCServer(flightServer)

			lis, err := net.Listen("tcp", flightAddr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", flightAddr, err)
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				a.logger.Info("Flight server listening", "addr", lis.Addr().String())
				return grpcServer.Serve(lis)
			})
			g.Go(func() error {
				<-gctx.Done()
				grpcServer.GracefulStop()
				return nil
			})

			if !noHTTP {
				httpServer := &http.Server{
					Addr: httpAddr,
					Handler: httpapi.NewHandler(httpapi.Config{
						Compiler:      a.compiler,
						Executor:      db,
						Allocator:     allocator,
						Logger:        a.logger,
						Authenticator: authenticator,
						AccessLog:     true,
					}),
					ReadHeaderTimeout: 10 * time.Second,
				}
				g.Go(func() error {
					a.logger.Info("HTTP API listening", "addr", httpAddr)
					if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
						return err
					}
					return nil
				})
				g.Go(func() error {
					<-gctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
					defer cancel()
					return httpServer.Shutdown(shutdownCtx)
				})
			}

			err = g.Wait()
			a.logger.Info("Servers stopped")
			return err
		},
	}
	cmd.Flags().StringVar(&flightAddr, "flight-addr", "", "Flight listen address (default $AGGQL_FLIGHT_ADDR or :8815)")
	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "HTTP listen address (default $AGGQL_HTTP_ADDR or :8080)")
	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database file (default $AGGQL_DUCKDB_PATH, in-memory when unset)")
	cmd.Flags().BoolVar(&noHTTP, "no-http", false, "Serve Flight only")
	return cmd
}
