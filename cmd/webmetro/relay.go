package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Tangent128/webmetro/channel"
	"github.com/Tangent128/webmetro/httpapi"
	"github.com/Tangent128/webmetro/internal/logging"
)

var relayCmd = &cobra.Command{
	Use:   "relay <addr>",
	Short: "Hosts an HTTP-based relay server",
	Args:  cobra.ExactArgs(1),
	RunE:  runRelay,
}

func runRelay(cmd *cobra.Command, args []string) error {
	addr := args[0]
	log := logging.Component("relay")

	registry := channel.NewRegistry()
	handler := httpapi.NewHandler(registry)
	srv := &http.Server{Addr: addr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("binding", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
