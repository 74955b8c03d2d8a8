package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alium-swap/ledger/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the node releasing the redistribution pool periodically",
		Args:  cobra.NoArgs,
		RunE:  runStart,
	}
}

func runStart(cmd *cobra.Command, args []string) error {
	n, err := openNode(cmd)
	if err != nil {
		return err
	}
	defer n.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if n.cfg.MetricsAddr != "" {
		listener, err := net.Listen("tcp", n.cfg.MetricsAddr)
		if err != nil {
			return errors.Wrapf(errors.ErrInvalidInput, "metrics listener: %s", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			n.logger.Info("metrics server listening", "address", listener.Addr().String())
			if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
				n.logger.Error("metrics server failed", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	scheduler, err := n.app.NewScheduler(n.cfg.Interval())
	if err != nil {
		return err
	}
	scheduler.Start(ctx)
	n.logger.Info("node started", "interval", n.cfg.Interval().String())

	<-ctx.Done()
	n.logger.Info("shutdown signal received")
	<-scheduler.Done()
	return nil
}
