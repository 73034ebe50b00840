package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/example/nodeplugin/pkg/logger"
	"github.com/example/nodeplugin/pkg/plugin"
	"github.com/example/nodeplugin/pkg/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// ServeOptions are the settings of a plugin process.
type ServeOptions struct {
	Port          int
	ServerURL     string
	Kind          string
	Advertise     string
	MaxMessageMB  int
	MetricsAddr   string
	OTLP          bool
	StrictOutputs bool
	Debug         bool
}

// NewServeCommand returns the root command of a plugin binary: it serves p
// until SIGINT or SIGTERM.
func NewServeCommand(p plugin.Plugin) *cobra.Command {
	opts := ServeOptions{}
	md := p.Metadata()
	short := md.Description
	if short == "" {
		short = md.Name
	}

	cmd := &cobra.Command{
		Use:          filepath.Base(os.Args[0]),
		Short:        short,
		Version:      md.Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return Serve(ctx, p, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.Port, "port", 50051, "The server port")
	flags.StringVar(&opts.ServerURL, "server", "", "Host registry URL to register with, e.g. http://localhost:3001")
	flags.StringVar(&opts.Kind, "kind", "", "Kind to register as (defaults to the plugin name)")
	flags.StringVar(&opts.Advertise, "advertise", "", "Endpoint announced to the host (defaults to localhost:<port>)")
	flags.IntVar(&opts.MaxMessageMB, "max-message-mb", DefaultMaxMessageSize>>20, "Maximum message size in MiB")
	flags.StringVar(&opts.MetricsAddr, "metrics-addr", "", "Address of the prometheus /metrics endpoint, disabled when empty")
	flags.BoolVar(&opts.OTLP, "otlp", false, "Export traces over OTLP/HTTP")
	flags.BoolVar(&opts.StrictOutputs, "strict-outputs", false, "Fail runs whose output does not match the declared outputs")
	flags.BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	return cmd
}

// Serve runs p on opts.Port until ctx is done.
func Serve(ctx context.Context, p plugin.Plugin, opts ServeOptions) error {
	lis, err := plugin.Listen(opts.Port)
	if err != nil {
		return err
	}
	return ServeListener(ctx, p, lis, opts)
}

// ServeListener runs p on lis until ctx is done, then stops gracefully.
func ServeListener(ctx context.Context, p plugin.Plugin, lis net.Listener, opts ServeOptions) error {
	logger.SetDebug(opts.Debug)
	defer logger.Sync()
	log := logger.NewLogger("serve")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	serverOpts := []Option{WithMetrics(NewMetrics(registry))}
	if opts.StrictOutputs {
		serverOpts = append(serverOpts, WithStrictOutputs())
	}
	srv, err := NewServer(p, serverOpts...)
	if err != nil {
		lis.Close()
		return fmt.Errorf("failed to create plugin server: %w", err)
	}
	md := srv.Metadata()

	if opts.OTLP {
		tp, err := tracing.NewTracerProvider(ctx, md.Name)
		if err != nil {
			lis.Close()
			return fmt.Errorf("failed to set up tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
	}

	maxMessage := opts.MaxMessageMB << 20
	if maxMessage <= 0 {
		maxMessage = DefaultMaxMessageSize
	}
	gs := plugin.NewGRPCServer(maxMessage)
	srv.Register(gs)
	healthServer := plugin.StartHealthServer(gs)

	if opts.MetricsAddr != "" {
		metricsServer := &http.Server{
			Addr:              opts.MetricsAddr,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("metrics server failed", "err", err)
			}
		}()
		defer metricsServer.Close()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- gs.Serve(lis)
	}()
	log.Infow("plugin listening", "plugin", md.Name, "version", md.Version, "address", lis.Addr().String())

	if opts.ServerURL != "" {
		go register(ctx, opts, md.Name, lis.Addr(), srv)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down", "active_runs", srv.ActiveRuns())
	healthServer.Shutdown()

	stopped := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownTimeout):
		log.Warnw("graceful stop timed out, closing open streams")
		gs.Stop()
	}
	return nil
}

func register(ctx context.Context, opts ServeOptions, name string, addr net.Addr, srv *Server) {
	log := logger.NewLogger("serve")

	kind := opts.Kind
	if kind == "" {
		kind = name
	}
	endpoint := opts.Advertise
	if endpoint == "" {
		port := opts.Port
		if tcp, ok := addr.(*net.TCPAddr); ok {
			port = tcp.Port
		}
		endpoint = fmt.Sprintf("localhost:%d", port)
	}

	reg := plugin.RegistrationFor(srv.Metadata(), kind, endpoint)
	if err := plugin.NewRegistrar(opts.ServerURL, 0, 0).Register(ctx, reg); err != nil {
		log.Warnw("could not register plugin", "server", opts.ServerURL, "err", err)
	}
}
