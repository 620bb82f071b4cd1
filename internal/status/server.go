// Package status serves the progress of a running estimation: Prometheus
// metrics and the current statistics over HTTP, and the gRPC health
// protocol for supervisors.
package status

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/francoispqt/gojay"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/qcmdpc/qcmdpc-dfr/harness"
	"github.com/qcmdpc/qcmdpc-dfr/internal/paramline"
	"github.com/qcmdpc/qcmdpc-dfr/internal/report"
)

// ServiceName is the gRPC health service of the estimator.
const ServiceName = "qcmdpc.dfr"

const shutdownTimeout = 5 * time.Second

// Source is the running estimation, usually a *harness.Runner.
type Source interface {
	Snapshot() harness.Stats
	Elapsed() time.Duration
}

type Server struct {
	line    paramline.Line
	src     Source
	reg     *prometheus.Registry
	log     *slog.Logger
	health  *health.Server
	serving atomic.Bool
	router  http.Handler
	tls     *tls.Config
}

// New builds the server. reg holds the collectors exposed on /metrics.
func New(line paramline.Line, src Source, reg *prometheus.Registry, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		line:   line,
		src:    src,
		reg:    reg,
		log:    log.With("component", "status"),
		health: health.NewServer(),
	}
	s.SetServing(false)
	s.router = s.createRouter()
	return s
}

func (s *Server) createRouter() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Recoverer)

	mux.Get("/healthz", s.handleHealth)
	mux.Get("/stats", s.handleStats)
	mux.Get("/stats.json", s.handleStatsJSON)
	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	return mux
}

// Handler is the HTTP side of the server.
func (s *Server) Handler() http.Handler { return s.router }

// SetServing switches both health views between SERVING and NOT_SERVING.
func (s *Server) SetServing(serving bool) {
	s.serving.Store(serving)
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// UseTLS makes Serve wrap both listeners in TLS with cfg.
func (s *Server) UseTLS(cfg *tls.Config) { s.tls = cfg }

// RegisterGRPC adds the health service to g.
func (s *Server) RegisterGRPC(g *grpc.Server) { healthpb.RegisterHealthServer(g, s.health) }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !s.serving.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"not serving"}`))
		return
	}
	w.Write([]byte(`{"status":"serving"}`))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(s.line.String() + "\n" + s.src.Snapshot().String() + "\n"))
}

func (s *Server) handleStatsJSON(w http.ResponseWriter, r *http.Request) {
	rec := report.NewRecord(s.line, s.src.Snapshot(), s.src.Elapsed(), time.Now())
	b, err := gojay.MarshalJSONObject(rec)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(b)
}

var errNoAddr = errors.New("status: no http or grpc address")

// Serve listens on the non-empty addresses among httpAddr and grpcAddr
// until ctx is done, then shuts both down.
func (s *Server) Serve(ctx context.Context, httpAddr, grpcAddr string) error {
	if httpAddr == "" && grpcAddr == "" {
		return errNoAddr
	}
	var httpLn, grpcLn net.Listener
	var err error
	if httpAddr != "" {
		if httpLn, err = net.Listen("tcp", httpAddr); err != nil {
			return err
		}
	}
	if grpcAddr != "" {
		if grpcLn, err = net.Listen("tcp", grpcAddr); err != nil {
			if httpLn != nil {
				httpLn.Close()
			}
			return err
		}
	}
	return s.serve(ctx, httpLn, grpcLn)
}

func (s *Server) serve(ctx context.Context, httpLn, grpcLn net.Listener) error {
	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	var grpcOpts []grpc.ServerOption
	if s.tls != nil {
		if httpLn != nil {
			hc := s.tls.Clone()
			hc.NextProtos = []string{"http/1.1"}
			httpLn = tls.NewListener(httpLn, hc)
		}
		grpcOpts = append(grpcOpts, grpc.Creds(credentials.NewTLS(s.tls)))
	}
	g, ctx := errgroup.WithContext(ctx)

	if httpLn != nil {
		s.log.Info("http listening", "addr", httpLn.Addr().String())
		g.Go(func() error {
			if err := srv.Serve(httpLn); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	var grpcSrv *grpc.Server
	if grpcLn != nil {
		grpcSrv = grpc.NewServer(grpcOpts...)
		s.RegisterGRPC(grpcSrv)
		s.log.Info("grpc listening", "addr", grpcLn.Addr().String())
		g.Go(func() error { return grpcSrv.Serve(grpcLn) })
	}

	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if grpcSrv != nil {
			grpcSrv.GracefulStop()
		}
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
