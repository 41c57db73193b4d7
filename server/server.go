package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Edelbertschen/taskfuchs-sub005/internal/profile"
	"github.com/Edelbertschen/taskfuchs-sub005/server/middleware"
	apiv1 "github.com/Edelbertschen/taskfuchs-sub005/server/router/api/v1"
	"github.com/Edelbertschen/taskfuchs-sub005/store"
)

type Server struct {
	Secret  string
	Profile *profile.Profile
	Store   *store.Store

	echoServer   *echo.Echo
	apiV1Service *apiv1.APIV1Service
	cancel       context.CancelFunc
	group        *errgroup.Group
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	if profile.Secret == "" {
		if !profile.IsDev() {
			return nil, errors.New("secret is required in prod mode")
		}
		profile.Secret = "taskfuchs-dev-secret"
		slog.Warn("no secret configured, using the development secret")
	}

	s := &Server{
		Secret:  profile.Secret,
		Profile: profile,
		Store:   store,
	}
	s.apiV1Service = apiv1.NewAPIV1Service(s.Secret, profile, store)

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.HTTPErrorHandler = apiv1.HTTPErrorHandler
	// Order matters: the request logger must see the status written after a recovered panic.
	echoServer.Use(middleware.RequestLogger(slog.Default(), s.apiV1Service.Metrics))
	echoServer.Use(echomiddleware.RecoverWithConfig(echomiddleware.RecoverConfig{
		DisableStackAll:   true,
		DisablePrintStack: !profile.IsDev(),
	}))
	bodyLimit := profile.BodyLimit
	if bodyLimit == "" {
		bodyLimit = "1M"
	}
	echoServer.Use(echomiddleware.BodyLimit(bodyLimit))
	s.echoServer = echoServer

	s.apiV1Service.RegisterRoutes(echoServer)

	return s, nil
}

// Start listens on the configured address and serves until Shutdown or a listener error.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener. It returns once the server and its background jobs are running.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	ctx, s.cancel = context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)
	s.group = group

	s.echoServer.Listener = listener
	group.Go(func() error {
		if err := s.echoServer.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "failed to start echo server")
		}
		return nil
	})
	group.Go(func() error {
		s.apiV1Service.RateLimiter.Run(ctx, time.Minute)
		return nil
	})

	slog.Info("server started",
		slog.String("address", listener.Addr().String()),
		slog.String("mode", s.Profile.Mode),
		slog.String("driver", s.Profile.Driver),
		slog.String("version", s.Profile.Version))
	return nil
}

// Wait blocks until the server stops and returns the first serving error.
func (s *Server) Wait() error {
	if s.group == nil {
		return nil
	}
	return s.group.Wait()
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slog.Info("server shutting down")

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	if s.cancel != nil {
		s.cancel()
	}
	if err := s.Wait(); err != nil {
		slog.Error("server stopped with error", slog.String("error", err.Error()))
	}

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", slog.String("error", err.Error()))
	}

	snapshot := s.apiV1Service.Metrics.Snapshot()
	slog.Info("server stopped properly",
		slog.Int64("requests", snapshot.RequestTotal),
		slog.Int64("failed", snapshot.RequestFailed),
		slog.Float64("success_rate", snapshot.SuccessRate()),
		slog.Duration("p95", snapshot.P95Duration))
}
