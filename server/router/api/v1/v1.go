package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/Edelbertschen/taskfuchs-sub005/internal/profile"
	"github.com/Edelbertschen/taskfuchs-sub005/server/auth"
	"github.com/Edelbertschen/taskfuchs-sub005/server/internal/observability"
	"github.com/Edelbertschen/taskfuchs-sub005/server/middleware"
	"github.com/Edelbertschen/taskfuchs-sub005/server/service/viewstate"
	"github.com/Edelbertschen/taskfuchs-sub005/store"
)

type APIV1Service struct {
	Secret           string
	Profile          *profile.Profile
	Store            *store.Store
	ViewStateService viewstate.Service
	RateLimiter      *middleware.RateLimiter
	Metrics          *observability.Metrics

	authenticator *auth.Authenticator
	startedAt     time.Time
}

func NewAPIV1Service(secret string, profile *profile.Profile, store *store.Store) *APIV1Service {
	return &APIV1Service{
		Secret:           secret,
		Profile:          profile,
		Store:            store,
		ViewStateService: viewstate.NewService(store),
		RateLimiter:      middleware.NewRateLimiter(profile.RateLimitRPS, profile.RateLimitBurst),
		Metrics:          observability.NewMetrics(1000),
		authenticator:    auth.NewAuthenticator(secret),
		startedAt:        time.Now(),
	}
}

// RegisterRoutes registers the REST handlers with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	echoServer.GET("/healthz", s.Healthz)

	// CORS sits on the server, not the group: preflight requests match no route.
	// Only listed origins are answered; an empty AllowOrigins means "*" to echo.
	if len(s.Profile.CORSOrigins) > 0 {
		echoServer.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			Skipper: func(c echo.Context) bool {
				return !strings.HasPrefix(c.Request().URL.Path, "/api/")
			},
			AllowOrigins:     s.Profile.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
			AllowCredentials: true,
		}))
	}

	apiGroup := echoServer.Group("/api",
		middleware.Authenticate(s.authenticator),
		middleware.RateLimit(s.RateLimiter),
	)
	apiGroup.GET("/view-state", s.GetViewState)
	apiGroup.PUT("/view-state", s.ReplaceViewState)
	apiGroup.PATCH("/view-state", s.PatchViewState)
	if len(s.Profile.MetricsUsers) > 0 {
		apiGroup.GET("/system/metrics", s.GetMetricsOverview)
	}
}

// Healthz reports that the server is up. It does not touch storage.
func (*APIV1Service) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
