// Package callback runs the loopback HTTP listener that receives the browser
// redirect of the external authentication flow and forwards it to the
// session controller as a deep-link event.
package callback

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campuskit/rollcall/internal/platform/correlation"
)

const completionPage = `<!DOCTYPE html>
<html>
<head><title>Rollcall</title></head>
<body>
<p>Sign-in received. You can close this tab and return to the terminal.</p>
</body>
</html>`

// DeepLinkHandler consumes an incoming URL delivered by the redirect.
type DeepLinkHandler func(ctx context.Context, rawURL string)

// Server is the loopback deep-link host.
type Server struct {
	echo   *echo.Echo
	addr   string
	handle DeepLinkHandler
	log    *slog.Logger
}

// NewServer creates the listener for the given address. Every incoming
// redirect is forwarded to handle; the deep-link layer decides whether it is
// an auth completion.
func NewServer(addr string, handle DeepLinkHandler, log *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, addr: addr, handle: handle, log: log}

	e.Use(middleware.Recover())
	e.Use(correlationMiddleware())
	e.GET("/auth/callback", s.handleCallback)
	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

// Start blocks serving the listener until Shutdown.
func (s *Server) Start() error {
	s.log.Info("Starting callback listener", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start callback listener: %w", err)
	}
	return nil
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleCallback(c echo.Context) error {
	raw := c.Request().RequestURI
	s.log.InfoContext(c.Request().Context(), "received auth redirect")
	s.handle(c.Request().Context(), raw)
	return c.HTML(http.StatusOK, completionPage)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// correlationMiddleware tags every request context with a fresh correlation ID.
func correlationMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
