// Package handler contains the HTTP handlers. State shared by all handlers
// (JWT utility, org defaults) is injected once from main via Init.
package handler

import (
	"net/http"

	"github.com/kaula1/bizmate/internal/apperr"
	"github.com/kaula1/bizmate/internal/session"
	"github.com/kaula1/bizmate/pkg/config"
	"github.com/kaula1/bizmate/pkg/jwtutil"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var (
	jwt *jwtutil.JWTUtil
	cfg *config.Config
)

// Init wires the JWT utility and configuration into the handler package.
// Must be called before any route is served.
func Init(jwtUtil *jwtutil.JWTUtil, conf *config.Config) {
	jwt = jwtUtil
	cfg = conf
}

// sessionFrom pulls the request's session context, set by the org-context
// middleware.
func sessionFrom(c echo.Context) (*session.Context, bool) {
	sess, ok := c.Get("session").(*session.Context)
	return sess, ok
}

// serviceError translates a service failure into a JSON response. Internal
// failures get a generic message; client faults echo the service error.
func serviceError(c echo.Context, log *zap.Logger, err error, op string) error {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Error(op+" failed", zap.Error(err))
		return c.JSON(status, echo.Map{"error": op + " failed"})
	}
	log.Warn(op+" rejected", zap.Error(err))
	return c.JSON(status, echo.Map{"error": err.Error()})
}
