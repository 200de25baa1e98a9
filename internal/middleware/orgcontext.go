package middleware

import (
	"errors"
	"net/http"

	"github.com/kaula1/bizmate/internal/apperr"
	"github.com/kaula1/bizmate/internal/session"
	"github.com/kaula1/bizmate/pkg/jwtutil"
	"github.com/kaula1/bizmate/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrgContextMiddleware builds the per-request session.Context for the
// authenticated user: it loads the active membership set and resolves the
// current organization from the durable selection. Handlers retrieve it with
// SessionFromEcho. Apply after JWTAuthMiddleware.
func OrgContextMiddleware(db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			claims, ok := c.Get("user").(*jwtutil.UserClaims)
			if !ok {
				log.Error("Failed to get user claims from context")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			sess := session.NewContext(db, claims.UserID)
			if _, err := sess.Load(c.Request().Context()); err != nil {
				if errors.Is(err, apperr.ErrDataAccess) {
					log.Error("Failed to load memberships", zap.Error(err))
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load memberships"})
				}
				return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": err.Error()})
			}

			c.Set("session", sess)
			return next(c)
		}
	}
}

// RequireOrganization rejects requests whose session has no current
// organization. Tenant-scoped route groups apply it after
// OrgContextMiddleware.
func RequireOrganization() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, ok := c.Get("session").(*session.Context)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			if _, err := sess.CurrentOrgID(); err != nil {
				logger.FromEcho(c).Warn("Tenant-scoped request without organization",
					zap.Uint("user_id", sess.UserID()))
				return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": "no organization selected"})
			}
			return next(c)
		}
	}
}

// SessionFromEcho retrieves the request's session.Context.
func SessionFromEcho(c echo.Context) (*session.Context, bool) {
	sess, ok := c.Get("session").(*session.Context)
	return sess, ok
}
