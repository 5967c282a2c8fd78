package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/access"
)

// recordFunc loads the scoped access record (ownership / enrollment) for the
// resource addressed by the request.
type recordFunc func(ctx echo.Context) (*access.Record, error)

// accessMiddleware guards a route with the policy table: it resolves the
// principal through the checker and denies with 401 (unauthenticated) or 403
// (any other reason) before the handler runs.
func accessMiddleware(checker *access.Checker, resource, action string, recordFns ...recordFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			reqCtx := ctx.Request().Context()
			if claims, err := getContextClaims(ctx); err == nil {
				reqCtx = contextWithClaims(reqCtx, claims)
			}

			var rec []*access.Record
			if len(recordFns) > 0 {
				r, err := recordFns[0](ctx)
				if err != nil {
					return errors.Wrap(err, "loading access record")
				}
				if r != nil {
					rec = append(rec, r)
				}
			}

			decision := checker.Can(reqCtx, resource, action, rec...)
			if decision.Can {
				return next(ctx)
			}
			if decision.Reason == access.ReasonNotAuthenticated {
				return echo.NewHTTPError(http.StatusUnauthorized, decision.Reason)
			}
			return echo.NewHTTPError(http.StatusForbidden, decision.Reason)
		}
	}
}

// roleMiddleware gates a route section by a role allow-list, straight off the
// JWT claims without a user lookup.
func roleMiddleware(roles ...access.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.principal().HasAnyRole(roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
