package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodify/internal/apperr"
	"foodify/internal/auth"
	"foodify/internal/repository"
)

const (
	ContextUser        = "user"
	ContextFoodPartner = "foodPartner"
)

const lookupTimeout = 5 * time.Second

var roleDeniedMessage = map[auth.Role]string{
	auth.RoleUser:        "Access denied! Only users can perform this action.",
	auth.RoleFoodPartner: "Access denied! Only food partners can perform this action.",
}

// TokenVerifier is satisfied by *auth.TokenManager.
type TokenVerifier interface {
	Ready() error
	Verify(token string) (*auth.Claims, error)
}

// sessionToken reads the session cookie, falling back to a Bearer header for
// non-browser clients.
func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(auth.SessionCookieName); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie)
	}

	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.Fields(raw)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// authenticate runs the token half of the auth state machine and returns the
// account id for the given role. On failure the request is already aborted.
func authenticate(c *gin.Context, tokens TokenVerifier, role auth.Role) (primitive.ObjectID, bool) {
	log := LoggerFrom(c)

	if err := tokens.Ready(); err != nil {
		log.WithError(err).Error("auth middleware is not configured")
		apperr.Abort(c, apperr.Wrap(apperr.KindConfiguration, "Internal server error", err))
		return primitive.NilObjectID, false
	}

	raw := sessionToken(c)
	if raw == "" {
		apperr.Abort(c, apperr.New(apperr.KindAuthRequired, "Please login first"))
		return primitive.NilObjectID, false
	}

	claims, err := tokens.Verify(raw)
	if err != nil {
		log.WithError(err).Debug("session token rejected")
		apperr.Abort(c, apperr.New(apperr.KindAuthRequired, "Invalid or expired token"))
		return primitive.NilObjectID, false
	}

	if claims.Role != role {
		log.WithFields(logrus.Fields{"want": role, "got": claims.Role}).Info("session role mismatch")
		apperr.Abort(c, apperr.New(apperr.KindForbidden, roleDeniedMessage[role]))
		return primitive.NilObjectID, false
	}

	id, err := claims.AccountID()
	if err != nil {
		apperr.Abort(c, apperr.New(apperr.KindAuthRequired, "Invalid token"))
		return primitive.NilObjectID, false
	}
	return id, true
}

// resolve loads the account, aborting with missKind when it does not exist.
func resolve[T any](c *gin.Context, id primitive.ObjectID, find func(context.Context, primitive.ObjectID) (*T, error), missKind apperr.Kind, missMessage string) (*T, bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), lookupTimeout)
	defer cancel()

	account, err := find(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			apperr.Abort(c, apperr.New(missKind, missMessage))
			return nil, false
		}
		LoggerFrom(c).WithError(err).Error("account lookup failed")
		apperr.Abort(c, apperr.Wrap(apperr.KindInternal, "Internal server error", err))
		return nil, false
	}
	if account == nil {
		apperr.Abort(c, apperr.New(missKind, missMessage))
		return nil, false
	}
	return account, true
}
