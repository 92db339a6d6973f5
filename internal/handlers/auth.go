package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodify/internal/apperr"
	"foodify/internal/auth"
	"foodify/internal/metrics"
	"foodify/internal/middleware"
)

// AuthDeps is everything the register, login and logout handlers use.
type AuthDeps struct {
	Users     UserStore
	Partners  FoodPartnerStore
	Tokens    TokenIssuer
	Passwords PasswordHasher
	DB        Pinger
	Cookie    auth.CookieConfig
	Metrics   *metrics.Metrics
}

var errTokenNotReady = apperr.New(apperr.KindConfiguration, "Server configuration error. Please contact administrator.")

// checkReady fails closed when tokens cannot be signed. With requireDB set it
// also pings the database, as registration does before touching it.
func (d AuthDeps) checkReady(ctx context.Context, c *gin.Context, requireDB bool) error {
	log := middleware.LoggerFrom(c)

	if err := d.Tokens.Ready(); err != nil {
		log.WithError(err).Error("session signing secret is not configured")
		return errTokenNotReady
	}
	if requireDB {
		if err := ensureDBConnection(ctx, d.DB); err != nil {
			log.WithError(err).Error("database is not reachable")
			return apperr.Wrap(apperr.KindConfiguration, "Database connection error. Please try again later.", err)
		}
	}
	return nil
}

// startSession issues a token for the account and sets the session cookie.
func (d AuthDeps) startSession(c *gin.Context, id primitive.ObjectID, role auth.Role) error {
	token, err := d.Tokens.Issue(id, role)
	if err != nil {
		if errors.Is(err, auth.ErrMissingSecret) {
			return errTokenNotReady
		}
		return apperr.Wrap(apperr.KindInternal, "Internal Server Error", err)
	}
	auth.SetSessionCookie(c, token, d.Cookie)
	return nil
}

func (d AuthDeps) hashPassword(plain string) (string, error) {
	hash, err := d.Passwords.Hash(plain)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", apperr.Validation("Password is too long", "password must be at most 72 bytes")
	}
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "Internal Server Error", err)
	}
	return hash, nil
}

func (d AuthDeps) record(role auth.Role, action string, err error) {
	if d.Metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = string(apperr.KindOf(err))
	}
	d.Metrics.AuthAttemptsTotal.WithLabelValues(string(role), action, result).Inc()
}

func fail(c *gin.Context, err error) {
	appErr := apperr.From(err)
	if appErr.Status() >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).WithError(err).WithField("kind", appErr.Kind).Error("request failed")
	}
	apperr.Abort(c, appErr)
}

func logoutHandler(cookie auth.CookieConfig, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.ClearSessionCookie(c, cookie)
		middleware.LoggerFrom(c).Debug("session cookie cleared")
		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}

func authLog(c *gin.Context, role auth.Role, email string) logrus.FieldLogger {
	return middleware.LoggerFrom(c).WithFields(logrus.Fields{"role": role, "email": email})
}
