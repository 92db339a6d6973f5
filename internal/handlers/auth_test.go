package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodify/internal/auth"
)

func TestRegisterFoodPartnerScenario(t *testing.T) {
	env := newTestEnv(t)

	res := env.postJSON(t, "/api/auth/food-partner/register", map[string]string{
		"name":        "Tasty Bites",
		"email":       "a@b.com",
		"password":    "secret1",
		"phone":       "555",
		"address":     "1 Main St",
		"contactName": "Jane",
	}, "")

	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	body := res.json(t)
	assert.Equal(t, "Food partner registered successfully", body["message"])

	partner := body["foodPartner"].(map[string]interface{})
	assert.Equal(t, "a@b.com", partner["email"])
	assert.Equal(t, "Tasty Bites", partner["name"])
	assert.NotEmpty(t, partner["_id"])
	assert.NotContains(t, partner, "password")
	assert.NotContains(t, res.Body.String(), "secret1")

	cookie := res.sessionCookie()
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)

	claims, err := env.tokens.Verify(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleFoodPartner, claims.Role)

	stored, err := env.partners.FindByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$2"))
}

func TestRegisterUser(t *testing.T) {
	env := newTestEnv(t)

	res := env.postJSON(t, "/api/auth/user/register", map[string]string{
		"fullName": "Ada Lovelace",
		"email":    "  Ada@Example.COM ",
		"password": "secret1",
	}, "")

	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	body := res.json(t)
	assert.Equal(t, "User registered successfully", body["message"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "ada@example.com", user["email"])
	assert.Equal(t, "Ada Lovelace", user["fullName"])
	assert.NotContains(t, user, "password")
	assert.NotNil(t, res.sessionCookie())

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.AuthAttemptsTotal.WithLabelValues("user", "register", "success")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "dup@x.com")

	res := env.postJSON(t, "/api/auth/user/register", map[string]string{
		"fullName": "Someone Else",
		"email":    "DUP@x.com",
		"password": "other-pass",
	}, "")

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "duplicate_account", res.json(t)["error"])
	assert.Nil(t, res.sessionCookie())

	env.registerPartner(t, "dup@x.com")
	res = env.postJSON(t, "/api/auth/food-partner/register", map[string]string{
		"name": "X", "email": "dup@x.com", "password": "p", "phone": "1", "address": "a", "contactName": "c",
	}, "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "duplicate_account", res.json(t)["error"])
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name        string
		path        string
		body        map[string]string
		wantDetails []string
	}{
		{
			name:        "user missing everything",
			path:        "/api/auth/user/register",
			body:        map[string]string{},
			wantDetails: []string{"fullName is required", "email is required", "password is required"},
		},
		{
			name:        "user blank name",
			path:        "/api/auth/user/register",
			body:        map[string]string{"fullName": "   ", "email": "a@x.com", "password": "p"},
			wantDetails: []string{"fullName is required"},
		},
		{
			name:        "user malformed email",
			path:        "/api/auth/user/register",
			body:        map[string]string{"fullName": "A", "email": "not-an-email", "password": "p"},
			wantDetails: []string{"email is invalid"},
		},
		{
			name:        "partner missing contact",
			path:        "/api/auth/food-partner/register",
			body:        map[string]string{"name": "X", "email": "x@x.com", "password": "p", "phone": "1", "address": "a"},
			wantDetails: []string{"contactName is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.postJSON(t, tt.path, tt.body, "")

			assert.Equal(t, http.StatusBadRequest, res.Code)
			body := res.json(t)
			assert.Equal(t, "validation_error", body["error"])
			details, _ := body["details"].([]interface{})
			got := make([]string, 0, len(details))
			for _, d := range details {
				got = append(got, d.(string))
			}
			assert.ElementsMatch(t, tt.wantDetails, got)
		})
	}

	assert.Equal(t, 0, env.users.calls)
}

func TestRegisterFailsClosed(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		env := newTestEnv(t, withTokens(auth.NewTokenManager("", time.Hour)))

		res := env.postJSON(t, "/api/auth/user/register", map[string]string{
			"fullName": "A", "email": "a@x.com", "password": "secret1",
		}, "")

		assert.Equal(t, http.StatusInternalServerError, res.Code)
		assert.Equal(t, "configuration_error", res.json(t)["error"])
		assert.Equal(t, 0, env.users.calls)
	})

	t.Run("database unreachable", func(t *testing.T) {
		env := newTestEnv(t)
		env.dbErr = errBoom

		res := env.postJSON(t, "/api/auth/food-partner/register", map[string]string{
			"name": "X", "email": "x@x.com", "password": "p", "phone": "1", "address": "a", "contactName": "c",
		}, "")

		assert.Equal(t, http.StatusInternalServerError, res.Code)
		body := res.json(t)
		assert.Equal(t, "configuration_error", body["error"])
		assert.NotContains(t, body, "details")
	})
}

func TestRegisterPaddedEmail(t *testing.T) {
	env := newTestEnv(t)

	res := env.postJSON(t, "/api/auth/food-partner/register", map[string]string{
		"name":        "Tasty Bites",
		"email":       "\tChef@Example.COM  ",
		"password":    "secret1",
		"phone":       "555",
		"address":     "1 Main St",
		"contactName": "Jane",
	}, "")

	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	partner := res.json(t)["foodPartner"].(map[string]interface{})
	assert.Equal(t, "chef@example.com", partner["email"])

	_, err := env.partners.FindByEmail(context.Background(), "chef@example.com")
	assert.NoError(t, err)
}

func TestRegisterMalformedEmailMessage(t *testing.T) {
	env := newTestEnv(t)

	res := env.postJSON(t, "/api/auth/user/register", map[string]string{
		"fullName": "Ada",
		"email":    " not-an-email ",
		"password": "secret1",
	}, "")

	require.Equal(t, http.StatusBadRequest, res.Code)
	body := res.json(t)
	assert.Equal(t, "Invalid email", body["message"])
	assert.Equal(t, []interface{}{"email is invalid"}, body["details"])
	assert.Equal(t, 0, env.users.calls)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "user@x.com")
	env.registerPartner(t, "partner@x.com")

	tests := []struct {
		name       string
		path       string
		email      string
		password   string
		wantStatus int
		wantKind   string
		wantRole   auth.Role
	}{
		{name: "user ok", path: "/api/auth/user/login", email: "USER@x.com", password: "secret1", wantStatus: 201, wantRole: auth.RoleUser},
		{name: "user wrong password", path: "/api/auth/user/login", email: "user@x.com", password: "secret2", wantStatus: 400, wantKind: "invalid_credentials"},
		{name: "user unknown email", path: "/api/auth/user/login", email: "ghost@x.com", password: "secret1", wantStatus: 400, wantKind: "not_found"},
		{name: "user missing password", path: "/api/auth/user/login", email: "user@x.com", wantStatus: 400, wantKind: "validation_error"},
		{name: "partner padded email", path: "/api/auth/food-partner/login", email: "  Partner@X.com ", password: "secret1", wantStatus: 201, wantRole: auth.RoleFoodPartner},
		{name: "partner ok", path: "/api/auth/food-partner/login", email: "partner@x.com", password: "secret1", wantStatus: 201, wantRole: auth.RoleFoodPartner},
		{name: "partner wrong password", path: "/api/auth/food-partner/login", email: "partner@x.com", password: "nope", wantStatus: 400, wantKind: "invalid_credentials"},
		{name: "user account on partner login", path: "/api/auth/food-partner/login", email: "user@x.com", password: "secret1", wantStatus: 400, wantKind: "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.postJSON(t, tt.path, map[string]string{"email": tt.email, "password": tt.password}, "")

			require.Equal(t, tt.wantStatus, res.Code, res.Body.String())
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, res.json(t)["error"])
				assert.Nil(t, res.sessionCookie())
				return
			}
			cookie := res.sessionCookie()
			require.NotNil(t, cookie)
			claims, err := env.tokens.Verify(cookie.Value)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, claims.Role)
		})
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t)
	session, _ := env.registerUser(t, "bye@x.com")

	for path, message := range map[string]string{
		"/api/auth/user/logout":         "User logged out successfully",
		"/api/auth/food-partner/logout": "Food partner logged out successfully",
	} {
		res := env.postJSON(t, path, nil, session)

		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, message, res.json(t)["message"])
		cookie := res.sessionCookie()
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.True(t, cookie.MaxAge < 0)
	}

	res := env.postJSON(t, "/api/auth/user/logout", nil, "")
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestLoginInternalErrorHidesDetails(t *testing.T) {
	env := newTestEnv(t)
	env.users.err = errBoom

	res := env.postJSON(t, "/api/auth/user/login", map[string]string{"email": "a@x.com", "password": "p"}, "")

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	body := res.json(t)
	assert.Equal(t, "internal_error", body["error"])
	assert.NotContains(t, res.Body.String(), "boom")
}
