package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"foodify/internal/apperr"
	"foodify/internal/auth"
	"foodify/internal/models"
	"foodify/internal/repository"
)

type RegisterUserRequest struct {
	FullName string `json:"fullName" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,notblank,email"`
	Password string `json:"password" binding:"required,notblank"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,notblank"`
	Password string `json:"password" binding:"required,notblank"`
}

func (r *RegisterUserRequest) normalize() { r.Email = normalizeEmail(r.Email) }

func (r *LoginRequest) normalize() { r.Email = normalizeEmail(r.Email) }

func RegisterUser(deps AuthDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := registerUser(c, deps)
		deps.record(auth.RoleUser, "register", err)
		if err != nil {
			fail(c, err)
		}
	}
}

func registerUser(c *gin.Context, deps AuthDeps) error {
	var req RegisterUserRequest
	if err := bindJSON(c, &req, "All fields are required (fullName, email, password)"); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := deps.checkReady(ctx, c, true); err != nil {
		return err
	}

	email := req.Email
	log := authLog(c, auth.RoleUser, email)

	_, err := deps.Users.FindByEmail(ctx, email)
	if err == nil {
		return apperr.New(apperr.KindDuplicateAccount, "User already exists with this email")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return apperr.Wrap(apperr.KindInternal, "Internal Server Error", err)
	}

	hash, err := deps.hashPassword(req.Password)
	if err != nil {
		return err
	}

	user := &models.User{FullName: req.FullName, Email: email, PasswordHash: hash}
	if err := deps.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperr.New(apperr.KindDuplicateAccount, "User already exists with this email")
		}
		return apperr.Wrap(apperr.KindInternal, "Internal Server Error", err)
	}

	if err := deps.startSession(c, user.ID, auth.RoleUser); err != nil {
		return err
	}

	log.WithField("user_id", user.ID.Hex()).Info("user registered")
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user.Public(),
	})
	return nil
}

func LoginUser(deps AuthDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := loginUser(c, deps)
		deps.record(auth.RoleUser, "login", err)
		if err != nil {
			fail(c, err)
		}
	}
}

func loginUser(c *gin.Context, deps AuthDeps) error {
	var req LoginRequest
	if err := bindJSON(c, &req, "Email and password are required"); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := deps.checkReady(ctx, c, false); err != nil {
		return err
	}

	email := req.Email
	user, err := deps.Users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.New(apperr.KindNotFound, "User not found with this email").WithStatus(http.StatusBadRequest)
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "Internal Server Error", err)
	}

	if !deps.Passwords.Verify(req.Password, user.PasswordHash) {
		authLog(c, auth.RoleUser, email).Info("login rejected: wrong password")
		return apperr.New(apperr.KindInvalidCredentials, "Password is incorrect")
	}

	if err := deps.startSession(c, user.ID, auth.RoleUser); err != nil {
		return err
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User logged in successfully",
		"user":    user.Public(),
	})
	return nil
}

func LogoutUser(deps AuthDeps) gin.HandlerFunc {
	return logoutHandler(deps.Cookie, "User logged out successfully")
}
