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

type RegisterFoodPartnerRequest struct {
	Name        string `json:"name" binding:"required,notblank"`
	Email       string `json:"email" binding:"required,notblank,email"`
	Password    string `json:"password" binding:"required,notblank"`
	Phone       string `json:"phone" binding:"required,notblank"`
	Address     string `json:"address" binding:"required,notblank"`
	ContactName string `json:"contactName" binding:"required,notblank"`
}

func (r *RegisterFoodPartnerRequest) normalize() { r.Email = normalizeEmail(r.Email) }

func RegisterFoodPartner(deps AuthDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := registerFoodPartner(c, deps)
		deps.record(auth.RoleFoodPartner, "register", err)
		if err != nil {
			fail(c, err)
		}
	}
}

func registerFoodPartner(c *gin.Context, deps AuthDeps) error {
	var req RegisterFoodPartnerRequest
	if err := bindJSON(c, &req, "All fields are required (name, email, password, phone, address, contactName)"); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := deps.checkReady(ctx, c, true); err != nil {
		return err
	}

	email := req.Email

	_, err := deps.Partners.FindByEmail(ctx, email)
	if err == nil {
		return apperr.New(apperr.KindDuplicateAccount, "Food partner account already exists with this email")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return apperr.Wrap(apperr.KindInternal, "Internal Server Error", err)
	}

	hash, err := deps.hashPassword(req.Password)
	if err != nil {
		return err
	}

	partner := &models.FoodPartner{
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Address:      req.Address,
		ContactName:  req.ContactName,
	}
	if err := deps.Partners.Create(ctx, partner); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperr.New(apperr.KindDuplicateAccount, "Food partner account already exists with this email")
		}
		return apperr.Wrap(apperr.KindInternal, "Internal Server Error", err)
	}

	if err := deps.startSession(c, partner.ID, auth.RoleFoodPartner); err != nil {
		return err
	}

	authLog(c, auth.RoleFoodPartner, email).WithField("food_partner_id", partner.ID.Hex()).Info("food partner registered")
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Food partner registered successfully",
		"foodPartner": partner.Public(),
	})
	return nil
}

func LoginFoodPartner(deps AuthDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := loginFoodPartner(c, deps)
		deps.record(auth.RoleFoodPartner, "login", err)
		if err != nil {
			fail(c, err)
		}
	}
}

func loginFoodPartner(c *gin.Context, deps AuthDeps) error {
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
	partner, err := deps.Partners.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.New(apperr.KindNotFound, "Food partner account not found with this email").WithStatus(http.StatusBadRequest)
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "Internal Server Error", err)
	}

	if !deps.Passwords.Verify(req.Password, partner.PasswordHash) {
		authLog(c, auth.RoleFoodPartner, email).Info("login rejected: wrong password")
		return apperr.New(apperr.KindInvalidCredentials, "Password is incorrect")
	}

	if err := deps.startSession(c, partner.ID, auth.RoleFoodPartner); err != nil {
		return err
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Food partner logged in successfully",
		"foodPartner": partner.Public(),
	})
	return nil
}

func LogoutFoodPartner(deps AuthDeps) gin.HandlerFunc {
	return logoutHandler(deps.Cookie, "Food partner logged out successfully")
}
