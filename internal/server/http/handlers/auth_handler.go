package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/server/http/dto"
	"github.com/polkiloo/rigshop/internal/server/http/middleware"
	"github.com/polkiloo/rigshop/internal/usecase"
)

// AuthHandler processes registration, login and sessions.
type AuthHandler struct {
	facade AuthFacade
	errs   *ErrorWriter
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade AuthFacade, errs *ErrorWriter) *AuthHandler {
	return &AuthHandler{facade: facade, errs: errs}
}

// Register handles POST /api/user/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.errs.bindJSON(c, &req) {
		return
	}

	user, token, err := h.facade.Register(c.Request.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
	})
	if err != nil {
		h.errs.Write(c, err)
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusCreated, dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)})
}

// Login handles POST /api/user/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.errs.bindJSON(c, &req) {
		return
	}

	user, token, err := h.facade.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.errs.Write(c, err)
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)})
}

// Logout handles POST /api/user/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.facade.Logout(c.Request.Context(), middleware.CurrentClaims(c)); err != nil {
		h.errs.Write(c, err)
		return
	}
	middleware.ClearAuthCookie(c)
	c.Status(http.StatusNoContent)
}

// Me handles GET /api/user/me.
func (h *AuthHandler) Me(c *gin.Context) {
	actor := CurrentActor(c)
	if actor.Guest() {
		h.errs.Write(c, domainErrors.ErrInvalidCredentials)
		return
	}
	user, err := h.facade.CurrentUser(c.Request.Context(), actor.UserID)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
