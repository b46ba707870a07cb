package handler

import (
	"net/http"

	"go-gin-invitation/internal/model"
	"go-gin-invitation/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1/auth")
	{
		router.POST("signup", h.SignUp)
		router.POST("login", h.Login)
		router.POST("logout", h.Logout)
		router.GET("session", h.Session)
		router.GET("verify", h.Verify)
	}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req model.CredentialsRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	result, err := h.service.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err, "SignUp")
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.CredentialsRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	result, err := h.service.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err, "Login")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.service.SignOut(c.Request.Context(), bearerToken(c)); err != nil {
		handleError(c, err, "Logout")
		return
	}
	c.Status(http.StatusNoContent)
}

// Session answers {"session": null} for a missing or expired token.
func (h *AuthHandler) Session(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), bearerToken(c))
	if err != nil {
		handleError(c, err, "Session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

type verifyQuery struct {
	Token string `form:"token" binding:"required"`
}

func (h *AuthHandler) Verify(c *gin.Context) {
	var q verifyQuery
	if err := BindQuery(c, &q); err != nil {
		return
	}
	user, err := h.service.VerifyEmail(c.Request.Context(), q.Token)
	if err != nil {
		handleError(c, err, "VerifyEmail")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
