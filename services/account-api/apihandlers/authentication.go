package apihandlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/AbdullahSoftDev/Daily-Dish-img/pkg/apihelpers/middlewares"
	jwthandling "github.com/AbdullahSoftDev/Daily-Dish-img/pkg/jwthandling"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/usermanagement"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/utils"
)

func (h *HttpEndpoints) AddAccountAuthAPI(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/signup/request-code", mw.RequirePayload(), h.requestRegistrationCode)
		authGroup.POST("/signup/verify-code", mw.RequirePayload(), h.verifyRegistrationCode)
		authGroup.POST("/signup", mw.RequirePayload(), h.signup)

		authGroup.POST("/login", mw.RequirePayload(), h.login)
		authGroup.POST("/login-external", mw.RequirePayload(), h.loginExternal)
		authGroup.POST("/logout", mw.GetAndValidateUserJWT(h.tokenSignKey), h.logout)

		authGroup.GET("/session", mw.GetAndValidateUserJWT(h.tokenSignKey), h.currentSession)
	}
}

func (h *HttpEndpoints) requestRegistrationCode(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.identity.RequestRegistrationCode(c.Request.Context(), req.Email); err != nil {
		slog.Warn("could not issue registration code", slog.String("email", utils.BlurEmailAddress(req.Email)), slog.String("error", err.Error()))
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "verification code sent"})
}

func (h *HttpEndpoints) verifyRegistrationCode(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.identity.VerifyRegistrationCode(c.Request.Context(), req.Email, req.Code); err != nil {
		slog.Warn("registration code rejected", slog.String("email", utils.BlurEmailAddress(req.Email)), slog.String("error", err.Error()))
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email verified"})
}

func (h *HttpEndpoints) signup(c *gin.Context) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.identity.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		slog.Warn("signup failed", slog.String("email", utils.BlurEmailAddress(req.Email)), slog.String("error", err.Error()))
		abortWithError(c, err)
		return
	}

	slog.Info("new account signed up", slog.String("email", utils.BlurEmailAddress(account.Email)))
	c.JSON(http.StatusCreated, gin.H{
		"accountId":   account.ID,
		"email":       account.Email,
		"displayName": account.DisplayName,
	})
}

func (h *HttpEndpoints) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Email == "" || req.Password == "" {
		slog.Error("missing required fields")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	sess, err := h.identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usermanagement.ErrExternalProviderRequired) {
			c.JSON(http.StatusConflict, gin.H{"error": "account uses an external sign-in provider"})
			return
		}
		slog.Warn("login attempt failed", slog.String("email", utils.BlurEmailAddress(req.Email)), slog.String("error", err.Error()))
		randomWait(1, 3)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	token, err := jwthandling.GenerateNewUserToken(
		h.tokenExpiresIn,
		sess.AccountID,
		sess.Email,
		sess.DisplayName,
		sess.ID,
		h.tokenSignKey,
	)
	if err != nil {
		slog.Error("failed to generate token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": token,
		"expiresIn":   h.tokenExpiresIn.Seconds(),
		"account": gin.H{
			"accountId":   sess.AccountID,
			"email":       sess.Email,
			"displayName": sess.DisplayName,
		},
	})
}

func (h *HttpEndpoints) loginExternal(c *gin.Context) {
	var req struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		Provider    string `json:"provider"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.identity.LoginExternal(c.Request.Context(), req.Email, req.DisplayName, req.Provider)
	if err != nil {
		slog.Warn("external login failed", slog.String("email", utils.BlurEmailAddress(req.Email)), slog.String("error", err.Error()))
		abortWithError(c, err)
		return
	}

	token, err := jwthandling.GenerateNewUserToken(
		h.tokenExpiresIn,
		sess.AccountID,
		sess.Email,
		sess.DisplayName,
		sess.ID,
		h.tokenSignKey,
	)
	if err != nil {
		slog.Error("failed to generate token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": token,
		"expiresIn":   h.tokenExpiresIn.Seconds(),
		"account": gin.H{
			"accountId":   sess.AccountID,
			"email":       sess.Email,
			"displayName": sess.DisplayName,
		},
	})
}

func (h *HttpEndpoints) logout(c *gin.Context) {
	if _, ok := h.currentClaims(c); !ok {
		return
	}
	h.identity.Logout()
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *HttpEndpoints) currentSession(c *gin.Context) {
	claims, ok := h.currentClaims(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accountId":   claims.Subject,
		"email":       claims.Email,
		"displayName": claims.DisplayName,
		"degraded":    h.store.RemoteDegraded(),
	})
}
