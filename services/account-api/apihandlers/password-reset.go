package apihandlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/AbdullahSoftDev/Daily-Dish-img/pkg/apihelpers/middlewares"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/usermanagement"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/utils"
)

func (h *HttpEndpoints) AddPasswordResetAPI(rg *gin.RouterGroup) {
	pwResetGroup := rg.Group("/password-reset")
	{
		pwResetGroup.POST("/initiate", mw.RequirePayload(), h.initiatePasswordReset)
		pwResetGroup.POST("/reset", mw.RequirePayload(), h.resetPassword)
	}
}

func (h *HttpEndpoints) initiatePasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("bad request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.identity.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, usermanagement.ErrEmailNotRegistered) {
			// do not leak which addresses exist
			slog.Warn("password reset for non-existing account", slog.String("email", utils.BlurEmailAddress(req.Email)))
			randomWait(1, 3)
			c.JSON(http.StatusOK, gin.H{"message": "reset code sent"})
			return
		}
		slog.Warn("could not initiate password reset", slog.String("email", utils.BlurEmailAddress(req.Email)), slog.String("error", err.Error()))
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "reset code sent"})
}

func (h *HttpEndpoints) resetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("bad request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.identity.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword)
	if err != nil {
		slog.Warn("password reset rejected", slog.String("email", utils.BlurEmailAddress(req.Email)), slog.String("error", err.Error()))
		abortWithError(c, err)
		return
	}

	slog.Info("password reset done", slog.String("email", utils.BlurEmailAddress(req.Email)))
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
