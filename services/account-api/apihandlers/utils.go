package apihandlers

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/apperrors"
	jwthandling "github.com/AbdullahSoftDev/Daily-Dish-img/pkg/jwthandling"
)

func randomWait(minTimeSec int, maxTimeSec int) {
	time.Sleep(time.Duration(rand.Intn(maxTimeSec-minTimeSec)+minTimeSec) * time.Second)
}

// statusForError maps the failure classification onto an HTTP status.
func statusForError(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindAuth:
		return http.StatusUnauthorized
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindQuotaExceeded:
		return http.StatusInsufficientStorage
	case apperrors.KindTransientStore:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": apperrors.UserMessage(err)})
}

// currentClaims returns the validated token claims if the token still
// belongs to the active device session.
func (h *HttpEndpoints) currentClaims(c *gin.Context) (*jwthandling.UserClaims, bool) {
	tokenValue, exists := c.Get("validatedToken")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no validated token"})
		return nil, false
	}
	claims, ok := tokenValue.(*jwthandling.UserClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no validated token"})
		return nil, false
	}

	current := h.sessions.Current()
	if current == nil || current.ID != claims.SessionID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session no longer active"})
		return nil, false
	}
	return claims, true
}
