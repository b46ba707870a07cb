package handler

import (
	"errors"
	"net/http"
	"strings"

	apperrors "go-gin-invitation/pkg/app_errors"
	"go-gin-invitation/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
			"code":  apperrors.KindValidation.String(),
		})
		return err
	}
	return nil
}

func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
			"code":  apperrors.KindValidation.String(),
		})
		return err
	}
	return nil
}

// ParamUUID reads a uuid path parameter, answering 400 when it is malformed.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
			"code":  apperrors.KindValidation.String(),
		})
		return uuid.Nil, false
	}
	return id, true
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// errorResponse maps an error kind onto an HTTP status and body.
func errorResponse(err error) (int, gin.H) {
	kind := apperrors.KindOf(err)
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound, gin.H{"error": notFoundMessage(err), "code": kind.String()}
	case apperrors.KindAlreadyExists:
		return http.StatusConflict, gin.H{"error": err.Error(), "code": kind.String()}
	case apperrors.KindValidation:
		return http.StatusBadRequest, gin.H{"error": err.Error(), "code": kind.String()}
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized, gin.H{"error": err.Error(), "code": kind.String()}
	case apperrors.KindBackendUnavailable:
		return http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable", "code": kind.String()}
	default:
		return http.StatusInternalServerError, gin.H{"error": "Internal server error", "code": kind.String()}
	}
}

func notFoundMessage(err error) string {
	for _, target := range []error{
		apperrors.ErrInvitationNotFound,
		apperrors.ErrEventNotFound,
		apperrors.ErrGuestNotFound,
		apperrors.ErrUserNotFound,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "not found"
}

func handleError(c *gin.Context, err error, operation string) {
	status, body := errorResponse(err)
	logError(status, err, operation)
	c.JSON(status, body)
}

func logError(status int, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
		return
	}
	log.Warn("request rejected")
}
