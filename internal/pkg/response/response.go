package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelcore/internal/pkg/apperror"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// FromError writes err using its apperror kind. Errors outside the taxonomy
// are reported as internal and attached to the gin context for the error logger.
func FromError(c *gin.Context, err error) {
	e, ok := apperror.As(err)
	if !ok {
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	code := e.Code
	if code == "" {
		code = string(e.Kind)
	}

	switch e.Kind {
	case apperror.KindValidation:
		ErrorWithDetails(c, http.StatusBadRequest, code, e.Reason, gin.H{"kind": e.Kind})
	case apperror.KindNotFound:
		ErrorWithDetails(c, http.StatusNotFound, code, e.Reason, gin.H{"kind": e.Kind})
	case apperror.KindRoomUnavailable, apperror.KindInvalidTransition:
		ErrorWithDetails(c, http.StatusConflict, code, e.Reason, gin.H{"kind": e.Kind})
	case apperror.KindUnavailable:
		c.Header("Retry-After", "1")
		ErrorWithDetails(c, http.StatusServiceUnavailable, code, e.Reason, gin.H{"kind": e.Kind, "retryable": true})
	default:
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
