package response

import (
	"errors"
	"log"
	"net/http"

	"dinein/internal/domain"

	"github.com/gin-gonic/gin"
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

// FromError maps a service error onto the JSON error envelope. Unknown
// errors are logged and reported without detail.
func FromError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", verr.Fields)
	case errors.Is(err, domain.ErrValidation):
		Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrNoTableAvailable):
		Error(c, http.StatusConflict, "NO_TABLE_AVAILABLE", "No table is free for the selected slot")
	case errors.Is(err, domain.ErrInvalidTransition):
		Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, domain.ErrMissingPrecondition):
		Error(c, http.StatusUnprocessableEntity, "MISSING_PRECONDITION", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
	default:
		_ = c.Error(err)
		log.Printf("level=error msg=unhandled service error method=%s path=%s err=%v", c.Request.Method, c.Request.URL.Path, err)
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
