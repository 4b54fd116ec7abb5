package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayengine/internal/domain/shared/apperr"
)

// respondError maps the engine's error taxonomy onto HTTP statuses. Anything
// without a kind is a 500 and the message is not leaked to the client.
func respondError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperr.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case apperr.KindBadRequest:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
