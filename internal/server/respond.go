package server

import (
	"github.com/gin-gonic/gin"

	svcErr "github.com/amora-app/amora/internal/errors"
)

// RespondError converts any error into the structured JSON failure shape
// and writes it with the mapped HTTP status. No failure crashes the
// serving process; everything funnels through here at the boundary.
func RespondError(c *gin.Context, err error) {
	apiErr := svcErr.Map(err)
	c.JSON(apiErr.Status, gin.H{
		"status": "error",
		"error":  apiErr,
	})
}
