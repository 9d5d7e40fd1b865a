package controller

import (
	"fmt"
	"net/http"

	"github.com/Vansh983/ai-ta/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// parseUUID validates a client-supplied identifier before any side effect,
// aborting with 400 on malformed input.
func parseUUID(c *gin.Context, value, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: fmt.Sprintf("Invalid %s format", entity),
		})
		return uuid.Nil, false
	}
	return id, true
}
