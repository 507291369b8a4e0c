package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Data is the payload map inside a GraphQL "data" envelope.
type Data map[string]interface{}

// GraphQLData writes a successful GraphQL response: {"data": {...}}.
func GraphQLData(c *gin.Context, data Data) {
	c.JSON(http.StatusOK, gin.H{
		"data": data,
	})
}

// GraphQLError writes a GraphQL error response. GraphQL transports report
// application errors with HTTP 200 and an "errors" array; only transport
// level failures use other status codes.
func GraphQLError(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{
		"errors": []gin.H{
			{"message": msg},
		},
	})
}

// HTTPError writes a transport-level failure (bad envelope, auth).
func HTTPError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{
		"errors": []gin.H{
			{"message": msg},
		},
	})
}
