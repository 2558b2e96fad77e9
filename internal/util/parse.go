package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseInt parses a string to an integer, returning defaultValue if parsing fails
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return defaultValue
}

// ParseBoolPtr parses s as a bool; empty or invalid input yields nil
func ParseBoolPtr(s string) *bool {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &v
}

// Pagination reads limit and offset query parameters, clamped to [1, max]
func Pagination(c *gin.Context, defaultLimit, max int) (limit, offset int) {
	limit = ParseInt(c.Query("limit"), defaultLimit)
	offset = ParseInt(c.Query("offset"), 0)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
