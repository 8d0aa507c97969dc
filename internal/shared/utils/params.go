package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/tenancy/internal/shared/errors"
)

// ParseIDParam parses a positive numeric path parameter.
// entityName is used in error messages (e.g., "tenant", "plan").
func ParseIDParam(c *gin.Context, paramName, entityName string) (uint, error) {
	return parseID(c.Param(paramName), entityName)
}

// ParseIDQuery is ParseIDParam for query string values.
func ParseIDQuery(c *gin.Context, key, entityName string) (uint, error) {
	return parseID(c.Query(key), entityName)
}

func parseID(raw, entityName string) (uint, error) {
	if raw == "" {
		return 0, errors.NewValidationError(entityName + " ID is required")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.NewValidationError(fmt.Sprintf("invalid %s ID: %s", entityName, raw))
	}
	return uint(id), nil
}
