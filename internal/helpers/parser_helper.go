package helpers

import (
	"strconv"
	"time"

	"github.com/farellandr/eventhub/internal/apperr"
	"github.com/farellandr/eventhub/internal/repositories"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// ParsePagination reads ?page= and ?limit=; absent values fall back to the
// defaults.
func ParsePagination(c *gin.Context) (repositories.Page, error) {
	page := repositories.Page{Number: 1, Limit: repositories.DefaultPageLimit}
	if raw := c.Query("page"); raw != "" {
		n, err := StringToInt(raw)
		if err != nil || n < 1 {
			return page, apperr.InvalidArgument("page must be a positive integer")
		}
		page.Number = n
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := StringToInt(raw)
		if err != nil || n < 1 {
			return page, apperr.InvalidArgument("limit must be a positive integer")
		}
		page.Limit = n
	}
	return page.Normalize(), nil
}

func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.InvalidArgument("%s must be a valid UUID", name)
	}
	return id, nil
}

func ParseUUIDs(field string, raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, apperr.InvalidArgument("%s contains invalid id %q", field, r)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseTimeQuery parses an optional RFC 3339 query parameter.
func ParseTimeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperr.InvalidArgument("%s must be an RFC 3339 timestamp", name)
	}
	return &t, nil
}
