package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// paging applies the list defaults the services use, so response meta
// matches the page actually returned
func paging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return page, min(pageSize, maxPageSize)
}

// queryID parses an optional UUID query parameter. It returns nil when the
// parameter is absent and writes a 400 when it is malformed.
func (h *BaseHandler) queryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "Invalid "+name)
		return nil, false
	}
	return &id, true
}
