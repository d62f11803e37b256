package service

import (
	"fmt"

	"github.com/google/uuid"
)

func parseID(id, what string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fieldError("id", fmt.Sprintf("invalid %s id %q", what, id))
	}
	return parsed, nil
}

// pageBounds turns page/limit into limit/offset. limit <= 0 means unbounded.
func pageBounds(page, limit int) (int, int) {
	if limit <= 0 {
		return 0, 0
	}
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}
