package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

const dateOnly = "2006-01-02"

// parseDateQuery reads an RFC3339 or YYYY-MM-DD query value. A date-only
// upper bound covers the whole day.
func parseDateQuery(c *gin.Context, name string, upperBound bool) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}

	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q, expected RFC3339 or YYYY-MM-DD", name, raw)
	}
	if upperBound {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// dateRange parses fechaDesde and fechaHasta.
func dateRange(c *gin.Context) (from, to *time.Time, err error) {
	if from, err = parseDateQuery(c, "fechaDesde", false); err != nil {
		return nil, nil, err
	}
	if to, err = parseDateQuery(c, "fechaHasta", true); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}
