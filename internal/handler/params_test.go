package handler

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestDateRange(t *testing.T) {
	from, to, err := dateRange(contextWithQuery("fechaDesde=2024-03-01&fechaHasta=2024-03-31"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC), *to)

	from, to, err = dateRange(contextWithQuery("fechaDesde=2024-03-01T10:00:00-05:00"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC), *from)
	assert.Nil(t, to)

	_, _, err = dateRange(contextWithQuery("fechaHasta=31/03/2024"))
	assert.ErrorContains(t, err, "fechaHasta")
}
