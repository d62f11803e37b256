package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query string
		want  Params
	}{
		{query: "", want: Params{Page: 1, Limit: 20, Offset: 0}},
		{query: "page=3&limit=10", want: Params{Page: 3, Limit: 10, Offset: 20}},
		{query: "page=2&limite=5", want: Params{Page: 2, Limit: 5, Offset: 5}},
		{query: "limit=7&limite=5", want: Params{Page: 1, Limit: 7, Offset: 0}},
		{query: "page=0&limit=0", want: Params{Page: 1, Limit: 20, Offset: 0}},
		{query: "page=-4&limit=abc", want: Params{Page: 1, Limit: 20, Offset: 0}},
		{query: "limit=1000", want: Params{Page: 1, Limit: 100, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/api/clientes?"+tt.query, nil)

			assert.Equal(t, tt.want, Parse(c))
		})
	}
}
