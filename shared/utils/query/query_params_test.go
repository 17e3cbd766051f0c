package query

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsFor(t *testing.T, rawQuery string) PaginationParams {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return ParsePagination(c)
}

func TestParsePaginationDefaults(t *testing.T) {
	params := paramsFor(t, "")
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 10, params.Limit)
}

func TestParsePaginationExplicit(t *testing.T) {
	params := paramsFor(t, "page=3&limit=25")
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 25, params.Limit)
}

func TestParsePaginationBounds(t *testing.T) {
	params := paramsFor(t, "page=0&limit=0")
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 1, params.Limit)

	params = paramsFor(t, "page=-5&limit=1000")
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 100, params.Limit)
}

func TestParsePaginationGarbage(t *testing.T) {
	params := paramsFor(t, "page=abc&limit=xyz")
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 1, params.Limit)
}
