package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenantadmin-backend/shared/clients"
	"tenantadmin-backend/shared/database/models"
)

func newPermissionRouter(operation string, user *clients.CurrentUser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(contextUserKey, user)
		}
	})
	router.GET("/guarded", RequirePermission(operation), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func matrixRows(userID uuid.UUID, feature, matrix string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"uuid", "service", "feature", "permission"}).
		AddRow(userID.String(), models.ServiceAdmin, feature, matrix)
}

func TestRequirePermissionWithoutUser(t *testing.T) {
	router := newPermissionRouter("users.list", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/guarded", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequirePermissionUnknownOperation(t *testing.T) {
	router := newPermissionRouter("users.reticulate", &clients.CurrentUser{UUID: uuid.New()})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/guarded", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Unknown operation")
}

func TestRequirePermissionDeniedWithoutMatch(t *testing.T) {
	mock := installMockDB(t)

	userID := uuid.New()
	companyID := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM permissions p`).
		WillReturnRows(sqlmock.NewRows([]string{"uuid", "service", "feature", "permission"}))

	router := newPermissionRouter("users.list", &clients.CurrentUser{UUID: userID, Company: &companyID})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/guarded", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Not have permission to access.")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequirePermissionDeniedByMatrix(t *testing.T) {
	mock := installMockDB(t)

	userID := uuid.New()
	companyID := uuid.New()

	// View granted, delete denied: users.delete must bounce.
	mock.ExpectQuery(`SELECT .* FROM permissions p`).
		WillReturnRows(matrixRows(userID, models.FeatureUser,
			`{"view":true,"insert":false,"update":false,"delete":false}`))

	router := newPermissionRouter("users.delete", &clients.CurrentUser{UUID: userID, Company: &companyID})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/guarded", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequirePermissionGranted(t *testing.T) {
	mock := installMockDB(t)

	userID := uuid.New()
	companyID := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM permissions p`).
		WillReturnRows(matrixRows(userID, models.FeatureUser,
			`{"view":true,"insert":true,"update":true,"delete":true}`))

	router := newPermissionRouter("users.delete", &clients.CurrentUser{UUID: userID, Company: &companyID})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/guarded", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
