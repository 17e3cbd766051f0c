package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tenantadmin-backend/shared/clients"
	"tenantadmin-backend/shared/database/models"
	utils "tenantadmin-backend/shared/utils/auth"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock, sqlDB
}

// asUser injects an authenticated identity the way the auth middleware does.
func asUser(user *clients.CurrentUser) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("currentUser", user)
	}
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"uuid", "email", "email_hash", "status"})
}

func TestRegisterDuplicate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	handler := NewUserHandler(db, nil)
	router := gin.New()
	router.POST("/users/register", handler.Register)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WithArgs(utils.HashEmail("taken@example.com"), models.StatusActive, 1).
		WillReturnRows(userRows().
			AddRow(uuid.New().String(), "taken@example.com", utils.HashEmail("taken@example.com"), models.StatusActive))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/users/register", gin.H{
		"email":         "taken@example.com",
		"password":      "long-enough-password",
		"termCondition": true,
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "User already exist.")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterPromotesPendingInvite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	handler := NewUserHandler(db, nil)
	router := gin.New()
	router.POST("/users/register", handler.Register)

	emailHash := utils.HashEmail("invited@example.com")
	pendingID := uuid.New()

	// No active account under the address.
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WithArgs(emailHash, models.StatusActive, 1).
		WillReturnRows(userRows())

	// A pending invited row exists and is promoted in place.
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WithArgs(emailHash, models.StatusPending, 1).
		WillReturnRows(userRows().
			AddRow(pendingID.String(), "invited@example.com", emailHash, models.StatusPending))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/users/register", gin.H{
		"email":         "invited@example.com",
		"password":      "long-enough-password",
		"displayName":   "Invited User",
		"termCondition": true,
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Register completed.")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	handler := NewUserHandler(db, nil)
	router := gin.New()
	router.POST("/users/login", handler.Login)

	emailHash := utils.HashEmail("user@example.com")
	hashed, err := utils.HashPassword("the-real-password")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WithArgs(emailHash, models.StatusActive, 1).
		WillReturnRows(sqlmock.NewRows([]string{"uuid", "email", "email_hash", "password", "status"}).
			AddRow(uuid.New().String(), "user@example.com", emailHash, hashed, models.StatusActive))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/users/login", gin.H{
		"email":    "user@example.com",
		"password": "a-wrong-password",
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Username or password incorrect.")
}

func TestLoginPendingInviteHasNoPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	handler := NewUserHandler(db, nil)
	router := gin.New()
	router.POST("/users/login", handler.Login)

	// An invited user who never registered has no password hash; any login
	// attempt fails the same way a wrong password does.
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"uuid", "email", "email_hash", "password", "status"}).
			AddRow(uuid.New().String(), "invited@example.com",
				utils.HashEmail("invited@example.com"), nil, models.StatusActive))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/users/login", gin.H{
		"email":    "invited@example.com",
		"password": "whatever-password",
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Username or password incorrect.")
}

func TestLoginSignsCredential(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	userID := uuid.New()
	companyID := uuid.New()

	credentialServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req clients.SignRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, userID, req.UUID)
		require.NotNil(t, req.Company)
		assert.Equal(t, companyID, *req.Company)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"token":"minted-token"}}`))
	}))
	defer credentialServer.Close()

	handler := NewUserHandler(db, clients.NewCredentialClient(credentialServer.URL))
	router := gin.New()
	router.POST("/users/login", handler.Login)

	emailHash := utils.HashEmail("user@example.com")
	hashed, err := utils.HashPassword("the-real-password")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WithArgs(emailHash, models.StatusActive, 1).
		WillReturnRows(sqlmock.NewRows([]string{"uuid", "email", "email_hash", "password", "status"}).
			AddRow(userID.String(), "user@example.com", emailHash, hashed, models.StatusActive))

	mock.ExpectQuery(`SELECT \* FROM "company_user"`).
		WithArgs(userID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"uuid", "company_uuid", "user_uuid", "status"}).
			AddRow(uuid.New().String(), companyID.String(), userID.String(), models.StatusActive))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/users/login", gin.H{
		"email":    "user@example.com",
		"password": "the-real-password",
	}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "minted-token")
	assert.Contains(t, w.Body.String(), companyID.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteDuplicate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	companyID := uuid.New()
	caller := &clients.CurrentUser{UUID: uuid.New(), Company: &companyID}

	handler := NewUserHandler(db, nil)
	router := gin.New()
	router.POST("/users/invite", asUser(caller), handler.InviteUser)

	mock.ExpectQuery(`SELECT count\(\*\) FROM company_user cu JOIN users u ON u\.uuid = cu\.user_uuid`).
		WithArgs(companyID, utils.HashEmail("invitee@example.com"), models.StatusArchived).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/users/invite", gin.H{
		"email": "invitee@example.com",
		"role":  uuid.New(),
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invite already exist")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteWithoutCompany(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, _, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	handler := NewUserHandler(db, nil)
	router := gin.New()
	router.POST("/users/invite", asUser(&clients.CurrentUser{UUID: uuid.New()}), handler.InviteUser)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/users/invite", gin.H{
		"email": "invitee@example.com",
		"role":  uuid.New(),
	}))

	assert.Equal(t, http.StatusNotAcceptable, w.Code)
}

func TestDeleteUserArchivesAtomically(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	companyID := uuid.New()
	targetID := uuid.New()
	caller := &clients.CurrentUser{UUID: uuid.New(), Company: &companyID}

	handler := NewUserHandler(db, nil)
	router := gin.New()
	router.DELETE("/users/:uuid", asUser(caller), handler.DeleteUser)

	mock.ExpectQuery(`SELECT \* FROM "company_user"`).
		WithArgs(targetID, companyID, models.StatusActive, 1).
		WillReturnRows(sqlmock.NewRows([]string{"uuid", "company_uuid", "user_uuid", "status"}).
			AddRow(uuid.New().String(), companyID.String(), targetID.String(), models.StatusActive))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "company_user" SET`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/users/"+targetID.String(), nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Delete user completed.")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUserRollsBackOnFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	companyID := uuid.New()
	targetID := uuid.New()
	caller := &clients.CurrentUser{UUID: uuid.New(), Company: &companyID}

	handler := NewUserHandler(db, nil)
	router := gin.New()
	router.DELETE("/users/:uuid", asUser(caller), handler.DeleteUser)

	mock.ExpectQuery(`SELECT \* FROM "company_user"`).
		WillReturnRows(sqlmock.NewRows([]string{"uuid", "company_uuid", "user_uuid", "status"}).
			AddRow(uuid.New().String(), companyID.String(), targetID.String(), models.StatusActive))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "company_user" SET`).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/users/"+targetID.String(), nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUserOutsideCompany(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	companyID := uuid.New()
	caller := &clients.CurrentUser{UUID: uuid.New(), Company: &companyID}

	handler := NewUserHandler(db, nil)
	router := gin.New()
	router.DELETE("/users/:uuid", asUser(caller), handler.DeleteUser)

	// Target holds no active membership in the caller's company.
	mock.ExpectQuery(`SELECT \* FROM "company_user"`).
		WillReturnRows(sqlmock.NewRows([]string{"uuid", "company_uuid", "user_uuid", "status"}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/users/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "can't delete user from company")
}
