package tenant

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tenantadmin-backend/shared/database/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
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

func countRows(n int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func TestIsActiveWithoutCompany(t *testing.T) {
	db, _, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	active, err := IsActive(db, nil, uuid.New())
	assert.ErrorIs(t, err, ErrNoCompanySelected)
	assert.False(t, active)
}

func TestIsActiveMembership(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	companyID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM company_user cu JOIN company c ON c\.uuid = cu\.company_uuid`).
		WithArgs(companyID, userID, models.StatusActive, models.StatusActive).
		WillReturnRows(countRows(1))

	active, err := IsActive(db, &companyID, userID)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsActiveNoMembership(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	companyID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM company_user cu`).
		WithArgs(companyID, userID, models.StatusActive, models.StatusActive).
		WillReturnRows(countRows(0))

	active, err := IsActive(db, &companyID, userID)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestHasActiveMembership(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	companyID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "company_user"`).
		WithArgs(companyID, userID, models.StatusActive).
		WillReturnRows(countRows(1))

	ok, err := HasActiveMembership(db, companyID, userID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}
