package importer

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func TestResolverBulkPreload(t *testing.T) {
	db, mock := newMockDB(t)

	// One SELECT loads the whole id set; every later lookup is in-memory.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `id` FROM `vuelo`")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10).AddRow(11))

	r := NewResolver()

	eleven := int64(11)
	ok, err := r.Resolves(db, "vuelo", &eleven)
	assert.NoError(t, err)
	assert.True(t, ok)

	ninetyNine := int64(99)
	ok, err = r.Resolves(db, "vuelo", &ninetyNine)
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.Resolves(db, "vuelo", nil)
	assert.NoError(t, err)
	assert.False(t, ok)

	// Second lookup of 11 must not query again.
	ok, err = r.Resolves(db, "vuelo", &eleven)
	assert.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolverPreloadFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `id` FROM `vuelo`")).
		WillReturnError(assert.AnError)

	r := NewResolver()
	one := int64(1)
	_, err := r.Resolves(db, "vuelo", &one)
	assert.ErrorContains(t, err, "failed to load id set of vuelo")
}

func TestResolverSeed(t *testing.T) {
	r := NewResolver()
	r.Seed("terminal", 1, 2, 3)

	two := int64(2)
	ok, err := r.Resolves(nil, "terminal", &two)
	assert.NoError(t, err)
	assert.True(t, ok)

	nine := int64(9)
	ok, err = r.Resolves(nil, "terminal", &nine)
	assert.NoError(t, err)
	assert.False(t, ok)
}
