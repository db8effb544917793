package registry_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/feedgate/internal/cache"
	"github.com/jonesrussell/feedgate/internal/database"
	"github.com/jonesrussell/feedgate/internal/logger"
	"github.com/jonesrussell/feedgate/internal/models"
	"github.com/jonesrussell/feedgate/internal/registry"
)

func newTestRegistry(t *testing.T) (*registry.Registry, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()

	db, mock, setupErr := sqlmock.New()
	require.NoError(t, setupErr)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := database.NewRepository(sqlx.NewDb(db, "sqlmock"))
	c := cache.NewRedisCache(client, "feedgate", logger.NewNopLogger())

	return registry.NewRegistry(repo, c, time.Hour, logger.NewNopLogger()), mock, mr
}

func destinationRow(name, family string, active bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "display_name", "family", "configuration", "compliance_rules",
		"active", "api_endpoint", "api_credentials", "created_at", "updated_at",
	}).AddRow(uuid.NewString(), name, name, family, []byte(`{}`), "{content_length_check}",
		active, "", []byte(`{}`), time.Now(), time.Now())
}

func TestResolveReadThrough(t *testing.T) {
	r, mock, mr := newTestRegistry(t)
	ctx := t.Context()

	mock.ExpectQuery("SELECT (.+) FROM destinations").
		WithArgs("msn_news").
		WillReturnRows(destinationRow("msn_news", models.FamilyMSN, true))

	dest, err := r.Resolve(ctx, "msn_news")
	require.NoError(t, err)
	assert.Equal(t, "msn_news", dest.Name)
	assert.Equal(t, models.FamilyMSN, dest.Family)

	// The miss populated the cache under the namespaced key.
	assert.True(t, mr.Exists("feedgate:destination:msn_news"))

	// A second resolve is served from cache; no further query is expected.
	dest, err = r.Resolve(ctx, "msn_news")
	require.NoError(t, err)
	assert.Equal(t, "msn_news", dest.Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveNotFound(t *testing.T) {
	r, mock, _ := newTestRegistry(t)

	mock.ExpectQuery("SELECT (.+) FROM destinations").
		WithArgs("absent").
		WillReturnError(sql.ErrNoRows)

	_, err := r.Resolve(t.Context(), "absent")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestIsActive(t *testing.T) {
	r, mock, _ := newTestRegistry(t)
	ctx := t.Context()

	mock.ExpectQuery("SELECT (.+) FROM destinations").
		WithArgs("paused_feed").
		WillReturnRows(destinationRow("paused_feed", models.FamilyGoogleNews, false))

	active, err := r.IsActive(ctx, "paused_feed")
	require.NoError(t, err)
	assert.False(t, active)

	mock.ExpectQuery("SELECT (.+) FROM destinations").
		WithArgs("absent").
		WillReturnError(sql.ErrNoRows)

	active, err = r.IsActive(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestActiveDestinationsCached(t *testing.T) {
	r, mock, mr := newTestRegistry(t)
	ctx := t.Context()

	mock.ExpectQuery("SELECT (.+) FROM destinations").
		WillReturnRows(destinationRow("msn_news", models.FamilyMSN, true))

	destinations, err := r.ActiveDestinations(ctx)
	require.NoError(t, err)
	require.Len(t, destinations, 1)
	assert.True(t, mr.Exists("feedgate:active_destinations"))

	destinations, err = r.ActiveDestinations(ctx)
	require.NoError(t, err)
	assert.Len(t, destinations, 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateInvalidatesCache(t *testing.T) {
	r, mock, mr := newTestRegistry(t)
	ctx := t.Context()

	// Warm both cache keys.
	mock.ExpectQuery("SELECT (.+) FROM destinations").
		WithArgs("msn_news").
		WillReturnRows(destinationRow("msn_news", models.FamilyMSN, true))
	_, err := r.Resolve(ctx, "msn_news")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM destinations").
		WillReturnRows(destinationRow("msn_news", models.FamilyMSN, true))
	_, err = r.ActiveDestinations(ctx)
	require.NoError(t, err)

	active := false
	mock.ExpectQuery("UPDATE destinations").
		WillReturnRows(destinationRow("msn_news", models.FamilyMSN, false))

	_, err = r.Update(ctx, "msn_news", &models.DestinationUpdateRequest{Active: &active})
	require.NoError(t, err)

	assert.False(t, mr.Exists("feedgate:destination:msn_news"))
	assert.False(t, mr.Exists("feedgate:active_destinations"))
}

func TestDeleteInvalidatesCache(t *testing.T) {
	r, mock, mr := newTestRegistry(t)
	ctx := t.Context()

	mock.ExpectQuery("SELECT (.+) FROM destinations").
		WithArgs("msn_news").
		WillReturnRows(destinationRow("msn_news", models.FamilyMSN, true))
	_, err := r.Resolve(ctx, "msn_news")
	require.NoError(t, err)

	mock.ExpectExec("DELETE FROM destinations").
		WithArgs("msn_news").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.Delete(ctx, "msn_news"))
	assert.False(t, mr.Exists("feedgate:destination:msn_news"))
}

func TestResolveDegradesOnBrokenCache(t *testing.T) {
	r, mock, mr := newTestRegistry(t)
	ctx := t.Context()

	// Corrupt cached JSON forces a database read instead of a failure.
	mr.Set("feedgate:destination:msn_news", "{not json")

	mock.ExpectQuery("SELECT (.+) FROM destinations").
		WithArgs("msn_news").
		WillReturnRows(destinationRow("msn_news", models.FamilyMSN, true))

	dest, err := r.Resolve(ctx, "msn_news")
	require.NoError(t, err)
	assert.Equal(t, "msn_news", dest.Name)
}
