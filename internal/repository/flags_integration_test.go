//go:build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
)

// startPostgres brings up a PostGIS container, applies the schema and returns
// a connected repository.
func startPostgres(ctx context.Context, t *testing.T) *Repos {
	t.Helper()

	container, err := tcpostgres.Run(ctx, "postgis/postgis:16-3.4",
		tcpostgres.WithDatabase("beach_safety_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	require.NoError(t, err, "connect to postgres")
	t.Cleanup(func() { _ = db.Close() })

	schema, err := os.ReadFile("../../scripts/schema.sql")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, string(schema))
	require.NoError(t, err, "apply schema")

	return New(db)
}

func seedCenter(ctx context.Context, t *testing.T, repos *Repos) string {
	t.Helper()
	id := uuid.New().String()
	_, err := repos.db.ExecContext(ctx,
		`INSERT INTO centers (id, name, location)
		 VALUES ($1, 'North Beach', ST_SetSRID(ST_MakePoint(10.2, 36.8), 4326))`, id)
	require.NoError(t, err)
	return id
}

const systemPrincipal = "00000000-0000-0000-0000-000000000001"

func insertFlag(ctx context.Context, t *testing.T, repos *Repos, centerID string, status domain.FlagStatus, setAt time.Time, expiresAt *time.Time) {
	t.Helper()
	require.NoError(t, repos.InsertFlag(ctx, &domain.SafetyFlag{
		CenterID:  centerID,
		Status:    status,
		Reason:    "conditions",
		SetBy:     systemPrincipal,
		SetAt:     setAt,
		ExpiresAt: expiresAt,
	}))
}

// TestEffectiveFlagQuery exercises the real derivation query: the effective
// flag is the most recently set row whose expiry is null or in the future.
func TestEffectiveFlagQuery(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	repos := startPostgres(ctx, t)
	centerID := seedCenter(ctx, t, repos)

	_, err := repos.EffectiveFlag(ctx, centerID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "no rows yet")

	now := time.Now().UTC()
	future := now.Add(time.Hour)

	// A newer non-expiring green supersedes an older open-ended red.
	insertFlag(ctx, t, repos, centerID, domain.FlagRed, now.Add(-2*time.Hour), nil)
	insertFlag(ctx, t, repos, centerID, domain.FlagGreen, now.Add(-time.Hour), &future)

	flag, err := repos.EffectiveFlag(ctx, centerID)
	require.NoError(t, err)
	assert.Equal(t, domain.FlagGreen, flag.Status)
	assert.Equal(t, domain.RoleSystemAdmin, flag.SetByRole)
}

// TestEffectiveFlagSkipsExpiredRows covers the fallback: when the newest row
// has expired, the query falls back to the most recent still-valid one.
func TestEffectiveFlagSkipsExpiredRows(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	repos := startPostgres(ctx, t)
	centerID := seedCenter(ctx, t, repos)

	now := time.Now().UTC()
	past := now.Add(-time.Minute)

	insertFlag(ctx, t, repos, centerID, domain.FlagRed, now.Add(-3*time.Hour), nil)
	insertFlag(ctx, t, repos, centerID, domain.FlagGreen, now.Add(-time.Hour), &past)

	flag, err := repos.EffectiveFlag(ctx, centerID)
	require.NoError(t, err)
	assert.Equal(t, domain.FlagRed, flag.Status, "expired green falls back to the open-ended red")

	// With every row expired there is no effective flag at all, while the
	// latest row is still visible for mode derivation.
	otherID := seedCenter(ctx, t, repos)
	insertFlag(ctx, t, repos, otherID, domain.FlagYellow, now.Add(-time.Hour), &past)

	_, err = repos.EffectiveFlag(ctx, otherID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	latest, err := repos.LatestFlag(ctx, otherID)
	require.NoError(t, err)
	assert.Equal(t, domain.FlagYellow, latest.Status)
}
