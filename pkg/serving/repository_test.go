package serving

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dryRunRepository builds SQL against the postgres dialect without a server
// and records each rendered statement.
func dryRunRepository(t *testing.T) (*Repository, *[]string) {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=localhost user=obesity dbname=obesity_check sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	require.NoError(t, err)

	var statements []string
	capture := func(tx *gorm.DB) {
		statements = append(statements, tx.Dialector.Explain(tx.Statement.SQL.String(), tx.Statement.Vars...))
	}
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture_query", capture))
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("test:capture_create", capture))
	return NewRepository(db), &statements
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	repo, statements := dryRunRepository(t)

	_, err := repo.Recent(context.Background(), 5)
	require.NoError(t, err)
	_, err = repo.Recent(context.Background(), 0)
	require.NoError(t, err)

	require.Len(t, *statements, 2)
	assert.Contains(t, (*statements)[0], `FROM "model_releases"`)
	assert.Contains(t, (*statements)[0], "ORDER BY loaded_at DESC")
	assert.Contains(t, (*statements)[0], "LIMIT 5")
	assert.Contains(t, (*statements)[1], "LIMIT 20")
}

func TestRecordReleaseInsertsMetadataOnly(t *testing.T) {
	b, err := LoadBundle("", "")
	require.NoError(t, err)
	repo, statements := dryRunRepository(t)

	require.NoError(t, repo.RecordRelease(context.Background(), NewRelease(b)))
	require.Len(t, *statements, 1)
	assert.Contains(t, (*statements)[0], `INSERT INTO "model_releases"`)
	assert.Contains(t, (*statements)[0], b.Version())
	assert.Contains(t, (*statements)[0], b.Model.Checksum())
}
