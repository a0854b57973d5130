package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const revokeByHash = "UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND revoked_at IS NULL"

func TestTokenRepo_RevokeByHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := NewTokenRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(revokeByHash)).
		WithArgs("abc").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// a second caller with the same token finds it already revoked
	mock.ExpectExec(regexp.QuoteMeta(revokeByHash)).
		WithArgs("abc").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.RevokeByHash(context.Background(), "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.RevokeByHash(context.Background(), "abc")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
