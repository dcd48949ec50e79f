package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"loan-origination/internal/pkg/apperrors"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchema(t *testing.T) {
	ctx := context.Background()

	t.Run("should apply the embedded schema", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectExec(regexp.QuoteMeta(schemaSQL)).WillReturnResult(pgxmock.NewResult("CREATE", 0))

		assert.NoError(t, EnsureSchema(ctx, mockPool, logger))
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("should wrap failures as database errors", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectExec(regexp.QuoteMeta(schemaSQL)).WillReturnError(errors.New("permission denied"))

		err = EnsureSchema(ctx, mockPool, logger)
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
	})

	t.Run("embedded schema declares every table", func(t *testing.T) {
		for _, table := range []string{"customers", "loan_officers", "loan_applications"} {
			assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table)
		}
	})
}
