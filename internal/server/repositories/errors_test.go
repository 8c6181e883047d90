package repositories

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestDBError(t *testing.T) {
	err := DBError(&pgconn.PgError{Code: "23505", ConstraintName: "tags_user_id_name_key"})
	require.ErrorIs(t, err, common.ErrAlreadyExists)
	require.Contains(t, err.Error(), "tags_user_id_name_key")

	err = DBError(&pgconn.PgError{Code: "23503"})
	require.ErrorIs(t, err, common.ErrReferenced)

	boom := errors.New("boom")
	err = DBError(boom)
	require.ErrorIs(t, err, boom)
	require.EqualError(t, err, "db error: boom")
}
