package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestErrorKinds(t *testing.T) {
	err := notFound("student %s not found", "abc")
	require.True(t, errors.Is(err, ErrNotFound))
	require.False(t, errors.Is(err, ErrDuplicateKey))
	require.Equal(t, KindNotFound, KindOf(err))
	require.Equal(t, "student abc not found", err.Error())

	wrapped := fmt.Errorf("handler: %w", err)
	require.True(t, errors.Is(wrapped, ErrNotFound))
	require.Equal(t, KindNotFound, KindOf(wrapped))

	require.Equal(t, KindUnexpected, KindOf(errors.New("boom")))
}

func TestStoreErrorClassification(t *testing.T) {
	require.NoError(t, storeError(nil, "x"))

	err := storeError(gorm.ErrRecordNotFound, "load student")
	require.Equal(t, KindNotFound, KindOf(err))
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	require.Equal(t, KindDuplicateKey, KindOf(storeError(gorm.ErrDuplicatedKey, "insert")))
	require.Equal(t, KindDuplicateKey, KindOf(storeError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, "insert")))
	require.Equal(t, KindDuplicateKey, KindOf(storeError(errors.New("UNIQUE constraint failed: auction_students.admission_number"), "insert")))
	require.Equal(t, KindUnexpected, KindOf(storeError(errors.New("connection refused"), "insert")))
}
