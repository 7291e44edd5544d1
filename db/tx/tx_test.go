package tx

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func TestTransactionFromContext(t *testing.T) {
	_, ok := TransactionFromContext(context.Background())
	assert.False(t, ok)

	tx := &sqlx.Tx{}
	ctx := WithTransaction(context.Background(), tx)

	got, ok := TransactionFromContext(ctx)
	assert.True(t, ok)
	assert.Same(t, tx, got)
}

func TestGetTransactional(t *testing.T) {
	db := &sqlx.DB{}

	assert.Equal(t, Transactional(db), GetTransactional(context.Background(), db))

	tx := &sqlx.Tx{}
	ctx := WithTransaction(context.Background(), tx)
	assert.Equal(t, Transactional(tx), GetTransactional(ctx, db))
}
