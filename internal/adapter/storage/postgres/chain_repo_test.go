package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockCols() []string {
	return []string{"idx", "transaction_id", "prev_hash", "hash", "created_at"}
}

func expectChainLock(mock pgxmock.PgxPoolIface) {
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1\)`).
		WithArgs(chainAppendLockKey).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
}

func TestChainRepo_Head_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewChainRepo(mock)

	mock.ExpectBegin()
	expectChainLock(mock)
	mock.ExpectQuery("SELECT .+ FROM chain_blocks ORDER BY idx DESC LIMIT 1").
		WillReturnRows(pgxmock.NewRows(blockCols()))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	head, err := repo.Head(context.Background(), tx)
	require.NoError(t, err)
	assert.Nil(t, head)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChainRepo_Head(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewChainRepo(mock)
	block := domain.NextBlock(domain.NewGenesisBlock(), 5)
	block.CreatedAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	txID := block.TransactionID

	mock.ExpectBegin()
	expectChainLock(mock)
	mock.ExpectQuery("SELECT .+ FROM chain_blocks").
		WillReturnRows(pgxmock.NewRows(blockCols()).AddRow(block.Index, &txID, block.PrevHash, block.Hash, block.CreatedAt))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	head, err := repo.Head(context.Background(), tx)
	require.NoError(t, err)
	require.NotNil(t, head)
	assert.Equal(t, block, *head)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChainRepo_Append_GenesisHasNullTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewChainRepo(mock)
	genesis := domain.NewGenesisBlock()
	genesis.CreatedAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO chain_blocks").
		WithArgs(int64(0), (*int64)(nil), genesis.PrevHash, genesis.Hash, genesis.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.Append(context.Background(), tx, &genesis))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChainRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewChainRepo(mock)
	genesis := domain.NewGenesisBlock()
	next := domain.NextBlock(genesis, 1)
	txID := next.TransactionID

	mock.ExpectQuery("SELECT .+ FROM chain_blocks WHERE idx >= .+ ORDER BY idx ASC").
		WithArgs(int64(0), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(blockCols()).
			AddRow(genesis.Index, (*int64)(nil), genesis.PrevHash, genesis.Hash, time.Now()).
			AddRow(next.Index, &txID, next.PrevHash, next.Hash, time.Now()))

	blocks, err := repo.List(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, int64(0), blocks[0].TransactionID)
	assert.True(t, domain.VerifyChain(blocks).Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChainRepo_Head_LockFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewChainRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs(chainAppendLockKey).
		WillReturnError(errors.New("lock timeout"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, err = repo.Head(context.Background(), tx)
	assert.ErrorContains(t, err, "lock chain")
	assert.NoError(t, mock.ExpectationsWereMet())
}
