package service

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ChainServiceImpl implements ports.ChainService.
type ChainServiceImpl struct {
	chainRepo  ports.ChainRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewChainService creates a new ChainServiceImpl.
func NewChainService(chainRepo ports.ChainRepository, transactor ports.DBTransactor, log zerolog.Logger) *ChainServiceImpl {
	return &ChainServiceImpl{
		chainRepo:  chainRepo,
		transactor: transactor,
		log:        log,
	}
}

// ListChain returns blocks ordered by index starting at fromIndex.
func (s *ChainServiceImpl) ListChain(ctx context.Context, fromIndex int64, limit int) ([]domain.ChainBlock, error) {
	if fromIndex < 0 {
		return nil, apperror.ErrInvalidInput("from must not be negative")
	}
	blocks, err := s.chainRepo.List(ctx, fromIndex, limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list chain: %w", err))
	}
	return blocks, nil
}

// VerifyIntegrity walks the whole chain. A broken chain is reported, and alerted on, but is not an
// error.
func (s *ChainServiceImpl) VerifyIntegrity(ctx context.Context) (*domain.IntegrityReport, error) {
	blocks, err := s.chainRepo.List(ctx, 0, 0)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load chain: %w", err))
	}

	report := domain.VerifyChain(blocks)
	if !report.Valid {
		s.log.Error().
			Str("alert", "chain_integrity").
			Int64("first_bad_index", report.FirstBadIndex).
			Int("length", report.Length).
			Str("reason", report.Reason).
			Msg("transaction chain failed integrity check")
	} else {
		s.log.Debug().Int("length", report.Length).Msg("transaction chain verified")
	}
	return &report, nil
}

// EnsureGenesis creates block 0 if the chain is empty.
func (s *ChainServiceImpl) EnsureGenesis(ctx context.Context) error {
	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	head, err := s.chainRepo.Head(ctx, tx)
	if err != nil {
		return fmt.Errorf("load chain head: %w", err)
	}
	if head != nil {
		return nil
	}

	genesis := domain.NewGenesisBlock()
	genesis.CreatedAt = time.Now().UTC()
	if err := s.chainRepo.Append(ctx, tx, &genesis); err != nil {
		return fmt.Errorf("append genesis: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit genesis: %w", err)
	}

	s.log.Info().Str("hash", genesis.Hash).Msg("genesis block created")
	return nil
}

// appendTransactionBlock links transactionID onto the locked chain head inside tx, creating the
// genesis block first on an empty chain. Both blocks are stamped with at.
func appendTransactionBlock(ctx context.Context, repo ports.ChainRepository, tx pgx.Tx, transactionID int64, at time.Time) (*domain.ChainBlock, error) {
	head, err := repo.Head(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("lock chain head: %w", err)
	}
	if head == nil {
		genesis := domain.NewGenesisBlock()
		genesis.CreatedAt = at
		if err := repo.Append(ctx, tx, &genesis); err != nil {
			return nil, fmt.Errorf("append genesis: %w", err)
		}
		head = &genesis
	}

	block := domain.NextBlock(*head, transactionID)
	block.CreatedAt = at
	if err := repo.Append(ctx, tx, &block); err != nil {
		return nil, fmt.Errorf("append block: %w", err)
	}
	return &block, nil
}
