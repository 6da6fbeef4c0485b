package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxMessageLength is the longest transfer message accepted, in characters.
const MaxMessageLength = 500

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	accountRepo ports.AccountRepository
	txRepo      ports.TransactionRepository
	chainRepo   ports.ChainRepository
	transactor  ports.DBTransactor
	pins        ports.PinVerifier
	envelopes   ports.EnvelopeService
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	accountRepo ports.AccountRepository,
	txRepo ports.TransactionRepository,
	chainRepo ports.ChainRepository,
	transactor ports.DBTransactor,
	pins ports.PinVerifier,
	envelopes ports.EnvelopeService,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		chainRepo:   chainRepo,
		transactor:  transactor,
		pins:        pins,
		envelopes:   envelopes,
		log:         log,
	}
}

// GetBalance returns the committed balance of the account.
func (s *LedgerServiceImpl) GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, apperror.ErrDatabaseError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return 0, apperror.ErrInvalidToken()
	}
	return account.Balance, nil
}

// Transfer moves amount from the sender to the account registered under ReceiverEmail.
//
// Both account rows are locked in ascending id order, so two transfers between the same pair can
// never deadlock. Balances, the sealed transaction row and the chain block are written in a single
// database transaction; any failure rolls all of them back.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidInput("amount must be greater than zero")
	}
	if utf8.RuneCountInString(req.Message) > MaxMessageLength {
		return nil, apperror.ErrInvalidInput(fmt.Sprintf("message must be at most %d characters", MaxMessageLength))
	}

	receiver, err := s.accountRepo.GetByEmail(ctx, domain.NormalizeEmail(req.ReceiverEmail))
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("find receiver: %w", err))
	}
	if receiver == nil {
		return nil, apperror.ErrUnknownRecipient()
	}
	if receiver.ID == req.SenderID {
		return nil, apperror.ErrInvalidInput("cannot transfer to your own account")
	}

	pinOK, err := s.pins.VerifyPin(ctx, req.SenderID, req.Pin)
	if err != nil {
		return nil, err
	}
	if !pinOK {
		return nil, apperror.ErrInvalidPin()
	}

	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	first, second := req.SenderID, receiver.ID
	if bytes.Compare(first[:], second[:]) > 0 {
		first, second = second, first
	}
	locked := make(map[uuid.UUID]*domain.Account, 2)
	for _, id := range []uuid.UUID{first, second} {
		acc, err := s.accountRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("lock account: %w", err))
		}
		if acc == nil {
			return nil, apperror.InternalError(fmt.Errorf("account %s vanished during transfer", id))
		}
		locked[id] = acc
	}
	sender, recv := locked[req.SenderID], locked[receiver.ID]

	if !sender.CanCover(req.Amount) {
		return nil, apperror.ErrInsufficientFunds()
	}

	txID, err := s.txRepo.NextID(ctx, tx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("reserve transaction id: %w", err))
	}

	txn := &domain.Transaction{
		ID:         txID,
		SenderID:   sender.ID,
		ReceiverID: recv.ID,
		Status:     domain.TransactionStatusSettled,
		SettledAt:  time.Now().UTC(),
	}

	txn.AmountEnvelope, err = s.envelopes.Seal(strconv.FormatInt(req.Amount, 10), txn.SealContext(domain.SealFieldAmount))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("seal amount: %w", err))
	}
	txn.MessageEnvelope, err = s.envelopes.Seal(req.Message, txn.SealContext(domain.SealFieldMessage))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("seal message: %w", err))
	}

	if err := s.accountRepo.UpdateBalance(ctx, tx, sender.ID, sender.Balance-req.Amount); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("debit sender: %w", err))
	}
	if err := s.accountRepo.UpdateBalance(ctx, tx, recv.ID, recv.Balance+req.Amount); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("credit receiver: %w", err))
	}
	if err := s.txRepo.Create(ctx, tx, txn); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("insert transaction: %w", err))
	}

	block, err := appendTransactionBlock(ctx, s.chainRepo, tx, txn.ID, txn.SettledAt)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit transfer: %w", err))
	}

	s.log.Info().
		Int64("tx_id", txn.ID).
		Str("sender_id", sender.ID.String()).
		Str("receiver_id", recv.ID.String()).
		Int64("block_index", block.Index).
		Msg("transfer settled")

	return txn, nil
}
