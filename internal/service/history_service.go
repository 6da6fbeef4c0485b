package service

import (
	"context"
	"fmt"
	"strconv"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HistoryServiceImpl implements ports.HistoryService.
type HistoryServiceImpl struct {
	accountRepo ports.AccountRepository
	txRepo      ports.TransactionRepository
	otpSvc      ports.OtpService
	envelopes   ports.EnvelopeService
	limit       int
	log         zerolog.Logger
}

// NewHistoryService creates a new HistoryServiceImpl. limit caps each side of the history; zero
// means unlimited.
func NewHistoryService(
	accountRepo ports.AccountRepository,
	txRepo ports.TransactionRepository,
	otpSvc ports.OtpService,
	envelopes ports.EnvelopeService,
	limit int,
	log zerolog.Logger,
) *HistoryServiceImpl {
	return &HistoryServiceImpl{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		otpSvc:      otpSvc,
		envelopes:   envelopes,
		limit:       limit,
		log:         log,
	}
}

// History returns the account's sent and received transfers with envelopes left sealed.
func (s *HistoryServiceImpl) History(ctx context.Context, accountID uuid.UUID) (*ports.History, error) {
	sent, err := s.txRepo.ListSent(ctx, accountID, s.limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list sent: %w", err))
	}
	received, err := s.txRepo.ListReceived(ctx, accountID, s.limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list received: %w", err))
	}
	return &ports.History{Sent: sent, Received: received}, nil
}

// RequestDecryptOTP issues a decrypt code to the caller.
func (s *HistoryServiceImpl) RequestDecryptOTP(ctx context.Context, accountID uuid.UUID) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return apperror.ErrInvalidToken()
	}
	return s.otpSvc.Issue(ctx, account, domain.OtpPurposeDecrypt)
}

// Decrypt consumes the caller's decrypt OTP and opens both fields of one transaction.
// Every failure before the envelopes are opened is reported as Unauthorized.
func (s *HistoryServiceImpl) Decrypt(ctx context.Context, accountID uuid.UUID, transactionID int64, code string) (*ports.DecryptedTransfer, error) {
	grant, err := s.otpSvc.VerifyDecrypt(ctx, accountID, code)
	if err != nil {
		return nil, err
	}
	if grant == nil {
		return nil, apperror.ErrUnauthorized()
	}

	txn, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil || !txn.IsParticipant(accountID) {
		s.log.Warn().
			Str("account_id", accountID.String()).
			Int64("tx_id", transactionID).
			Msg("decrypt refused")
		return nil, apperror.ErrUnauthorized()
	}

	plaintexts, err := s.envelopes.Open(grant,
		domain.SealedField{Context: txn.SealContext(domain.SealFieldAmount), Envelope: txn.AmountEnvelope},
		domain.SealedField{Context: txn.SealContext(domain.SealFieldMessage), Envelope: txn.MessageEnvelope},
	)
	if err != nil {
		return nil, err
	}

	amount, err := strconv.ParseInt(plaintexts[0], 10, 64)
	if err != nil {
		return nil, apperror.ErrCorrupt(fmt.Errorf("parse amount: %w", err))
	}

	return &ports.DecryptedTransfer{
		TransactionID: txn.ID,
		Amount:        amount,
		Message:       plaintexts[1],
	}, nil
}
