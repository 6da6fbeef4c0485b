package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"
	"unicode/utf8"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const minPasswordLength = 8

var pinPattern = regexp.MustCompile(`^\d{4,12}$`)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	accountRepo    ports.AccountRepository
	hashSvc        ports.HashService
	otpSvc         ports.OtpService
	tokenSvc       ports.TokenService
	validate       *validator.Validate
	initialBalance int64
	log            zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthServiceImpl. New accounts are seeded with initialBalance coins.
func NewAuthService(
	accountRepo ports.AccountRepository,
	hashSvc ports.HashService,
	otpSvc ports.OtpService,
	tokenSvc ports.TokenService,
	initialBalance int64,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		accountRepo:    accountRepo,
		hashSvc:        hashSvc,
		otpSvc:         otpSvc,
		tokenSvc:       tokenSvc,
		validate:       validator.New(),
		initialBalance: initialBalance,
		log:            log,
	}
}

// Register creates an account with hashed password and PIN.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (uuid.UUID, error) {
	email := domain.NormalizeEmail(req.Email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return uuid.Nil, apperror.ErrInvalidInput("email is malformed")
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		return uuid.Nil, apperror.ErrInvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if !pinPattern.MatchString(req.Pin) {
		return uuid.Nil, apperror.ErrInvalidInput("pin must be 4 to 12 digits")
	}

	existing, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, apperror.ErrDatabaseError(fmt.Errorf("check email: %w", err))
	}
	if existing != nil {
		return uuid.Nil, apperror.ErrEmailExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return uuid.Nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}
	pinHash, err := s.hashSvc.Hash(req.Pin)
	if err != nil {
		return uuid.Nil, apperror.InternalError(fmt.Errorf("hash pin: %w", err))
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		PinHash:      pinHash,
		Balance:      s.initialBalance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return uuid.Nil, apperror.ErrEmailExists()
		}
		return uuid.Nil, apperror.ErrDatabaseError(fmt.Errorf("create account: %w", err))
	}

	s.log.Info().Str("account_id", account.ID.String()).Msg("account registered")
	return account.ID, nil
}

// Authenticate checks email and password.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, email, password string) (uuid.UUID, error) {
	account, err := s.authenticate(ctx, email, password)
	if err != nil {
		return uuid.Nil, err
	}
	return account.ID, nil
}

func (s *AuthServiceImpl) authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("find account: %w", err))
	}
	if account == nil {
		// Burn the same Argon2id cost as a real check.
		_, _ = s.hashSvc.Verify(password, s.dummy())
		return nil, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return nil, apperror.ErrInvalidCredentials()
	}
	return account, nil
}

func (s *AuthServiceImpl) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hashSvc.Hash(uuid.NewString())
		if err != nil {
			s.log.Error().Err(err).Msg("failed to prepare dummy password hash")
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// Login authenticates and issues a login OTP to the account's e-mail.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) error {
	account, err := s.authenticate(ctx, email, password)
	if err != nil {
		return err
	}
	return s.otpSvc.Issue(ctx, account, domain.OtpPurposeLogin)
}

// VerifyLoginOTP consumes the login OTP and returns a JWT.
func (s *AuthServiceImpl) VerifyLoginOTP(ctx context.Context, email, code string) (string, time.Time, error) {
	account, err := s.accountRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return "", time.Time{}, apperror.ErrDatabaseError(fmt.Errorf("find account: %w", err))
	}
	if account == nil {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	ok, err := s.otpSvc.Verify(ctx, account.ID, domain.OtpPurposeLogin, code)
	if err != nil {
		return "", time.Time{}, err
	}
	if !ok {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.Generate(account.ID, account.Email)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}
	return token, expiry, nil
}

// VerifyPin checks the account's transaction PIN. An unknown account never verifies.
func (s *AuthServiceImpl) VerifyPin(ctx context.Context, accountID uuid.UUID, pin string) (bool, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return false, apperror.ErrDatabaseError(fmt.Errorf("find account: %w", err))
	}
	if account == nil {
		return false, nil
	}

	valid, err := s.hashSvc.Verify(pin, account.PinHash)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("verify pin: %w", err))
	}
	return valid, nil
}
