package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet-ledger/internal/adapter/storage/memory"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	sent chan domain.OtpDelivery
	err  error
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{sent: make(chan domain.OtpDelivery, 8)}
}

func (n *captureNotifier) Deliver(_ context.Context, d domain.OtpDelivery) error {
	n.sent <- d
	return n.err
}

func (n *captureNotifier) next(t *testing.T) domain.OtpDelivery {
	t.Helper()
	select {
	case d := <-n.sent:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("no otp delivered")
		return domain.OtpDelivery{}
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func setupOtpService(t *testing.T) (*OtpServiceImpl, *captureNotifier, *fakeClock) {
	t.Helper()
	keys, err := DeriveKeys(testMasterKey)
	require.NoError(t, err)

	notifier := newCaptureNotifier()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewOtpService(memory.NewOtpStore(), notifier, keys.OtpMAC, NewGrantSigner(keys.Grant, DefaultGrantTTL), OtpConfig{
		TTL:         5 * time.Minute,
		Length:      6,
		MaxAttempts: 3,
	}, newTestLogger())
	svc.now = clock.Now
	return svc, notifier, clock
}

func testAccount() *domain.Account {
	return &domain.Account{ID: uuid.New(), Email: "alice@example.com"}
}

func TestOtpService_IssueDeliversSixDigitCode(t *testing.T) {
	svc, notifier, clock := setupOtpService(t)
	acc := testAccount()

	require.NoError(t, svc.Issue(context.Background(), acc, domain.OtpPurposeLogin))

	d := notifier.next(t)
	assert.Equal(t, acc.ID, d.AccountID)
	assert.Equal(t, "alice@example.com", d.Email)
	assert.Equal(t, domain.OtpPurposeLogin, d.Purpose)
	assert.Regexp(t, `^\d{6}$`, d.Code)
	assert.Equal(t, clock.Now().Add(5*time.Minute), d.ExpiresAt)
}

func TestOtpService_IssueRejectsUnknownPurpose(t *testing.T) {
	svc, _, _ := setupOtpService(t)
	err := svc.Issue(context.Background(), testAccount(), domain.OtpPurpose("reset"))
	assert.True(t, apperror.HasCode(err, apperror.CodeInternal))
}

func TestOtpService_VerifyIsSingleUse(t *testing.T) {
	svc, notifier, _ := setupOtpService(t)
	ctx := context.Background()
	acc := testAccount()

	require.NoError(t, svc.Issue(ctx, acc, domain.OtpPurposeLogin))
	code := notifier.next(t).Code

	ok, err := svc.Verify(ctx, acc.ID, domain.OtpPurposeLogin, code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify(ctx, acc.ID, domain.OtpPurposeLogin, code)
	require.NoError(t, err)
	assert.False(t, ok, "a consumed code cannot be replayed")
}

func TestOtpService_ReissueSupersedesPreviousCode(t *testing.T) {
	svc, notifier, _ := setupOtpService(t)
	ctx := context.Background()
	acc := testAccount()

	var first, second string
	for first == second {
		require.NoError(t, svc.Issue(ctx, acc, domain.OtpPurposeLogin))
		first = notifier.next(t).Code
		require.NoError(t, svc.Issue(ctx, acc, domain.OtpPurposeLogin))
		second = notifier.next(t).Code
	}

	ok, err := svc.Verify(ctx, acc.ID, domain.OtpPurposeLogin, first)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Verify(ctx, acc.ID, domain.OtpPurposeLogin, second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOtpService_ExpiredCodeFails(t *testing.T) {
	svc, notifier, clock := setupOtpService(t)
	ctx := context.Background()
	acc := testAccount()

	require.NoError(t, svc.Issue(ctx, acc, domain.OtpPurposeLogin))
	code := notifier.next(t).Code

	clock.Advance(5 * time.Minute)
	ok, err := svc.Verify(ctx, acc.ID, domain.OtpPurposeLogin, code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOtpService_AttemptCeilingInvalidates(t *testing.T) {
	svc, notifier, _ := setupOtpService(t)
	ctx := context.Background()
	acc := testAccount()

	require.NoError(t, svc.Issue(ctx, acc, domain.OtpPurposeLogin))
	code := notifier.next(t).Code
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 0; i < 3; i++ {
		ok, err := svc.Verify(ctx, acc.ID, domain.OtpPurposeLogin, wrong)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	ok, err := svc.Verify(ctx, acc.ID, domain.OtpPurposeLogin, code)
	require.NoError(t, err)
	assert.False(t, ok, "challenge is gone after MaxAttempts failures")
}

func TestOtpService_PurposesAreIsolated(t *testing.T) {
	svc, notifier, _ := setupOtpService(t)
	ctx := context.Background()
	acc := testAccount()

	require.NoError(t, svc.Issue(ctx, acc, domain.OtpPurposeLogin))
	code := notifier.next(t).Code

	ok, err := svc.Verify(ctx, acc.ID, domain.OtpPurposeDecrypt, code)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Verify(ctx, acc.ID, domain.OtpPurposeLogin, code)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOtpService_VerifyDecryptReturnsGrant(t *testing.T) {
	svc, notifier, _ := setupOtpService(t)
	ctx := context.Background()
	acc := testAccount()

	grant, err := svc.VerifyDecrypt(ctx, acc.ID, "123456")
	require.NoError(t, err)
	assert.Nil(t, grant)

	require.NoError(t, svc.Issue(ctx, acc, domain.OtpPurposeDecrypt))
	code := notifier.next(t).Code

	grant, err = svc.VerifyDecrypt(ctx, acc.ID, code)
	require.NoError(t, err)
	require.NotNil(t, grant)
	assert.Equal(t, acc.ID, grant.AccountID)
	assert.Len(t, grant.Tag, 32)
}

func TestOtpService_DeliveryFailureDoesNotFailIssue(t *testing.T) {
	svc, notifier, _ := setupOtpService(t)
	notifier.err = errors.New("smtp down")
	ctx := context.Background()
	acc := testAccount()

	require.NoError(t, svc.Issue(ctx, acc, domain.OtpPurposeLogin))
	code := notifier.next(t).Code

	ok, err := svc.Verify(ctx, acc.ID, domain.OtpPurposeLogin, code)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGenerateNumericCode(t *testing.T) {
	for _, n := range []int{4, 6, 8} {
		code, err := generateNumericCode(n)
		require.NoError(t, err)
		assert.Len(t, code, n)
	}
}
