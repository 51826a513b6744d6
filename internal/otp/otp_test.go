package otp_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"bluora_auth/internal/models"
	"bluora_auth/internal/otp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordSetter struct {
	userID int64
	code   string
	expiry time.Time
	err    error
	calls  int
}

func (s *recordSetter) SetOtp(_ context.Context, userID int64, code string, expiry time.Time) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.userID = userID
	s.code = code
	s.expiry = expiry
	return nil
}

type recordPub struct {
	msgs []models.EmailMessage
	err  error
}

func (p *recordPub) SendMessage(_ context.Context, msg models.EmailMessage) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerate_SixDigitRange(t *testing.T) {
	t.Parallel()

	for i := 0; i < 200; i++ {
		code, err := otp.Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestIssue_StoresCodeBeforeDelivery(t *testing.T) {
	t.Parallel()

	setter := &recordSetter{}
	pub := &recordPub{}
	issuer := otp.New(discardLogger(), setter, pub, 2*time.Minute)

	err := issuer.Issue(context.Background(), 7, "alice@example.com", otp.SubjectVerify)
	require.NoError(t, err)

	assert.Equal(t, int64(7), setter.userID)
	assert.Len(t, setter.code, 6)
	assert.WithinDuration(t, time.Now().Add(2*time.Minute), setter.expiry, 2*time.Second)

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, setter.code, pub.msgs[0].Code)
	assert.Equal(t, "alice@example.com", pub.msgs[0].Email)
	assert.Equal(t, otp.SubjectVerify, pub.msgs[0].Subject)
}

func TestIssue_DeliveryFailureStillSucceeds(t *testing.T) {
	t.Parallel()

	setter := &recordSetter{}
	pub := &recordPub{err: errors.New("smtp down")}
	issuer := otp.New(discardLogger(), setter, pub, 2*time.Minute)

	err := issuer.Issue(context.Background(), 7, "alice@example.com", otp.SubjectResend)
	require.NoError(t, err, "delivery failure must not surface as an issuance failure")

	assert.NotEmpty(t, setter.code, "the code must be committed even when delivery fails")
}

func TestIssue_StoreFailureFails(t *testing.T) {
	t.Parallel()

	setter := &recordSetter{err: errors.New("db down")}
	pub := &recordPub{}
	issuer := otp.New(discardLogger(), setter, pub, 2*time.Minute)

	err := issuer.Issue(context.Background(), 7, "alice@example.com", otp.SubjectVerify)
	require.Error(t, err)
	assert.Empty(t, pub.msgs, "nothing may be sent when the code was not stored")
}
