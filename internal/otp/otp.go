package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	sl "bluora_auth/internal/lib/logger"
	"bluora_auth/internal/models"
)

const (
	SubjectVerify = "Bluora - Verify your email"
	SubjectResend = "Bluora - New OTP Request"
)

type Publisher interface {
	SendMessage(ctx context.Context, msg models.EmailMessage) error
}

type OtpSetter interface {
	SetOtp(ctx context.Context, userID int64, code string, expiry time.Time) error
}

// Issuer owns the one-time code lifecycle: generate, store with an expiry,
// hand off to the notification channel.
type Issuer struct {
	log   *slog.Logger
	users OtpSetter
	pub   Publisher
	ttl   time.Duration
}

func New(log *slog.Logger, users OtpSetter, pub Publisher, ttl time.Duration) *Issuer {
	return &Issuer{
		log:   log,
		users: users,
		pub:   pub,
		ttl:   ttl,
	}
}

// Issue generates a fresh code and overwrites whatever code the user had. The
// code is committed to the store before delivery is attempted; a failed
// delivery is logged and the issuance still succeeds, the user can retry via
// resend.
func (i *Issuer) Issue(ctx context.Context, userID int64, email, subject string) error {
	const op = "otp.Issue"

	log := i.log.With(slog.String("op", op))

	code, err := Generate()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	expiry := time.Now().Add(i.ttl)

	if err := i.users.SetOtp(ctx, userID, code, expiry); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := models.EmailMessage{
		Email:   email,
		Subject: subject,
		Code:    code,
	}

	if err := i.pub.SendMessage(ctx, msg); err != nil {
		log.Error("failed to send otp email", sl.Err(err))
	}

	return nil
}

// Generate returns a 6-digit code drawn uniformly from [100000, 999999].
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
