package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bluora_auth/internal/lib/jwt"
	sl "bluora_auth/internal/lib/logger"
	"bluora_auth/internal/models"
	"bluora_auth/internal/otp"
	"bluora_auth/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrMissingPassword    = errors.New("missing password")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidOtp         = errors.New("invalid otp")
	ErrOtpExpired         = errors.New("otp has expired")
	ErrAlreadyVerified    = errors.New("user is already verified")
)

type UserSaver interface {
	SaveUser(ctx context.Context, name, email string, passHash []byte, verified bool) (int64, error)
}

type UserProvider interface {
	User(ctx context.Context, email string) (models.User, error)
}

type UserVerifier interface {
	ConsumeOtp(ctx context.Context, userID int64, code string) (bool, error)
}

type OtpIssuer interface {
	Issue(ctx context.Context, userID int64, email, subject string) error
}

// Auth is the single entry point for authentication attempts. Each attempt is
// classified (otp vs password) and driven to a session token or a typed
// rejection; all durable state lives behind the injected store interfaces.
type Auth struct {
	log           *slog.Logger
	usrSaver      UserSaver
	usrProvider   UserProvider
	usrVerifier   UserVerifier
	otpIssuer     OtpIssuer
	sessionTTL    time.Duration
	sessionSecret string
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	userVerifier UserVerifier,
	otpIssuer OtpIssuer,
	sessionTTL time.Duration,
	sessionSecret string,
) *Auth {
	return &Auth{
		log:           log,
		usrSaver:      userSaver,
		usrProvider:   userProvider,
		usrVerifier:   userVerifier,
		otpIssuer:     otpIssuer,
		sessionTTL:    sessionTTL,
		sessionSecret: sessionSecret,
	}
}

// Register creates an unverified account and issues the first verification
// code. The account is persisted before the email is attempted, so a delivery
// failure never loses the registration.
func (a *Auth) Register(
	ctx context.Context,
	name, email, password string,
) (int64, error) {
	const op = "auth.Register"

	log := a.log.With(slog.String("op", op))

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := a.usrSaver.SaveUser(ctx, name, email, passHash, false)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")
			return 0, fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		log.Error("failed to save user", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := a.otpIssuer.Issue(ctx, id, email, otp.SubjectVerify); err != nil {
		log.Error("failed to issue otp", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.Int64("uid", id))

	return id, nil
}

// Authenticate drives one login attempt to a session token or a typed error.
// A supplied otp takes the otp path regardless of whether a password was also
// sent; a successful otp both verifies the account and logs the user in.
func (a *Auth) Authenticate(
	ctx context.Context,
	email, password, otpCode string,
) (string, models.Claims, error) {
	const op = "auth.Authenticate"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return "", models.Claims{}, storage.ErrUserNotFound
		}

		log.Error("failed to get user", sl.Err(err))
		return "", models.Claims{}, err
	}

	if strings.TrimSpace(otpCode) != "" {
		if err := a.verifyOtp(ctx, user, otpCode); err != nil {
			return "", models.Claims{}, err
		}
	} else {
		if password == "" {
			return "", models.Claims{}, ErrMissingPassword
		}

		if !user.IsVerified {
			log.Info("login attempt on unverified account")
			return "", models.Claims{}, ErrEmailNotVerified
		}

		if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
			log.Info("invalid credentials", sl.Err(err))
			return "", models.Claims{}, ErrInvalidCredentials
		}
	}

	claims := models.Claims{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}

	token, err := jwt.NewToken(claims, a.sessionSecret, a.sessionTTL)
	if err != nil {
		log.Error("failed to generate session token", sl.Err(err))
		return "", models.Claims{}, err
	}

	log.Info("user logged in successfully", slog.Int64("uid", user.ID))

	return token, claims, nil
}

// ResendOtp overwrites the previous code with a fresh one. Resending to a
// verified account is meaningless and rejected without touching state.
func (a *Auth) ResendOtp(ctx context.Context, email string) error {
	const op = "auth.ResendOtp"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return storage.ErrUserNotFound
		}

		log.Error("failed to get user", sl.Err(err))
		return err
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}

	if err := a.otpIssuer.Issue(ctx, user.ID, user.Email, otp.SubjectResend); err != nil {
		log.Error("failed to issue otp", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("otp resent", slog.Int64("uid", user.ID))

	return nil
}

// FederatedSignIn handles a provider-attested identity. First sight creates a
// verified account with an unusable random password; a duplicate create (two
// callbacks racing) falls back to looking the account up, so the operation is
// idempotent on email.
func (a *Auth) FederatedSignIn(
	ctx context.Context,
	name, email string,
) (string, models.Claims, error) {
	const op = "auth.FederatedSignIn"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.User(ctx, email)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			log.Error("failed to get user", sl.Err(err))
			return "", models.Claims{}, err
		}

		id, saveErr := a.createFederatedUser(ctx, name, email)
		if saveErr != nil {
			if !errors.Is(saveErr, storage.ErrUserExists) {
				log.Error("failed to create federated user", sl.Err(saveErr))
				return "", models.Claims{}, saveErr
			}

			// Lost the race to a concurrent callback; the existing row wins.
			user, err = a.usrProvider.User(ctx, email)
			if err != nil {
				log.Error("failed to get user after create race", sl.Err(err))
				return "", models.Claims{}, err
			}
		} else {
			user = models.User{ID: id, Name: name, Email: email, IsVerified: true}

			log.Info("federated account created", slog.Int64("uid", id))
		}
	}

	claims := models.Claims{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}

	token, err := jwt.NewToken(claims, a.sessionSecret, a.sessionTTL)
	if err != nil {
		log.Error("failed to generate session token", sl.Err(err))
		return "", models.Claims{}, err
	}

	log.Info("federated sign-in successful", slog.Int64("uid", user.ID))

	return token, claims, nil
}

// verifyOtp compares the supplied code against the stored one and consumes it
// on success. The consume is a conditional store update, so a code overwritten
// by a concurrent resend, or already used once, is rejected no matter what the
// earlier read returned.
func (a *Auth) verifyOtp(ctx context.Context, user models.User, otpCode string) error {
	log := a.log.With(slog.String("op", "auth.verifyOtp"))

	supplied := strings.TrimSpace(otpCode)

	stored := ""
	if user.Otp != nil {
		stored = strings.TrimSpace(*user.Otp)
	}

	if stored == "" || stored != supplied {
		return ErrInvalidOtp
	}

	if user.OtpExpiry == nil || !time.Now().Before(*user.OtpExpiry) {
		return ErrOtpExpired
	}

	consumed, err := a.usrVerifier.ConsumeOtp(ctx, user.ID, supplied)
	if err != nil {
		log.Error("failed to consume otp", sl.Err(err))
		return err
	}
	if !consumed {
		return ErrInvalidOtp
	}

	return nil
}

func (a *Auth) createFederatedUser(ctx context.Context, name, email string) (int64, error) {
	// The provider already attests the identity; the password slot is filled
	// with random bytes so the credential path stays unusable.
	placeholder := make([]byte, 8)
	if _, err := rand.Read(placeholder); err != nil {
		return 0, err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(placeholder)), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	return a.usrSaver.SaveUser(ctx, name, email, passHash, true)
}
