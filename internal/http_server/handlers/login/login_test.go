package login_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"bluora_auth/internal/auth"
	"bluora_auth/internal/http_server/handlers/login"
	"bluora_auth/internal/models"
	"bluora_auth/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	token  string
	claims models.Claims
	err    error

	gotEmail, gotPass, gotOtp string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, email, password, otp string) (string, models.Claims, error) {
	f.gotEmail, f.gotPass, f.gotOtp = email, password, otp
	if f.err != nil {
		return "", models.Claims{}, f.err
	}
	return f.token, f.claims, nil
}

func serve(t *testing.T, a login.Authenticator, body string) *httptest.ResponseRecorder {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := login.New(log, validator.New(), a)

	req := httptest.NewRequest(http.MethodPost, "/auth/callback", bytes.NewReader([]byte(body)))
	rr := httptest.NewRecorder()
	handler(rr, req)

	return rr
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	a := &fakeAuthenticator{
		token:  "tok",
		claims: models.Claims{ID: 1, Name: "Alice", Email: "alice@example.com"},
	}

	rr := serve(t, a, `{"email":"alice@example.com","password":"pw1"}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var got login.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "OK", got.Status)
	assert.Equal(t, "tok", got.Token)
	require.NotNil(t, got.User)
	assert.Equal(t, int64(1), got.User.ID)

	assert.Equal(t, "alice@example.com", a.gotEmail)
	assert.Equal(t, "pw1", a.gotPass)
}

func TestLogin_UnverifiedRedirectsIntoVerification(t *testing.T) {
	t.Parallel()

	a := &fakeAuthenticator{err: auth.ErrEmailNotVerified}

	rr := serve(t, a, `{"email":"alice@example.com","password":"pw1"}`)

	require.Equal(t, http.StatusForbidden, rr.Code)

	var got login.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.True(t, got.VerificationRequired)
}

func TestLogin_GenericRejection(t *testing.T) {
	t.Parallel()

	// Unknown account and bad password must be indistinguishable on the wire.
	for _, err := range []error{storage.ErrUserNotFound, auth.ErrInvalidCredentials} {
		rr := serve(t, &fakeAuthenticator{err: err}, `{"email":"alice@example.com","password":"pw1"}`)

		require.Equal(t, http.StatusUnauthorized, rr.Code)

		var got login.Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "Authentication failed", got.Error)
	}
}

func TestLogin_OtpErrorsStayTyped(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{auth.ErrInvalidOtp, "Invalid OTP"},
		{auth.ErrOtpExpired, "OTP has expired"},
	}

	for _, tc := range cases {
		rr := serve(t, &fakeAuthenticator{err: tc.err}, `{"email":"alice@example.com","otp":"123456"}`)

		require.Equal(t, http.StatusUnauthorized, rr.Code)

		var got login.Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, tc.want, got.Error)
	}
}

func TestLogin_MissingPassword(t *testing.T) {
	t.Parallel()

	rr := serve(t, &fakeAuthenticator{err: auth.ErrMissingPassword}, `{"email":"alice@example.com"}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogin_InvalidEmail(t *testing.T) {
	t.Parallel()

	rr := serve(t, &fakeAuthenticator{}, `{"email":"not-an-email","password":"pw1"}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}
