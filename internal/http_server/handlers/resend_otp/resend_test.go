package resendOtp_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"bluora_auth/internal/auth"
	resendOtp "bluora_auth/internal/http_server/handlers/resend_otp"
	"bluora_auth/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type fakeResender struct {
	err error
}

func (f *fakeResender) ResendOtp(_ context.Context, email string) error {
	return f.err
}

func serve(t *testing.T, res resendOtp.OtpResender, body string) *httptest.ResponseRecorder {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := resendOtp.New(log, validator.New(), res)

	req := httptest.NewRequest(http.MethodPost, "/auth/resend-otp", bytes.NewReader([]byte(body)))
	rr := httptest.NewRecorder()
	handler(rr, req)

	return rr
}

func TestResend_Success(t *testing.T) {
	t.Parallel()

	rr := serve(t, &fakeResender{}, `{"email":"alice@example.com"}`)

	require.Equal(t, http.StatusOK, rr.Code)
}

func TestResend_UnknownUser(t *testing.T) {
	t.Parallel()

	rr := serve(t, &fakeResender{err: storage.ErrUserNotFound}, `{"email":"ghost@example.com"}`)

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestResend_AlreadyVerified(t *testing.T) {
	t.Parallel()

	rr := serve(t, &fakeResender{err: auth.ErrAlreadyVerified}, `{"email":"alice@example.com"}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestResend_MissingEmail(t *testing.T) {
	t.Parallel()

	rr := serve(t, &fakeResender{}, `{}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}
