package register_test

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
	"bluora_auth/internal/http_server/handlers/register"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegisterer struct {
	id  int64
	err error
}

func (f *fakeRegisterer) Register(_ context.Context, name, email, password string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.id, nil
}

func serve(t *testing.T, reg register.UserRegisterer, body string) *httptest.ResponseRecorder {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := register.New(log, validator.New(), reg)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte(body)))
	rr := httptest.NewRecorder()
	handler(rr, req)

	return rr
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	rr := serve(t, &fakeRegisterer{id: 5},
		`{"name":"Alice","email":"alice@example.com","password":"pw1"}`)

	require.Equal(t, http.StatusCreated, rr.Code)

	var got register.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "OK", got.Status)
	assert.Equal(t, int64(5), got.UserID)
}

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()

	rr := serve(t, &fakeRegisterer{id: 5}, `{"email":"alice@example.com"}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	rr := serve(t, &fakeRegisterer{err: auth.ErrUserExists},
		`{"name":"Alice","email":"alice@example.com","password":"pw1"}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var got register.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "User already exists", got.Error)
}
