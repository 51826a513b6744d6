package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"bluora_auth/internal/auth"
	resp "bluora_auth/internal/lib/api/response"
	sl "bluora_auth/internal/lib/logger"
	"bluora_auth/internal/models"
	"bluora_auth/internal/storage"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email string `json:"email" validate:"required,email"`
	Pass  string `json:"password,omitempty"`
	Otp   string `json:"otp,omitempty"`
}

type Response struct {
	resp.Response
	Token                string         `json:"token,omitempty"`
	User                 *models.Claims `json:"user,omitempty"`
	VerificationRequired bool           `json:"verification_required,omitempty"`
}

type Authenticator interface {
	Authenticate(ctx context.Context, email, password, otp string) (string, models.Claims, error)
}

// New handles the credentials callback: a password login or an OTP
// verification-login, decided by the orchestrator. Not-found and bad-password
// collapse into one generic rejection; OTP failures stay distinguishable so
// the verify screen can tell a mistyped code from an expired one.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService Authenticator,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		log.Info("Request body decoded")

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		token, claims, err := authService.Authenticate(ctx, req.Email, req.Pass, req.Otp)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrMissingPassword):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Missing password"))

			case errors.Is(err, auth.ErrEmailNotVerified):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, Response{
					Response:             resp.Error("Email not verified"),
					VerificationRequired: true,
				})

			case errors.Is(err, auth.ErrInvalidOtp):
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Invalid OTP"))

			case errors.Is(err, auth.ErrOtpExpired):
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("OTP has expired"))

			case errors.Is(err, storage.ErrUserNotFound), errors.Is(err, auth.ErrInvalidCredentials):
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Authentication failed"))

			default:
				log.Error("failed to login user", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))
			}

			return
		}

		log.Info("User logged in successfully")

		ResponseOK(w, r, token, claims)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request, token string, claims models.Claims) {
	render.JSON(w, r, Response{
		Response: resp.OK(),
		Token:    token,
		User:     &claims,
	})
}
