package resendOtp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"bluora_auth/internal/auth"
	resp "bluora_auth/internal/lib/api/response"
	sl "bluora_auth/internal/lib/logger"
	"bluora_auth/internal/storage"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email string `json:"email" validate:"required,email"`
}

type Response struct {
	resp.Response
}

type OtpResender interface {
	ResendOtp(ctx context.Context, email string) error
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService OtpResender,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.resendOtp.New"

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

		if err := authService.ResendOtp(ctx, req.Email); err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				log.Info("User not found")

				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("User not found"))

				return
			}

			if errors.Is(err, auth.ErrAlreadyVerified) {
				log.Info("User is already verified")

				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("User is already verified"))

				return
			}

			log.Error("failed to resend otp", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("New OTP sent")

		ResponseOK(w, r)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, Response{
		Response: resp.OK(),
	})
}
