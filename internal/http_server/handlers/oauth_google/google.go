package oauthGoogle

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	resp "bluora_auth/internal/lib/api/response"
	sl "bluora_auth/internal/lib/logger"
	"bluora_auth/internal/models"
	"bluora_auth/internal/oauth"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Token string         `json:"token,omitempty"`
	User  *models.Claims `json:"user,omitempty"`
}

type IdentityProvider interface {
	AuthCodeURL(state string) string
	UserInfo(ctx context.Context, code string) (oauth.UserInfo, error)
}

type FederatedSigner interface {
	FederatedSignIn(ctx context.Context, name, email string) (string, models.Claims, error)
}

// Login redirects the browser into the provider's consent screen.
func Login(provider IdentityProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, provider.AuthCodeURL("state"), http.StatusTemporaryRedirect)
	}
}

// Callback finishes the federated flow: exchange the code, trust the
// provider-attested identity, find-or-create the account, mint a session.
func Callback(
	log *slog.Logger,
	provider IdentityProvider,
	authService FederatedSigner,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.oauthGoogle.Callback"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		code := r.URL.Query().Get("code")
		if code == "" {
			log.Warn("missing code parameter")

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Missing code"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		info, err := provider.UserInfo(ctx, code)
		if err != nil {
			log.Warn("provider rejected the code", sl.Err(err))

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("Authentication denied"))

			return
		}

		token, claims, err := authService.FederatedSignIn(ctx, info.Name, info.Email)
		if err != nil {
			log.Error("failed to sign in federated user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("federated user signed in", slog.Int64("uid", claims.ID))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Token:    token,
			User:     &claims,
		})
	}
}
