package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// UserInfo is the provider-attested identity used to establish a session.
type UserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

type GoogleClient struct {
	cfg *oauth2.Config
}

func NewGoogle(clientID, clientSecret, redirectURL string) *GoogleClient {
	return &GoogleClient{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (c *GoogleClient) AuthCodeURL(state string) string {
	return c.cfg.AuthCodeURL(state)
}

// UserInfo exchanges the callback code and fetches the identity it attests.
func (c *GoogleClient) UserInfo(ctx context.Context, code string) (UserInfo, error) {
	const op = "oauth.google.UserInfo"

	token, err := c.cfg.Exchange(ctx, code)
	if err != nil {
		return UserInfo{}, fmt.Errorf("%s: failed to exchange code: %w", op, err)
	}

	client := c.cfg.Client(ctx, token)

	resp, err := client.Get(userInfoURL)
	if err != nil {
		return UserInfo{}, fmt.Errorf("%s: failed to fetch userinfo: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return UserInfo{}, fmt.Errorf("%s: userinfo returned status %d", op, resp.StatusCode)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return UserInfo{}, fmt.Errorf("%s: failed to decode userinfo: %w", op, err)
	}

	return info, nil
}
