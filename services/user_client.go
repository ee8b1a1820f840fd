package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// UserAccount is the identity service's view of a user.
type UserAccount struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Avatar     string `json:"avatar"`
	IsAdmin    bool   `json:"isAdmin"`
	PrefLocale string `json:"prefLocale"`

	SendEventCreationEmails bool `json:"sendEventCreationEmails"`
}

// IdentityClient looks up accounts in the external login service. It is
// injected into every component that needs it rather than shared as a
// package-level singleton.
type IdentityClient interface {
	ByIDs(ctx context.Context, ids []int64) (map[int64]UserAccount, error)
	ByEmail(ctx context.Context, email string) (*UserAccount, error)
	ByUsername(ctx context.Context, username string) (*UserAccount, error)
}

// LoginClient talks to the Webmaker login service over HTTP with a shared
// secret.
type LoginClient struct {
	baseURL string
	secret  string
	client  *http.Client
}

func NewLoginClient(baseURL, secret string) *LoginClient {
	return &LoginClient{
		baseURL: baseURL,
		secret:  secret,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// ByIDs resolves many accounts in a single round trip. Callers are expected
// to coalesce the ids they need per request into one call. Unknown ids are
// simply absent from the result.
func (lc *LoginClient) ByIDs(ctx context.Context, ids []int64) (map[int64]UserAccount, error) {
	users := make(map[int64]UserAccount, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	body, err := json.Marshal(map[string][]int64{"ids": ids})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		lc.baseURL+"/user/ids", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+lc.secret)

	resp, err := lc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login service: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Users []UserAccount `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("login service: %w", err)
	}

	for _, user := range payload.Users {
		users[user.ID] = user
	}

	return users, nil
}

func (lc *LoginClient) ByEmail(ctx context.Context, email string) (*UserAccount, error) {
	return lc.getUser(ctx, "/user/email/"+url.PathEscape(email))
}

func (lc *LoginClient) ByUsername(ctx context.Context, username string) (*UserAccount, error) {
	return lc.getUser(ctx, "/user/username/"+url.PathEscape(username))
}

func (lc *LoginClient) ByID(ctx context.Context, id int64) (*UserAccount, error) {
	return lc.getUser(ctx, "/user/id/"+strconv.FormatInt(id, 10))
}

func (lc *LoginClient) getUser(ctx context.Context, path string) (*UserAccount, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lc.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Basic "+lc.secret)

	resp, err := lc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login service: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		User UserAccount `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("login service: %w", err)
	}

	return &payload.User, nil
}
