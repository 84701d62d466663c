package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/campuskit/rollcall/internal/domain"
	apperrors "github.com/campuskit/rollcall/internal/errors"
	"github.com/campuskit/rollcall/internal/metrics"
)

// AuthClient is the stateless wrapper around the register/login/external-auth
// endpoints. On 2xx the raw server payload is returned verbatim; the client
// never reinterprets server-chosen wording.
type AuthClient struct {
	baseURL string
	client  *http.Client
}

// NewAuthClient creates an AuthClient for the given backend base URL.
// A nil httpClient gets a default client with a 10s call timeout.
func NewAuthClient(baseURL string, httpClient *http.Client) *AuthClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultCallTimeout}
	}
	return &AuthClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

type credentialsPayload struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

// Register creates an account and returns the server-provided message.
func (c *AuthClient) Register(ctx context.Context, creds domain.Credentials) (string, error) {
	if err := requireCredentials(creds); err != nil {
		return "", err
	}

	resp, err := postJSON(ctx, c.client, c.baseURL+"/register", credentialsPayload{
		Identity: creds.Identity,
		Secret:   creds.Secret,
	})
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("register", "error").Inc()
		return "", apperrors.AuthError("registration failed, please try again", err)
	}

	body := readBody(resp)
	if !is2xx(resp.StatusCode) {
		metrics.AuthRequestsTotal.WithLabelValues("register", "error").Inc()
		message := messageFromBody(body)
		if message == "" {
			message = "registration failed, please try again"
		}
		return "", apperrors.AuthError(message, fmt.Errorf("server returned status %d", resp.StatusCode))
	}

	metrics.AuthRequestsTotal.WithLabelValues("register", "success").Inc()
	return messageFromBody(body), nil
}

// Login exchanges credentials for a session token. The token and message are
// returned verbatim from the server payload.
func (c *AuthClient) Login(ctx context.Context, creds domain.Credentials) (token, message string, err error) {
	if err := requireCredentials(creds); err != nil {
		return "", "", err
	}

	resp, err := postJSON(ctx, c.client, c.baseURL+"/login", credentialsPayload{
		Identity: creds.Identity,
		Secret:   creds.Secret,
	})
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("login", "error").Inc()
		return "", "", apperrors.AuthError("login failed, please try again", err)
	}

	body := readBody(resp)
	if !is2xx(resp.StatusCode) {
		metrics.AuthRequestsTotal.WithLabelValues("login", "error").Inc()
		serverMsg := messageFromBody(body)
		if serverMsg == "" {
			serverMsg = "login failed, please try again"
		}
		return "", "", apperrors.AuthError(serverMsg, fmt.Errorf("server returned status %d", resp.StatusCode))
	}

	var payload struct {
		Token   string `json:"token"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("login", "error").Inc()
		return "", "", apperrors.AuthError("login failed, please try again", fmt.Errorf("failed to decode login response: %w", err))
	}

	metrics.AuthRequestsTotal.WithLabelValues("login", "success").Inc()
	return payload.Token, payload.Message, nil
}

// ExternalAuthURL resolves the provider-constructed authorization URL for the
// browser-redirect flow.
func (c *AuthClient) ExternalAuthURL(ctx context.Context, identity string) (string, error) {
	if strings.TrimSpace(identity) == "" {
		return "", apperrors.ValidationError("identity is required")
	}

	endpoint := c.baseURL + "/auth/external?identity=" + url.QueryEscape(identity)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", apperrors.AuthError("could not start external sign-in", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("external_auth", "error").Inc()
		return "", apperrors.AuthError("could not start external sign-in", err)
	}

	body := readBody(resp)
	if !is2xx(resp.StatusCode) {
		metrics.AuthRequestsTotal.WithLabelValues("external_auth", "error").Inc()
		message := messageFromBody(body)
		if message == "" {
			message = "could not start external sign-in"
		}
		return "", apperrors.AuthError(message, fmt.Errorf("server returned status %d", resp.StatusCode))
	}

	metrics.AuthRequestsTotal.WithLabelValues("external_auth", "success").Inc()

	// The endpoint answers either {"url": "..."} or the bare URL as text.
	var payload struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.URL != "" {
		return payload.URL, nil
	}
	return strings.TrimSpace(string(body)), nil
}

func requireCredentials(creds domain.Credentials) error {
	if strings.TrimSpace(creds.Identity) == "" {
		return apperrors.ValidationError("identity is required")
	}
	if strings.TrimSpace(creds.Secret) == "" {
		return apperrors.ValidationError("password is required")
	}
	return nil
}
