package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultFederationURL = "https://signin.aws.amazon.com/federation"
	defaultConsoleURL    = "https://console.aws.amazon.com/"
)

type federationHTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// FederationClient exchanges assumed-role credentials for a console sign-in
// URL via the AWS federation endpoint. The sign-in session inherits the
// credentials' lifetime, so no SessionDuration is requested: federation
// rejects an explicit duration for role-session credentials.
type FederationClient struct {
	client        federationHTTPClient
	federationURL string
	consoleURL    string
}

// NewFederationClient creates a federation client with sane defaults.
func NewFederationClient() *FederationClient {
	return newFederationClient(
		&http.Client{Timeout: 15 * time.Second},
		defaultFederationURL,
		defaultConsoleURL,
	)
}

func newFederationClient(client federationHTTPClient, federationURL string, consoleURL string) *FederationClient {
	return &FederationClient{
		client:        client,
		federationURL: federationURL,
		consoleURL:    consoleURL,
	}
}

func (f *FederationClient) BuildConsoleURL(ctx context.Context, creds Credentials) (string, error) {
	if creds.SessionToken == "" {
		return "", fmt.Errorf("federation requires temporary credentials with a session token")
	}

	sessionJSON, err := json.Marshal(map[string]string{
		"sessionId":    creds.AccessKeyID,
		"sessionKey":   creds.SecretAccessKey,
		"sessionToken": creds.SessionToken,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	tokenQuery := url.Values{}
	tokenQuery.Set("Action", "getSigninToken")
	tokenQuery.Set("Session", string(sessionJSON))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.federationURL+"?"+tokenQuery.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build federation request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request signin token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read federation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("federation endpoint returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		SigninToken string `json:"SigninToken"`
	}

	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to parse signin token response: %w", err)
	}

	if tokenResp.SigninToken == "" {
		return "", fmt.Errorf("received empty signin token from federation endpoint")
	}

	loginQuery := url.Values{}
	loginQuery.Set("Action", "login")
	loginQuery.Set("Issuer", "aws-assume")
	loginQuery.Set("Destination", f.consoleURL)
	loginQuery.Set("SigninToken", tokenResp.SigninToken)

	return f.federationURL + "?" + loginQuery.Encode(), nil
}
