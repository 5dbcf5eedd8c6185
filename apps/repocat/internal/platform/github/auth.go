// Package github builds go-github clients for repocat. Anonymous, token and
// GitHub App installation auth are supported; any of them can be pointed at
// GitHub Enterprise or a mock server through baseURL.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gogithub "github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

// Auth selects how the client authenticates. The zero value is anonymous.
type Auth struct {
	Token          string
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
}

// IsApp reports whether GitHub App credentials are complete.
func (a Auth) IsApp() bool {
	return a.AppID != 0 && a.InstallationID != 0 && a.PrivateKeyPath != ""
}

// NewClient picks app auth when its credentials are complete, token auth when
// a token is set, and anonymous access otherwise.
func NewClient(auth Auth, baseURL string) (*gogithub.Client, error) {
	if auth.IsApp() {
		return NewAppClient(auth.AppID, auth.InstallationID, auth.PrivateKeyPath, baseURL)
	}
	return NewTokenClient(auth.Token, baseURL)
}

// NewTokenClient creates a client authenticated with a personal access token.
// An empty token yields an anonymous client, which is rate limited to 60
// requests per hour on public GitHub.
func NewTokenClient(token, baseURL string) (*gogithub.Client, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	c := gogithub.NewClient(httpClient)
	if err := applyBaseURL(c, baseURL); err != nil {
		return nil, err
	}
	return c, nil
}

// NewAppClient creates a client authenticated as a GitHub App installation.
// privateKeyPath is the path to the app's PEM private key.
func NewAppClient(appID, installationID int64, privateKeyPath, baseURL string) (*gogithub.Client, error) {
	base := strings.TrimSuffix(baseURL, "/")
	if base == "" {
		base = DefaultAPIURL
	}

	tr, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, appID, installationID, privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("github app auth: %w", err)
	}
	tr.BaseURL = base

	c := gogithub.NewClient(&http.Client{Transport: tr})
	if err := applyBaseURL(c, baseURL); err != nil {
		return nil, err
	}
	return c, nil
}

func applyBaseURL(c *gogithub.Client, baseURL string) error {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if baseURL == "" || baseURL == DefaultAPIURL {
		return nil
	}
	u, err := url.Parse(baseURL + "/")
	if err != nil {
		return fmt.Errorf("parse github api url %q: %w", baseURL, err)
	}
	c.BaseURL = u
	return nil
}
