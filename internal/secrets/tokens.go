package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the app’s secrets in the OS keychain.
	KeyringService = "signalsource"

	TwitterAccount = "twitter_bearer_token"
	GithubAccount  = "github_token"

	twitterEnv = "TWITTER_BEARER_TOKEN"
	githubEnv  = "GITHUB_TOKEN"
)

var ErrTokenNotFound = errors.New("provider token not found (set it via env or keychain)")

// TwitterBearerToken resolves the social-search credential: env first so CI
// and dev overrides win, then the OS keychain.
func TwitterBearerToken() (string, error) {
	return token(twitterEnv, TwitterAccount)
}

func GithubToken() (string, error) {
	return token(githubEnv, GithubAccount)
}

func token(envKey, keyringAccount string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v, nil
	}
	v, err := keyring.Get(KeyringService, keyringAccount)
	if err == nil && strings.TrimSpace(v) != "" {
		return v, nil
	}
	return "", ErrTokenNotFound
}

func SetToken(keyringAccount, value string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, value)
}

func DeleteToken(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}
