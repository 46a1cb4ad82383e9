package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// getSecret is an indirection over GetSecret for tests.
var getSecret = GetSecret

var errNoToken = errors.New("access token is required")

// Authenticate installs the configured access token, or prompts for one
// when none was configured.
func (a *App) Authenticate(ctx context.Context) error {
	token, err := a.config.Token()
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		return err
	}
	if token != "" {
		a.client.SetAccessToken(token)
		return nil
	}
	return a.Token(ctx, nil)
}

// Token prompts for a new access token and replaces the current one.
func (a *App) Token(ctx context.Context, _ []string) error {
	secret, err := getSecret(a.reader, "Enter access token: ", a.out)
	if err != nil {
		return err
	}
	defer wipe(secret)

	token := strings.TrimSpace(string(secret))
	if token == "" {
		fmt.Fprintln(a.out, errNoToken.Error())
		return errNoToken
	}

	a.client.SetAccessToken(token)
	return nil
}
