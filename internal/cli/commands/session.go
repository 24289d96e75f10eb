package commands

import (
	"DataSentinel/internal/cli/api"
	"DataSentinel/internal/cli/repo"
	"DataSentinel/internal/cli/repo/fs"
	"DataSentinel/internal/config"
	"errors"
	"net/http"
)

// ErrNotLoggedIn: токен не найден, нужен login или register.
var ErrNotLoggedIn = errors.New("not logged in: run `dsctl login <login> <password>` first")

func credentials(cfg *config.Config) repo.CredentialStore {
	return fs.AuthFSStore{TokenPath: cfg.TokenFile}
}

// anonClient: клиент без токена (register/login).
func anonClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.ServerURL, "")
}

// authClient: клиент с сохранённым токеном.
func authClient(cfg *config.Config) (*api.Client, error) {
	token, err := credentials(cfg).Load()
	if err != nil {
		return nil, ErrNotLoggedIn
	}
	return api.NewClient(cfg.ServerURL, token), nil
}

// explain переводит типовые ответы сервера в понятные ошибки.
func explain(err error) error {
	var se *api.StatusError
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code {
	case http.StatusUnauthorized:
		return errors.New("unauthorized: token is missing or expired, login again")
	case http.StatusForbidden:
		if se.Message != "" {
			return errors.New("forbidden: " + se.Message)
		}
		return errors.New("forbidden")
	}
	return err
}
