package fs

import (
	"DataSentinel/internal/cli/repo"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// AuthFSStore: файловое хранилище токена и логина для CLI.
// Токен лежит в TokenPath, логин рядом, в файле с суффиксом ".login".
type AuthFSStore struct {
	TokenPath string
}

var _ repo.CredentialStore = AuthFSStore{}

func (s AuthFSStore) loginPath() string { return s.TokenPath + ".login" }

func writeSecret(path, value string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(value), 0o600)
}

// readTrimmed читает файл и обрезает завершающие переводы строки/пробелы.
func readTrimmed(path, what string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	v := strings.TrimRight(string(b), " \t\r\n")
	if v == "" {
		return "", errors.New("empty " + what + " file")
	}
	return v, nil
}

// Save сохраняет auth‑токен в файл.
func (s AuthFSStore) Save(token string) error {
	if s.TokenPath == "" {
		return errors.New("token path is not configured")
	}
	return writeSecret(s.TokenPath, token)
}

// Load читает auth‑токен из файла.
func (s AuthFSStore) Load() (string, error) {
	return readTrimmed(s.TokenPath, "token")
}

// SaveLogin сохраняет логин пользователя в файл.
func (s AuthFSStore) SaveLogin(login string) error {
	if login == "" {
		return errors.New("empty login")
	}
	return writeSecret(s.loginPath(), login)
}

// LoadLogin читает логин пользователя из файла.
func (s AuthFSStore) LoadLogin() (string, error) {
	return readTrimmed(s.loginPath(), "login")
}

// Clear удаляет токен и логин; отсутствие файлов не ошибка.
func (s AuthFSStore) Clear() error {
	for _, p := range []string{s.TokenPath, s.loginPath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}
