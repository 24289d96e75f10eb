package repo

// CredentialStore хранит на клиенте токен авторизации и логин последнего входа.
type CredentialStore interface {
	Save(token string) error
	Load() (string, error)
	SaveLogin(login string) error
	LoadLogin() (string, error)
	Clear() error
}
