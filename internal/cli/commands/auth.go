package commands

import (
	"DataSentinel/internal/cli/api"
	"DataSentinel/internal/config"
	"context"
	"errors"
	"fmt"
	"net/http"
)

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Login string `json:"login"`
		Role  string `json:"role"`
	} `json:"user"`
}

// authenticate выполняет register/login и сохраняет токен и логин.
func authenticate(ctx context.Context, cfg *config.Config, path, login, password string) (*authResponse, error) {
	var resp authResponse
	err := anonClient(cfg).PostJSON(ctx, path, credentialsRequest{Login: login, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, errors.New("server returned no token")
	}
	store := credentials(cfg)
	if err := store.Save(resp.Token); err != nil {
		return nil, fmt.Errorf("saving auth: %w", err)
	}
	if err := store.SaveLogin(login); err != nil {
		return nil, fmt.Errorf("saving login: %w", err)
	}
	return &resp, nil
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store auth token" }
func (loginCmd) Usage() string       { return "login <login> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	resp, err := authenticate(ctx, cfg, "/api/user/login", args[0], args[1])
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
			return errors.New("invalid login or password")
		}
		return err
	}
	fmt.Fprintf(Out, "Logged in as %s (%s)\n", resp.User.Login, resp.User.Role)
	return nil
}

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Create account and store auth token" }
func (registerCmd) Usage() string       { return "register <login> <password>" }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	resp, err := authenticate(ctx, cfg, "/api/user/register", args[0], args[1])
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) && se.Code == http.StatusConflict {
			return errors.New("login already in use")
		}
		return err
	}
	fmt.Fprintf(Out, "Registered %s, id %s\n", resp.User.Login, resp.User.ID)
	return nil
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Forget stored auth token" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	if err := credentials(cfg).Clear(); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged out")
	return nil
}

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Show current user" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	var me struct {
		ID    string `json:"id"`
		Login string `json:"login"`
		Role  string `json:"role"`
	}
	if err := c.GetJSON(ctx, "/api/user/me", nil, &me); err != nil {
		return explain(err)
	}
	fmt.Fprintf(Out, "Logged in as %s (%s), id %s\n", me.Login, me.Role, me.ID)
	return nil
}

func init() {
	RegisterCmd(loginCmd{})
	RegisterCmd(registerCmd{})
	RegisterCmd(logoutCmd{})
	RegisterCmd(statusCmd{})
}
