// Package account signs the shopper in and out of the storefront backend.
package account

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/session"
	"github.com/angelmondragon/storefront/pkg/types"
)

const (
	MsgLoggedIn            = "Logged in successfully"
	MsgRegistered          = "Registered successfully"
	msgUsernameRequired    = "Username is a required field"
	msgPasswordRequired    = "Password is a required field"
	msgUsernameTooShort    = "Username must be at least 6 characters"
	msgPasswordTooShort    = "Password must be at least 6 characters"
	msgPasswordsDoNotMatch = "Passwords do not match"

	minCredentialLength = 6
)

// Service defines the account flows used by the storefront.
type Service interface {
	Login(ctx context.Context, username, password string) (session.Session, error)
	Register(ctx context.Context, username, password, confirm string) error
	Logout(ctx context.Context) error
}

type backend interface {
	Login(ctx context.Context, username, password string) (types.LoginResponse, error)
	Register(ctx context.Context, username, password string) (types.RegisterResponse, error)
}

type ServiceParams struct {
	Backend backend
	Holder  *session.Holder
	Logger  *logger.Logger
}

type service struct {
	backend backend
	holder  *session.Holder
	logg    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend client is required")
	}
	if params.Holder == nil {
		return nil, fmt.Errorf("session holder is required")
	}
	return &service{backend: params.Backend, holder: params.Holder, logg: params.Logger}, nil
}

// Login authenticates and stores the token, username and balance. The
// previous address selection is dropped.
func (s *service) Login(ctx context.Context, username, password string) (session.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return session.Session{}, pkgerrors.New(pkgerrors.CodeValidation, msgUsernameRequired)
	}
	if password == "" {
		return session.Session{}, pkgerrors.New(pkgerrors.CodeValidation, msgPasswordRequired)
	}

	resp, err := s.backend.Login(ctx, username, password)
	if err != nil {
		return session.Session{}, err
	}
	if !resp.Success {
		return session.Session{}, pkgerrors.New(pkgerrors.CodeRejected, "login was not accepted")
	}

	next := session.Session{Token: resp.Token, Username: resp.Username, Balance: resp.Balance}
	if err := s.holder.Replace(ctx, next); err != nil {
		return session.Session{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not save session")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithUsername(ctx, resp.Username), "logged in")
	}
	return next, nil
}

// Register creates an account. It does not sign in.
func (s *service) Register(ctx context.Context, username, password, confirm string) error {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return pkgerrors.New(pkgerrors.CodeValidation, msgUsernameRequired)
	case len(username) < minCredentialLength:
		return pkgerrors.New(pkgerrors.CodeValidation, msgUsernameTooShort)
	case password == "":
		return pkgerrors.New(pkgerrors.CodeValidation, msgPasswordRequired)
	case len(password) < minCredentialLength:
		return pkgerrors.New(pkgerrors.CodeValidation, msgPasswordTooShort)
	case password != confirm:
		return pkgerrors.New(pkgerrors.CodeValidation, msgPasswordsDoNotMatch)
	}

	resp, err := s.backend.Register(ctx, username, password)
	if err != nil {
		return err
	}
	if !resp.Success {
		return pkgerrors.New(pkgerrors.CodeRejected, "registration was not accepted")
	}
	return nil
}

func (s *service) Logout(ctx context.Context) error {
	return s.holder.Clear(ctx)
}
