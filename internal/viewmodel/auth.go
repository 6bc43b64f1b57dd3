package viewmodel

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/voltmarket/internal/domain"
	"github.com/tair/voltmarket/internal/session"
	"github.com/tair/voltmarket/internal/viewstate"
	"github.com/tair/voltmarket/pkg/logger"
)

const opAuth = "auth"

// LoginState is what the login screen renders
type LoginState struct {
	IsLoading       bool
	Error           string
	IsEmailValid    bool
	IsPasswordValid bool
}

// LoginController drives the login screen
type LoginController struct {
	api      AuthAPI
	sessions SessionWriter
	store    *viewstate.Store[LoginState]
	tasks    *viewstate.Tasks
}

// NewLoginController creates a login controller
func NewLoginController(api AuthAPI, sessions SessionWriter) *LoginController {
	return &LoginController{
		api:      api,
		sessions: sessions,
		store:    viewstate.NewStore(LoginState{IsEmailValid: true, IsPasswordValid: true}),
		tasks:    viewstate.NewTasks(),
	}
}

// State returns the current snapshot
func (c *LoginController) State() LoginState { return c.store.Get() }

// Subscribe streams snapshots until cancel is called
func (c *LoginController) Subscribe(buffer int) (<-chan LoginState, func()) {
	return c.store.Subscribe(buffer)
}

// Login validates the credentials, authenticates, persists the session and
// installs the new token, then calls onSuccess. Invalid input never reaches the network.
func (c *LoginController) Login(ctx context.Context, email, password string, onSuccess func()) error {
	var errs domain.ValidationErrors
	emailValid := isValidEmail(email)
	passwordValid := isValidPassword(password)
	if !emailValid {
		errs.Add("email", "Invalid email address")
	}
	if !passwordValid {
		errs.Add("password", fmt.Sprintf("Password must have at least %d characters", minPasswordLength))
	}

	c.store.Update(func(s LoginState) LoginState {
		s.IsEmailValid = emailValid
		s.IsPasswordValid = passwordValid
		return s
	})
	if err := errs.Err(); err != nil {
		return err
	}

	ctx, span := tracer.Start(ctx, "LoginController.Login")
	defer span.End()

	return authenticate(ctx, c.tasks, c.store, c.sessions, func(ctx context.Context) (*domain.AuthResponse, error) {
		return c.api.Login(ctx, domain.LoginRequest{Email: email, Password: password})
	}, "Invalid credentials or connection error", onSuccess)
}

// ClearError dismisses the error message
func (c *LoginController) ClearError() {
	c.store.Update(func(s LoginState) LoginState {
		s.Error = ""
		return s
	})
}

// Close drops any result still in flight
func (c *LoginController) Close() { c.tasks.Close() }

// RegisterForm is the registration form as typed by the user
type RegisterForm struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

// RegisterState is what the registration screen renders
type RegisterState struct {
	IsLoading        bool
	Error            string
	IsEmailValid     bool
	IsPasswordValid  bool
	IsFirstNameValid bool
	IsLastNameValid  bool
	PasswordsMatch   bool
}

// RegisterController drives the registration screen
type RegisterController struct {
	api      AuthAPI
	sessions SessionWriter
	store    *viewstate.Store[RegisterState]
	tasks    *viewstate.Tasks
}

// NewRegisterController creates a registration controller
func NewRegisterController(api AuthAPI, sessions SessionWriter) *RegisterController {
	return &RegisterController{
		api:      api,
		sessions: sessions,
		store: viewstate.NewStore(RegisterState{
			IsEmailValid:     true,
			IsPasswordValid:  true,
			IsFirstNameValid: true,
			IsLastNameValid:  true,
			PasswordsMatch:   true,
		}),
		tasks: viewstate.NewTasks(),
	}
}

// State returns the current snapshot
func (c *RegisterController) State() RegisterState { return c.store.Get() }

// Subscribe streams snapshots until cancel is called
func (c *RegisterController) Subscribe(buffer int) (<-chan RegisterState, func()) {
	return c.store.Subscribe(buffer)
}

// Register validates the form, creates the account and signs the user in
func (c *RegisterController) Register(ctx context.Context, form RegisterForm, onSuccess func()) error {
	var errs domain.ValidationErrors
	valid := RegisterState{
		IsEmailValid:     isValidEmail(form.Email),
		IsPasswordValid:  isValidPassword(form.Password),
		IsFirstNameValid: strings.TrimSpace(form.FirstName) != "",
		IsLastNameValid:  strings.TrimSpace(form.LastName) != "",
		PasswordsMatch:   form.Password == form.ConfirmPassword,
	}
	if !valid.IsEmailValid {
		errs.Add("email", "Invalid email address")
	}
	if !valid.IsPasswordValid {
		errs.Add("password", fmt.Sprintf("Password must have at least %d characters", minPasswordLength))
	}
	if !valid.IsFirstNameValid {
		errs.Add("firstName", "First name is required")
	}
	if !valid.IsLastNameValid {
		errs.Add("lastName", "Last name is required")
	}
	if !valid.PasswordsMatch {
		errs.Add("confirmPassword", "Passwords do not match")
	}

	c.store.Update(func(s RegisterState) RegisterState {
		s.IsEmailValid = valid.IsEmailValid
		s.IsPasswordValid = valid.IsPasswordValid
		s.IsFirstNameValid = valid.IsFirstNameValid
		s.IsLastNameValid = valid.IsLastNameValid
		s.PasswordsMatch = valid.PasswordsMatch
		return s
	})
	if err := errs.Err(); err != nil {
		return err
	}

	ctx, span := tracer.Start(ctx, "RegisterController.Register")
	defer span.End()

	req := domain.RegisterRequest{
		Email:     form.Email,
		Password:  form.Password,
		FirstName: strings.TrimSpace(form.FirstName),
		LastName:  strings.TrimSpace(form.LastName),
	}
	return authenticate(ctx, c.tasks, c.store, c.sessions, func(ctx context.Context) (*domain.AuthResponse, error) {
		return c.api.Register(ctx, req)
	}, "Registration failed", onSuccess)
}

// ClearError dismisses the error message
func (c *RegisterController) ClearError() {
	c.store.Update(func(s RegisterState) RegisterState {
		s.Error = ""
		return s
	})
}

// Close drops any result still in flight
func (c *RegisterController) Close() { c.tasks.Close() }

// authState is implemented by the login and register snapshots
type authState interface {
	LoginState | RegisterState
}

func setLoading[S authState](s S, loading bool, msg string) S {
	switch v := any(s).(type) {
	case LoginState:
		v.IsLoading = loading
		v.Error = msg
		return any(v).(S)
	case RegisterState:
		v.IsLoading = loading
		v.Error = msg
		return any(v).(S)
	}
	return s
}

// authenticate runs the shared tail of login and register. The order is fixed:
// the session is persisted and installed as the credential, loading stops, and
// only then onSuccess runs.
func authenticate[S authState](
	ctx context.Context,
	tasks *viewstate.Tasks,
	store *viewstate.Store[S],
	sessions SessionWriter,
	call func(context.Context) (*domain.AuthResponse, error),
	fallback string,
	onSuccess func(),
) error {
	ctx, ticket := tasks.Begin(ctx, opAuth)
	defer ticket.Done()

	store.UpdateIf(ticket.Current, func(s S) S { return setLoading(s, true, "") })

	resp, err := call(ctx)
	if err != nil {
		if !ticket.Current() {
			return nil
		}
		logger.Warn(ctx).Err(err).Msg("Authentication failed")
		store.UpdateIf(ticket.Current, func(s S) S { return setLoading(s, false, errorMessage(err, fallback)) })
		return err
	}

	if err := sessions.Save(ctx, session.FromAuth(resp)); err != nil {
		logger.Error(ctx).Err(err).Int64("user_id", resp.UserID).Msg("Failed to persist session")
		store.UpdateIf(ticket.Current, func(s S) S { return setLoading(s, false, "Could not save your session") })
		return err
	}

	logger.Info(ctx).Int64("user_id", resp.UserID).Msg("User authenticated")

	if store.UpdateIf(ticket.Current, func(s S) S { return setLoading(s, false, "") }) && onSuccess != nil {
		onSuccess()
	}
	return nil
}
