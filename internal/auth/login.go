package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Houeta/staff-directory/internal/lib/logger/sl"
	"github.com/Houeta/staff-directory/internal/lib/validate"
	"github.com/Houeta/staff-directory/internal/models"
	"github.com/Houeta/staff-directory/internal/remote"
)

var (
	ErrLogin        = errors.New("login failed")
	ErrSignup       = errors.New("signup failed")
	ErrInvalidInput = errors.New("invalid input")
)

// Credentials is the body of a login request.
type Credentials struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signup is the body of a signup request.
type Signup struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"     validate:"required"`
}

// LoginResult carries the user record the store returned.
type LoginResult struct {
	User       models.Record
	RedirectTo string
}

// InputError lists the fields rejected before the request was sent.
type InputError struct {
	FieldErrors map[string]string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %v", ErrInvalidInput, e.FieldErrors)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

type envelope struct {
	Success    *bool           `json:"success"`
	User       json.RawMessage `json:"user"`
	RedirectTo string          `json:"redirectTo"`
	Error      string          `json:"error"`
	Message    string          `json:"message"`
}

// Login posts creds to the store. The user is the "user" member of the response, or the
// whole response when that member is missing.
func Login(ctx context.Context, client remote.ClientIface, creds Credentials) (LoginResult, error) {
	if fields := validate.Struct(creds); fields != nil {
		return LoginResult{}, &InputError{FieldErrors: fields}
	}

	resp, err := client.Do(ctx, http.MethodPost, remote.LoginPath, creds)
	if err != nil {
		return LoginResult{}, err
	}
	if !resp.OK() {
		return LoginResult{}, fmt.Errorf("%w, %w: %s", ErrLogin, &statusError{code: resp.StatusCode}, resp.Summary())
	}

	var env envelope
	if err = json.Unmarshal(resp.Body, &env); err != nil {
		return LoginResult{}, fmt.Errorf("%w: failed to decode response: %w", ErrLogin, err)
	}
	if env.Error != "" {
		return LoginResult{}, fmt.Errorf("%w: %s", ErrLogin, env.Error)
	}
	if env.Success != nil && !*env.Success {
		return LoginResult{}, fmt.Errorf("%w: %s", ErrLogin, env.Message)
	}

	userDoc := []byte(env.User)
	if len(env.User) == 0 || string(env.User) == "null" {
		userDoc = resp.Body
	}
	user, err := models.DecodeRecord(userDoc)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %w", ErrLogin, err)
	}

	return LoginResult{User: user, RedirectTo: env.RedirectTo}, nil
}

// Register creates an account. It does not log in.
func Register(ctx context.Context, client remote.ClientIface, req Signup) error {
	if fields := validate.Struct(req); fields != nil {
		return &InputError{FieldErrors: fields}
	}

	resp, err := client.Do(ctx, http.MethodPost, remote.SignupPath, req)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("%w, status code: %d: %s", ErrSignup, resp.StatusCode, resp.Summary())
	}

	var env envelope
	if json.Unmarshal(resp.Body, &env) == nil && env.Error != "" {
		return fmt.Errorf("%w: %s", ErrSignup, env.Error)
	}

	return nil
}

// RetryLogin retries Login when the store could not be reached or answered with a 5xx.
// Rejected credentials are returned at once.
func RetryLogin(
	ctx context.Context,
	log *slog.Logger,
	client remote.ClientIface,
	creds Credentials,
	retries int,
	wait time.Duration,
) (LoginResult, error) {
	var (
		result LoginResult
		err    error
	)

	for index := range max(retries, 1) {
		result, err = Login(ctx, client, creds)
		if err == nil {
			log.InfoContext(ctx, "Successfully logged in")
			return result, nil
		}
		if !retryable(err) {
			return LoginResult{}, err
		}

		log.WarnContext(ctx, "Failed to login, retrying...", "attempt", index+1, "of", retries, sl.Err(err))

		select {
		case <-ctx.Done():
			return LoginResult{}, ctx.Err()
		case <-time.After(wait):
		}
	}

	log.ErrorContext(ctx, "failed to login after multiple retries", sl.Err(err))
	return LoginResult{}, fmt.Errorf("failed to login after multiple retries: %w", err)
}

func retryable(err error) bool {
	var status *statusError
	if errors.As(err, &status) {
		return status.code >= http.StatusInternalServerError
	}
	return !errors.Is(err, ErrLogin) && !errors.Is(err, ErrInvalidInput)
}

type statusError struct {
	code int
}

func (e *statusError) Error() string { return fmt.Sprintf("status code: %d", e.code) }
