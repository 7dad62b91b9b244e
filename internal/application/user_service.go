package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/plantogether/internal/persistence"
)

const minPasswordLength = 8

// UserService orchestrates account registration and profile maintenance.
type UserService struct {
	users        persistence.UserRepository
	hashPassword func(password string) (string, error)
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewUserService constructs a user service with the provided dependencies.
func NewUserService(users persistence.UserRepository, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, idGenerator, now, nil)
}

// NewUserServiceWithLogger constructs a user service with a specified logger.
func NewUserServiceWithLogger(users persistence.UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users: users,
		hashPassword: func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		},
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// Register validates input and creates a new account.
func (s *UserService) Register(ctx context.Context, params RegisterParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	email := normalizeEmail(params.Input.Email)
	logger := s.loggerWith(ctx, "Register", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to register user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user registered")
	}()

	vErr := &ValidationError{}
	vErr.merge(validateNameFields(params.Input.Name, params.Input.Surname))
	if email == "" {
		vErr.add("email", "Adres e-mail jest wymagany.")
	} else if !isValidEmail(email) {
		vErr.add("email", "Nieprawidłowy adres e-mail.")
	}
	if utf8.RuneCountInString(params.Input.Password) < minPasswordLength {
		vErr.add("password", "Hasło musi mieć co najmniej 8 znaków.")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	hash, err = s.hashPassword(params.Input.Password)
	if err != nil {
		return
	}

	now := s.now()
	record := persistence.User{
		ID:           s.idGenerator(),
		Name:         strings.TrimSpace(params.Input.Name),
		Surname:      strings.TrimSpace(params.Input.Surname),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err = s.users.CreateUser(ctx, record); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			err = ErrAlreadyExists
		}
		return
	}

	user = userView(record)
	return
}

// GetMe returns the caller's own account.
func (s *UserService) GetMe(ctx context.Context, principal Principal) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}
	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	record, err := s.users.GetUser(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}
	user = userView(record)
	return
}

// UpdateProfile applies profile changes for the caller. Empty input fields
// keep the stored value. Changing the password requires the current one.
func (s *UserService) UpdateProfile(ctx context.Context, params UpdateProfileParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateProfile", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update profile", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "profile updated")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	var record persistence.User
	record, err = s.users.GetUser(ctx, params.Principal.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}

	vErr := &ValidationError{}
	if name := strings.TrimSpace(params.Input.Name); name != "" {
		record.Name = name
	}
	if surname := strings.TrimSpace(params.Input.Surname); surname != "" {
		record.Surname = surname
	}
	if email := normalizeEmail(params.Input.Email); email != "" {
		if !isValidEmail(email) {
			vErr.add("email", "Nieprawidłowy adres e-mail.")
		} else {
			record.Email = email
		}
	}

	if params.Input.NewPassword != "" {
		if utf8.RuneCountInString(params.Input.NewPassword) < minPasswordLength {
			vErr.add("password", "Hasło musi mieć co najmniej 8 znaków.")
		} else if err = VerifyPassword(record.PasswordHash, params.Input.CurrentPassword); err != nil {
			err = ErrInvalidCredentials
			return
		} else {
			var hash string
			hash, err = s.hashPassword(params.Input.NewPassword)
			if err != nil {
				return
			}
			record.PasswordHash = hash
		}
	}

	if vErr.HasErrors() {
		err = vErr
		return
	}

	record.UpdatedAt = s.now()
	if err = s.users.UpdateUser(ctx, record); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			err = ErrAlreadyExists
		}
		return
	}

	user = userView(record)
	return
}

func validateNameFields(name, surname string) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(name) == "" {
		vErr.add("name", "Imię jest wymagane.")
	}
	if strings.TrimSpace(surname) == "" {
		vErr.add("surname", "Nazwisko jest wymagane.")
	}
	return vErr
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func userView(record persistence.User) User {
	return User{
		ID:        record.ID,
		Name:      record.Name,
		Surname:   record.Surname,
		Email:     record.Email,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
