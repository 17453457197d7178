package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sina-mobarez/BankSys/internal/model"
	"github.com/sina-mobarez/BankSys/internal/repository"
	"github.com/sina-mobarez/BankSys/internal/util/password"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmptyUsername      = errors.New("username cannot be empty")
)

type RegisterInput struct {
	Username    string
	Password    string
	PhoneNumber string
	Address     string
	DateOfBirth string
}

type UserService struct {
	repo   repository.UserRepository
	hasher password.Hasher
	logger *zap.Logger
	now    func() time.Time
}

// NewUserService returns a UserService hashing new passwords with hasher.
// The repository should restore users with the same hasher.
func NewUserService(repo repository.UserRepository, hasher password.Hasher, logger *zap.Logger) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		logger: logger,
		now:    time.Now,
	}
}

// Register validates and stores a new user.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if strings.TrimSpace(in.Username) == "" {
		return nil, ErrEmptyUsername
	}

	user, err := model.NewUser(in.Username, in.Password, in.PhoneNumber, in.Address, in.DateOfBirth,
		model.WithHasher(s.hasher),
		model.WithClock(s.now))
	if err != nil {
		s.logger.Warn("Registration rejected",
			zap.String("username", in.Username),
			zap.Error(err))
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		s.logger.Warn("Registration failed",
			zap.String("username", in.Username),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("username", user.Username()),
		zap.String("hash_scheme", s.hasher.Scheme()))
	return user, nil
}

func (s *UserService) Get(ctx context.Context, username string) (*model.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// Authenticate checks a username/password pair. It issues no session.
func (s *UserService) Authenticate(ctx context.Context, username, plainPassword string) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(plainPassword) {
		s.logger.Debug("Password mismatch", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one. The
// check and the write happen under the same user lock.
func (s *UserService) ChangePassword(ctx context.Context, username, current, next string) error {
	err := s.repo.WithinTx(ctx, func(tx repository.UserRepository) error {
		user, err := tx.GetByUsername(ctx, username)
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidCredentials
		}
		if err != nil {
			return err
		}
		if !user.CheckPassword(current) {
			return ErrInvalidCredentials
		}
		if err := user.SetPassword(next); err != nil {
			return err
		}
		return tx.Update(ctx, user)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, password.ErrTooLong) {
			s.logger.Debug("Password change rejected", zap.String("username", username), zap.Error(err))
		} else {
			s.logger.Error("Failed to change password", zap.String("username", username), zap.Error(err))
		}
		return err
	}
	s.logger.Info("Password changed", zap.String("username", username))
	return nil
}

// UpdatePhone and UpdateAddress change one profile field under the user lock.
func (s *UserService) UpdatePhone(ctx context.Context, username, phone string) (*model.User, error) {
	return s.update(ctx, username, "phone_number", func(u *model.User) error {
		return u.SetPhoneNumber(phone)
	})
}

func (s *UserService) UpdateAddress(ctx context.Context, username, address string) (*model.User, error) {
	return s.update(ctx, username, "address", func(u *model.User) error {
		return u.SetAddress(address)
	})
}

func (s *UserService) update(ctx context.Context, username, field string, fn func(*model.User) error) (*model.User, error) {
	var updated *model.User
	err := s.repo.WithinTx(ctx, func(tx repository.UserRepository) error {
		user, err := tx.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if err := fn(user); err != nil {
			return err
		}
		if err := tx.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		fields := []zap.Field{
			zap.String("username", username),
			zap.String("field", field),
			zap.Error(err),
		}
		if errors.Is(err, model.ErrUser) || errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("User update rejected", fields...)
		} else {
			s.logger.Error("Failed to update user", fields...)
		}
		return nil, err
	}
	s.logger.Info("User updated", zap.String("username", username), zap.String("field", field))
	return updated, nil
}
