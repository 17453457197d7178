package controller

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sina-mobarez/BankSys/internal/model"
	"github.com/sina-mobarez/BankSys/internal/repository"
	"github.com/sina-mobarez/BankSys/internal/service"
	"github.com/sina-mobarez/BankSys/internal/util/password"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type accountResponse struct {
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedDate   string          `json:"created_date"`
}

func newAccountResponse(a *model.Account) accountResponse {
	return accountResponse{
		AccountNumber: a.AccountNumber(),
		Balance:       a.Balance(),
		CreatedDate:   a.CreatedDate().Format(model.DateLayout),
	}
}

type userResponse struct {
	Username    string `json:"username"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	DateOfBirth string `json:"date_of_birth"`
}

func newUserResponse(u *model.User) userResponse {
	return userResponse{
		Username:    u.Username(),
		PhoneNumber: u.PhoneNumber(),
		Address:     u.Address(),
		DateOfBirth: u.DateOfBirth().Format(model.DateLayout),
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrAccountNotFound), errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrAccountExists),
		errors.Is(err, repository.ErrUserExists),
		errors.Is(err, model.ErrInsufficientFunds):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrAccount),
		errors.Is(err, model.ErrUser),
		errors.Is(err, service.ErrSameAccount),
		errors.Is(err, service.ErrEmptyUsername),
		errors.Is(err, service.ErrInvalidCheckDigit),
		errors.Is(err, repository.ErrAmountOutOfRange),
		errors.Is(err, password.ErrTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status err maps to. Internal errors are
// logged and their message is not sent to the client.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err))
		http.Error(w, "Internal server error", code)
		return
	}
	http.Error(w, err.Error(), code)
}

func writeBadRequest(w http.ResponseWriter, logger *zap.Logger, err error) {
	logger.Debug("Invalid request format", zap.Error(err))
	http.Error(w, "Invalid request format", http.StatusBadRequest)
}
