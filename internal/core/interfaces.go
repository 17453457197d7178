package core

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sina-mobarez/BankSys/internal/model"
	"github.com/sina-mobarez/BankSys/internal/service"
)

type (
	AccountService interface {
		Open(ctx context.Context, number string, initialBalance decimal.Decimal) (*model.Account, error)
		Get(ctx context.Context, number string) (*model.Account, error)
		Deposit(ctx context.Context, number string, amount decimal.Decimal) (*model.Account, error)
		Withdraw(ctx context.Context, number string, amount decimal.Decimal) (*model.Account, error)
		Transfer(ctx context.Context, from, to string, amount decimal.Decimal) (*model.Account, *model.Account, error)
	}

	UserService interface {
		Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
		Get(ctx context.Context, username string) (*model.User, error)
		Authenticate(ctx context.Context, username, password string) (*model.User, error)
		ChangePassword(ctx context.Context, username, current, next string) error
		UpdatePhone(ctx context.Context, username, phone string) (*model.User, error)
		UpdateAddress(ctx context.Context, username, address string) (*model.User, error)
	}
)

var (
	_ AccountService = (*service.AccountService)(nil)
	_ UserService    = (*service.UserService)(nil)
)
