package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sina-mobarez/BankSys/internal/core"
	"github.com/sina-mobarez/BankSys/internal/model"
	"github.com/sina-mobarez/BankSys/internal/repository"
)

type AccountController struct {
	accountService core.AccountService
	logger         *zap.Logger
}

func NewAccountController(accountService core.AccountService, logger *zap.Logger) *AccountController {
	return &AccountController{
		accountService: accountService,
		logger:         logger,
	}
}

func (c *AccountController) Open(w http.ResponseWriter, r *http.Request) {
	var request struct {
		AccountNumber  string          `json:"account_number" validate:"omitempty,max=64,printascii"`
		InitialBalance decimal.Decimal `json:"initial_balance"`
	}

	if err := render.DecodeJSON(r.Body, &request); err != nil {
		writeBadRequest(w, c.logger, err)
		return
	}
	if err := validate.Struct(request); err != nil {
		writeBadRequest(w, c.logger, err)
		return
	}
	if err := repository.CheckAmount(request.InitialBalance); err != nil {
		writeError(w, c.logger, err)
		return
	}

	account, err := c.accountService.Open(r.Context(), request.AccountNumber, request.InitialBalance)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newAccountResponse(account))
}

func (c *AccountController) Get(w http.ResponseWriter, r *http.Request) {
	account, err := c.accountService.Get(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	render.JSON(w, r, newAccountResponse(account))
}

func (c *AccountController) Deposit(w http.ResponseWriter, r *http.Request) {
	c.applyAmount(w, r, c.accountService.Deposit)
}

func (c *AccountController) Withdraw(w http.ResponseWriter, r *http.Request) {
	c.applyAmount(w, r, c.accountService.Withdraw)
}

type amountOp func(ctx context.Context, number string, amount decimal.Decimal) (*model.Account, error)

func (c *AccountController) applyAmount(w http.ResponseWriter, r *http.Request, op amountOp) {
	var request struct {
		Amount decimal.Decimal `json:"amount"`
	}

	if err := render.DecodeJSON(r.Body, &request); err != nil {
		writeBadRequest(w, c.logger, err)
		return
	}
	if err := repository.CheckAmount(request.Amount); err != nil {
		writeError(w, c.logger, err)
		return
	}

	account, err := op(r.Context(), chi.URLParam(r, "number"), request.Amount)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	render.JSON(w, r, newAccountResponse(account))
}

func (c *AccountController) Transfer(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Target string          `json:"target" validate:"required"`
		Amount decimal.Decimal `json:"amount"`
	}

	if err := render.DecodeJSON(r.Body, &request); err != nil {
		writeBadRequest(w, c.logger, err)
		return
	}
	if err := validate.Struct(request); err != nil {
		writeBadRequest(w, c.logger, err)
		return
	}
	if err := repository.CheckAmount(request.Amount); err != nil {
		writeError(w, c.logger, err)
		return
	}

	source, target, err := c.accountService.Transfer(r.Context(), chi.URLParam(r, "number"), request.Target, request.Amount)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}

	render.JSON(w, r, struct {
		Source accountResponse `json:"source"`
		Target accountResponse `json:"target"`
	}{
		Source: newAccountResponse(source),
		Target: newAccountResponse(target),
	})
}
