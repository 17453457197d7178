package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/sina-mobarez/BankSys/internal/core"
	"github.com/sina-mobarez/BankSys/internal/model"
	"github.com/sina-mobarez/BankSys/internal/service"
)

type UserController struct {
	userService core.UserService
	logger      *zap.Logger
}

func NewUserController(userService core.UserService, logger *zap.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

func (c *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Username    string `json:"username" validate:"required,max=64"`
		Password    string `json:"password"`
		PhoneNumber string `json:"phone_number"`
		Address     string `json:"address"`
		DateOfBirth string `json:"date_of_birth"`
	}

	if err := render.DecodeJSON(r.Body, &request); err != nil {
		writeBadRequest(w, c.logger, err)
		return
	}
	if err := validate.Struct(request); err != nil {
		writeBadRequest(w, c.logger, err)
		return
	}

	user, err := c.userService.Register(r.Context(), service.RegisterInput{
		Username:    request.Username,
		Password:    request.Password,
		PhoneNumber: request.PhoneNumber,
		Address:     request.Address,
		DateOfBirth: request.DateOfBirth,
	})
	if err != nil {
		writeError(w, c.logger, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newUserResponse(user))
}

func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	user, err := c.userService.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	render.JSON(w, r, newUserResponse(user))
}

// VerifyPassword answers 204 when the password matches and 401 otherwise.
func (c *UserController) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Password string `json:"password"`
	}

	if err := render.DecodeJSON(r.Body, &request); err != nil {
		writeBadRequest(w, c.logger, err)
		return
	}

	if _, err := c.userService.Authenticate(r.Context(), chi.URLParam(r, "username"), request.Password); err != nil {
		writeError(w, c.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *UserController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var request struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	if err := render.DecodeJSON(r.Body, &request); err != nil {
		writeBadRequest(w, c.logger, err)
		return
	}

	username := chi.URLParam(r, "username")
	if err := c.userService.ChangePassword(r.Context(), username, request.CurrentPassword, request.NewPassword); err != nil {
		writeError(w, c.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *UserController) UpdatePhone(w http.ResponseWriter, r *http.Request) {
	var request struct {
		PhoneNumber string `json:"phone_number"`
	}

	if err := render.DecodeJSON(r.Body, &request); err != nil {
		writeBadRequest(w, c.logger, err)
		return
	}

	user, err := c.userService.UpdatePhone(r.Context(), chi.URLParam(r, "username"), request.PhoneNumber)
	c.respondUser(w, r, user, err)
}

func (c *UserController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Address string `json:"address"`
	}

	if err := render.DecodeJSON(r.Body, &request); err != nil {
		writeBadRequest(w, c.logger, err)
		return
	}

	user, err := c.userService.UpdateAddress(r.Context(), chi.URLParam(r, "username"), request.Address)
	c.respondUser(w, r, user, err)
}

func (c *UserController) respondUser(w http.ResponseWriter, r *http.Request, user *model.User, err error) {
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	render.JSON(w, r, newUserResponse(user))
}
