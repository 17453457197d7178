package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"github.com/sina-mobarez/BankSys/internal/model"
	"github.com/sina-mobarez/BankSys/internal/repository"
	"github.com/sina-mobarez/BankSys/internal/service"
	"github.com/sina-mobarez/BankSys/internal/util/password"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	logger := zaptest.NewLogger(t)

	accounts := NewAccountController(
		service.NewAccountService(repository.NewMemoryAccountRepository(), logger), logger)
	users := NewUserController(
		service.NewUserService(repository.NewMemoryUserRepository(), password.SHA256{}, logger), logger)

	r := chi.NewRouter()
	r.Post("/api/accounts", accounts.Open)
	r.Get("/api/accounts/{number}", accounts.Get)
	r.Post("/api/accounts/{number}/deposit", accounts.Deposit)
	r.Post("/api/accounts/{number}/withdraw", accounts.Withdraw)
	r.Post("/api/accounts/{number}/transfer", accounts.Transfer)
	r.Post("/api/users", users.Register)
	r.Get("/api/users/{username}", users.Get)
	r.Post("/api/users/{username}/verify", users.VerifyPassword)
	r.Put("/api/users/{username}/password", users.ChangePassword)
	r.Put("/api/users/{username}/phone", users.UpdatePhone)
	r.Put("/api/users/{username}/address", users.UpdateAddress)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeAccount(t *testing.T, rec *httptest.ResponseRecorder) accountResponse {
	t.Helper()
	var got accountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode account: %v (body %q)", err, rec.Body.String())
	}
	return got
}

func TestAccountLifecycle(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/accounts", `{"account_number":"A1","initial_balance":"100.00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open: status=%d body=%s", rec.Code, rec.Body)
	}
	if got := decodeAccount(t, rec); got.AccountNumber != "A1" || !got.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("open: got %+v", got)
	}

	rec = do(t, r, http.MethodPost, "/api/accounts/A1/deposit", `{"amount":"50"}`)
	if rec.Code != http.StatusOK || !decodeAccount(t, rec).Balance.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("deposit: status=%d body=%s", rec.Code, rec.Body)
	}

	rec = do(t, r, http.MethodPost, "/api/accounts/A1/withdraw", `{"amount":"30"}`)
	if rec.Code != http.StatusOK || !decodeAccount(t, rec).Balance.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("withdraw: status=%d body=%s", rec.Code, rec.Body)
	}

	rec = do(t, r, http.MethodGet, "/api/accounts/A1", "")
	if rec.Code != http.StatusOK || !decodeAccount(t, rec).Balance.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("get: status=%d body=%s", rec.Code, rec.Body)
	}
}

func TestOpenGeneratedNumber(t *testing.T) {
	r := newTestRouter(t)
	rec := do(t, r, http.MethodPost, "/api/accounts", `{"initial_balance":"0"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	if got := decodeAccount(t, rec); len(got.AccountNumber) != 16 {
		t.Fatalf("generated number %q", got.AccountNumber)
	}
}

func TestAccountErrors(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/accounts", `{"account_number":"A1","initial_balance":"10"}`)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		code   int
	}{
		{"negative opening balance", http.MethodPost, "/api/accounts", `{"account_number":"A2","initial_balance":"-1"}`, http.StatusBadRequest},
		{"duplicate number", http.MethodPost, "/api/accounts", `{"account_number":"A1","initial_balance":"0"}`, http.StatusConflict},
		{"malformed json", http.MethodPost, "/api/accounts", `{"initial_balance":`, http.StatusBadRequest},
		{"unknown account", http.MethodGet, "/api/accounts/nope", "", http.StatusNotFound},
		{"zero deposit", http.MethodPost, "/api/accounts/A1/deposit", `{"amount":"0"}`, http.StatusBadRequest},
		{"negative withdrawal", http.MethodPost, "/api/accounts/A1/withdraw", `{"amount":"-5"}`, http.StatusBadRequest},
		{"overdraw", http.MethodPost, "/api/accounts/A1/withdraw", `{"amount":"10.01"}`, http.StatusConflict},
		{"deposit unknown", http.MethodPost, "/api/accounts/nope/deposit", `{"amount":"1"}`, http.StatusNotFound},
		{"transfer without target", http.MethodPost, "/api/accounts/A1/transfer", `{"amount":"1"}`, http.StatusBadRequest},
		{"transfer to self", http.MethodPost, "/api/accounts/A1/transfer", `{"target":"A1","amount":"1"}`, http.StatusBadRequest},
		{"transfer to unknown", http.MethodPost, "/api/accounts/A1/transfer", `{"target":"nope","amount":"1"}`, http.StatusNotFound},
		{"huge exponent deposit", http.MethodPost, "/api/accounts/A1/deposit", `{"amount":"1e5000000"}`, http.StatusBadRequest},
		{"tiny exponent withdrawal", http.MethodPost, "/api/accounts/A1/withdraw", `{"amount":"1e-5000000"}`, http.StatusBadRequest},
		{"too many decimals", http.MethodPost, "/api/accounts/A1/deposit", `{"amount":"0.00001"}`, http.StatusBadRequest},
		{"huge transfer", http.MethodPost, "/api/accounts/A1/transfer", `{"target":"B1","amount":"1e5000000"}`, http.StatusBadRequest},
		{"huge opening balance", http.MethodPost, "/api/accounts", `{"account_number":"A3","initial_balance":"1e5000000"}`, http.StatusBadRequest},
		{"bad check digit", http.MethodPost, "/api/accounts", `{"account_number":"4539578763621487","initial_balance":"0"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, tt.method, tt.path, tt.body)
			if rec.Code != tt.code {
				t.Fatalf("status=%d want=%d body=%s", rec.Code, tt.code, rec.Body)
			}
		})
	}

	rec := do(t, r, http.MethodGet, "/api/accounts/A1", "")
	if !decodeAccount(t, rec).Balance.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("failed requests changed the balance: %s", rec.Body)
	}
}

func TestTransfer(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/accounts", `{"account_number":"A1","initial_balance":"100"}`)
	do(t, r, http.MethodPost, "/api/accounts", `{"account_number":"B1","initial_balance":"5"}`)

	rec := do(t, r, http.MethodPost, "/api/accounts/A1/transfer", `{"target":"B1","amount":"40"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	var got struct {
		Source accountResponse `json:"source"`
		Target accountResponse `json:"target"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if !got.Source.Balance.Equal(decimal.NewFromInt(60)) || !got.Target.Balance.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("got source=%s target=%s", got.Source.Balance, got.Target.Balance)
	}

	rec = do(t, r, http.MethodPost, "/api/accounts/A1/transfer", `{"target":"B1","amount":"61"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("overdrawn transfer: status=%d", rec.Code)
	}
	if b := decodeAccount(t, do(t, r, http.MethodGet, "/api/accounts/B1", "")).Balance; !b.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("target changed by failed transfer: %s", b)
	}
}

const aliceJSON = `{"username":"alice","password":"pw1","phone_number":"0123456789","address":"1 Main St","date_of_birth":"1990-05-17"}`

func TestUserLifecycle(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/users", aliceJSON)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status=%d body=%s", rec.Code, rec.Body)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("response leaks password: %s", rec.Body)
	}
	var u userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil {
		t.Fatal(err)
	}
	want := userResponse{Username: "alice", PhoneNumber: "0123456789", Address: "1 Main St", DateOfBirth: "1990-05-17"}
	if u != want {
		t.Fatalf("got %+v want %+v", u, want)
	}

	if rec := do(t, r, http.MethodPost, "/api/users/alice/verify", `{"password":"pw1"}`); rec.Code != http.StatusNoContent {
		t.Fatalf("verify: status=%d", rec.Code)
	}
	if rec := do(t, r, http.MethodPost, "/api/users/alice/verify", `{"password":"pw2"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("verify wrong: status=%d", rec.Code)
	}

	if rec := do(t, r, http.MethodPut, "/api/users/alice/password", `{"current_password":"nope","new_password":"pw2"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("change with wrong current: status=%d", rec.Code)
	}
	if rec := do(t, r, http.MethodPut, "/api/users/alice/password", `{"current_password":"pw1","new_password":"pw2"}`); rec.Code != http.StatusNoContent {
		t.Fatalf("change: status=%d body=%s", rec.Code, rec.Body)
	}
	if rec := do(t, r, http.MethodPost, "/api/users/alice/verify", `{"password":"pw2"}`); rec.Code != http.StatusNoContent {
		t.Fatalf("verify new: status=%d", rec.Code)
	}

	rec = do(t, r, http.MethodPut, "/api/users/alice/phone", `{"phone_number":"9876543210"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"9876543210"`) {
		t.Fatalf("phone: status=%d body=%s", rec.Code, rec.Body)
	}
	rec = do(t, r, http.MethodPut, "/api/users/alice/address", `{"address":"2 Side Rd"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"2 Side Rd"`) {
		t.Fatalf("address: status=%d body=%s", rec.Code, rec.Body)
	}

	rec = do(t, r, http.MethodGet, "/api/users/alice", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil {
		t.Fatal(err)
	}
	if u.PhoneNumber != "9876543210" || u.Address != "2 Side Rd" {
		t.Fatalf("get: %+v", u)
	}
}

func TestUserErrors(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/users", aliceJSON)

	user := func(name, phone, address, dob string) string {
		return fmt.Sprintf(`{"username":%q,"password":"pw","phone_number":%q,"address":%q,"date_of_birth":%q}`,
			name, phone, address, dob)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		code   int
	}{
		{"duplicate", http.MethodPost, "/api/users", aliceJSON, http.StatusConflict},
		{"missing username", http.MethodPost, "/api/users", user("", "0123456789", "x", "1990-01-01"), http.StatusBadRequest},
		{"short phone", http.MethodPost, "/api/users", user("bob", "12345", "x", "1990-01-01"), http.StatusBadRequest},
		{"empty address", http.MethodPost, "/api/users", user("bob", "0123456789", "", "1990-01-01"), http.StatusBadRequest},
		{"bad date", http.MethodPost, "/api/users", user("bob", "0123456789", "x", "17/05/1990"), http.StatusBadRequest},
		{"future date", http.MethodPost, "/api/users", user("bob", "0123456789", "x", "2999-01-01"), http.StatusBadRequest},
		{"unknown user", http.MethodGet, "/api/users/bob", "", http.StatusNotFound},
		{"verify unknown user", http.MethodPost, "/api/users/bob/verify", `{"password":"pw"}`, http.StatusUnauthorized},
		{"invalid phone update", http.MethodPut, "/api/users/alice/phone", `{"phone_number":"abcdefghij"}`, http.StatusBadRequest},
		{"empty address update", http.MethodPut, "/api/users/alice/address", `{"address":""}`, http.StatusBadRequest},
		{"update unknown user", http.MethodPut, "/api/users/bob/address", `{"address":"x"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, tt.method, tt.path, tt.body)
			if rec.Code != tt.code {
				t.Fatalf("status=%d want=%d body=%s", rec.Code, tt.code, rec.Body)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{repository.ErrAccountNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", repository.ErrUserNotFound), http.StatusNotFound},
		{repository.ErrUserExists, http.StatusConflict},
		{&model.InsufficientFundsError{Balance: decimal.Zero, Amount: decimal.NewFromInt(1)}, http.StatusConflict},
		{&model.InvalidAmountError{Op: "deposit", Amount: decimal.Zero}, http.StatusBadRequest},
		{&model.InvalidPhoneError{Phone: "1"}, http.StatusBadRequest},
		{service.ErrSameAccount, http.StatusBadRequest},
		{password.ErrTooLong, http.StatusBadRequest},
		{repository.ErrAmountOutOfRange, http.StatusBadRequest},
		{service.ErrInvalidCheckDigit, http.StatusBadRequest},
		{model.ErrNilTarget, http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.code {
			t.Errorf("statusFor(%v)=%d want=%d", tt.err, got, tt.code)
		}
	}
}

func TestInternalErrorIsNotLeaked(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, zaptest.NewLogger(t), errors.New("pq: password authentication failed"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "pq:") {
		t.Fatalf("internal error leaked: %s", rec.Body)
	}
}
