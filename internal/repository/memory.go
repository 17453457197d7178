package repository

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sina-mobarez/BankSys/internal/model"
)

var (
	_ AccountRepository = (*MemoryAccountRepository)(nil)
	_ UserRepository    = (*MemoryUserRepository)(nil)
)

type accountRecord struct {
	number      string
	balance     decimal.Decimal
	createdDate time.Time
}

func (rec accountRecord) restore() (*model.Account, error) {
	return model.NewAccount(rec.number, rec.balance, rec.createdDate)
}

func recordOf(a *model.Account) accountRecord {
	return accountRecord{number: a.AccountNumber(), balance: a.Balance(), createdDate: a.CreatedDate()}
}

type memoryAccountStore struct {
	txMu     sync.Mutex // serialises writers
	mu       sync.RWMutex
	accounts map[string]accountRecord
}

// MemoryAccountRepository keeps accounts in process memory. Transactions
// are serialised and buffer their writes until fn succeeds.
type MemoryAccountRepository struct {
	store  *memoryAccountStore
	staged map[string]accountRecord // non-nil inside WithinTx
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		store: &memoryAccountStore{accounts: make(map[string]accountRecord)},
	}
}

func (r *MemoryAccountRepository) lookup(number string) (accountRecord, bool) {
	if rec, ok := r.staged[number]; ok {
		return rec, true
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rec, ok := r.store.accounts[number]
	return rec, ok
}

func (r *MemoryAccountRepository) write(rec accountRecord) {
	if r.staged != nil {
		r.staged[rec.number] = rec
		return
	}
	r.store.mu.Lock()
	r.store.accounts[rec.number] = rec
	r.store.mu.Unlock()
}

func (r *MemoryAccountRepository) Create(ctx context.Context, account *model.Account) error {
	if r.staged == nil {
		r.store.txMu.Lock()
		defer r.store.txMu.Unlock()
	}
	if _, ok := r.lookup(account.AccountNumber()); ok {
		return ErrAccountExists
	}
	if err := CheckAmount(account.Balance()); err != nil {
		return err
	}
	r.write(recordOf(account))
	return nil
}

func (r *MemoryAccountRepository) GetByNumber(ctx context.Context, number string) (*model.Account, error) {
	rec, ok := r.lookup(number)
	if !ok {
		return nil, ErrAccountNotFound
	}
	return rec.restore()
}

func (r *MemoryAccountRepository) Update(ctx context.Context, account *model.Account) error {
	if r.staged == nil {
		r.store.txMu.Lock()
		defer r.store.txMu.Unlock()
	}
	if _, ok := r.lookup(account.AccountNumber()); !ok {
		return ErrAccountNotFound
	}
	if err := CheckAmount(account.Balance()); err != nil {
		return err
	}
	r.write(recordOf(account))
	return nil
}

func (r *MemoryAccountRepository) WithinTx(ctx context.Context, fn func(repo AccountRepository) error) error {
	if r.staged != nil {
		return fn(r)
	}
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &MemoryAccountRepository{store: r.store, staged: make(map[string]accountRecord)}
	if err := fn(tx); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for number, rec := range tx.staged {
		r.store.accounts[number] = rec
	}
	return nil
}

type userRecord struct {
	username    string
	credential  model.Credential
	phoneNumber string
	address     string
	dateOfBirth time.Time
}

type memoryUserStore struct {
	txMu  sync.Mutex // serialises writers
	mu    sync.RWMutex
	users map[string]userRecord
}

// MemoryUserRepository keeps users in process memory. Writers are
// serialised the same way as MemoryAccountRepository.
type MemoryUserRepository struct {
	store  *memoryUserStore
	opts   []model.UserOption
	staged map[string]userRecord // non-nil inside WithinTx
}

func NewMemoryUserRepository(opts ...model.UserOption) *MemoryUserRepository {
	return &MemoryUserRepository{
		store: &memoryUserStore{users: make(map[string]userRecord)},
		opts:  opts,
	}
}

func userRecordOf(u *model.User) userRecord {
	return userRecord{
		username:    u.Username(),
		credential:  u.Credential(),
		phoneNumber: u.PhoneNumber(),
		address:     u.Address(),
		dateOfBirth: u.DateOfBirth(),
	}
}

func (r *MemoryUserRepository) lookup(username string) (userRecord, bool) {
	if rec, ok := r.staged[username]; ok {
		return rec, true
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rec, ok := r.store.users[username]
	return rec, ok
}

func (r *MemoryUserRepository) write(rec userRecord) {
	if r.staged != nil {
		r.staged[rec.username] = rec
		return
	}
	r.store.mu.Lock()
	r.store.users[rec.username] = rec
	r.store.mu.Unlock()
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *model.User) error {
	if r.staged == nil {
		r.store.txMu.Lock()
		defer r.store.txMu.Unlock()
	}
	if _, ok := r.lookup(user.Username()); ok {
		return ErrUserExists
	}
	r.write(userRecordOf(user))
	return nil
}

func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	rec, ok := r.lookup(username)
	if !ok {
		return nil, ErrUserNotFound
	}
	return model.RestoreUser(rec.username, rec.credential, rec.phoneNumber, rec.address, rec.dateOfBirth, r.opts...)
}

func (r *MemoryUserRepository) Update(ctx context.Context, user *model.User) error {
	if r.staged == nil {
		r.store.txMu.Lock()
		defer r.store.txMu.Unlock()
	}
	if _, ok := r.lookup(user.Username()); !ok {
		return ErrUserNotFound
	}
	r.write(userRecordOf(user))
	return nil
}

func (r *MemoryUserRepository) WithinTx(ctx context.Context, fn func(repo UserRepository) error) error {
	if r.staged != nil {
		return fn(r)
	}
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &MemoryUserRepository{store: r.store, opts: r.opts, staged: make(map[string]userRecord)}
	if err := fn(tx); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for username, rec := range tx.staged {
		r.store.users[username] = rec
	}
	return nil
}
