package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/syllabus/core/account"
)

type accountRepository struct {
	db *accountTable
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{db: db.account}
}

// query returns copies of every account sorted by creation date.
func (repo *accountRepository) query() []account.Account {
	accounts := make([]account.Account, 0, len(repo.db.table))
	for _, acc := range repo.db.table {
		accounts = append(accounts, clone(*acc))
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].ID < accounts[j].ID
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts
}

func (repo *accountRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excluded ...account.Account) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, acc := range repo.query() {
		if isExcluded(acc, excluded) {
			continue
		}
		if username != "" && acc.Username == username {
			return account.ErrUsernameExists
		}
		if email != "" && acc.Email == email {
			return account.ErrEmailExists
		}
	}
	return nil
}

func (repo *accountRepository) CreateAccount(_ context.Context, acc account.Account) (account.Account, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	acc.ID = uuid.New().String()
	stored := clone(acc)
	repo.db.table[acc.ID] = &stored
	return clone(acc), nil
}

func (repo *accountRepository) QueryAccounts(context.Context) ([]account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *accountRepository) GetAccount(_ context.Context, filter account.GetFilter) (account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if acc, ok := repo.db.table[filter.ID]; ok {
			return clone(*acc), nil
		}
		return account.Account{}, account.ErrNotFound
	}

	var uname, email string
	switch {
	case filter.Username != "":
		uname = filter.Username
	case filter.Email != "":
		email = filter.Email
	case len(filter.UsernameOrEmail) > 0:
		uname = filter.UsernameOrEmail[0]
		if len(filter.UsernameOrEmail) > 1 {
			email = filter.UsernameOrEmail[1]
		}
		if email == "" {
			email = uname
		} else if uname == "" {
			uname = email
		}
	default:
		return account.Account{}, account.ErrNotFound
	}

	for _, acc := range repo.query() {
		if (uname != "" && acc.Username == uname) || (email != "" && acc.Email == email) {
			return acc, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) UpdateAccount(_ context.Context, acc account.Account) (account.Account, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[acc.ID]; !ok {
		return account.Account{}, account.ErrNotFound
	}
	stored := clone(acc)
	repo.db.table[acc.ID] = &stored
	return clone(acc), nil
}

func (repo *accountRepository) UpdateOrCreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	if acc.ID == "" {
		return repo.CreateAccount(ctx, acc)
	}
	return repo.UpdateAccount(ctx, acc)
}

func (repo *accountRepository) DeleteAccountsByID(_ context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}

func isExcluded(acc account.Account, excluded []account.Account) bool {
	for _, ex := range excluded {
		if ex.ID == acc.ID {
			return true
		}
	}
	return false
}

// clone detaches the slices of acc from the stored copy.
func clone(acc account.Account) account.Account {
	acc.Roles = append([]string(nil), acc.Roles...)
	acc.PasswordHash = append([]byte(nil), acc.PasswordHash...)
	if acc.IsActive != nil {
		active := *acc.IsActive
		acc.IsActive = &active
	}
	return acc
}
