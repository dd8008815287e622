package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/syllabus/core/account"
)

const accountColumns = `id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login`

// accountRow is the "account" table row. Columns are mapped in snake_case.
type accountRow struct {
	ID           string
	Name         null.String
	Username     null.String
	Email        null.String
	IsActive     null.Bool
	Roles        pq.StringArray
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    null.Time
}

type accountRepository struct {
	db *sqlx.DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *sqlx.DB) account.Repository {
	return &accountRepository{db: db}
}

func toRow(acc account.Account) accountRow {
	return accountRow{
		ID:           acc.ID,
		Name:         null.NewString(acc.Name, acc.Name != ""),
		Username:     null.NewString(acc.Username, acc.Username != ""),
		Email:        null.NewString(acc.Email, acc.Email != ""),
		IsActive:     null.BoolFromPtr(acc.IsActive),
		Roles:        pq.StringArray(append([]string{}, acc.Roles...)),
		PasswordHash: acc.PasswordHash,
		CreatedAt:    acc.CreatedAt.UTC(),
		UpdatedAt:    acc.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(acc.LastLogin.UTC(), !acc.LastLogin.IsZero()),
	}
}

func (row accountRow) account() account.Account {
	return account.Account{
		ID:           row.ID,
		Name:         row.Name.String,
		Username:     row.Username.String,
		Email:        row.Email.String,
		IsActive:     row.IsActive.Ptr(),
		Roles:        []string(row.Roles),
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
		LastLogin:    row.LastLogin.Time.UTC(),
	}
}

// trapNoRowsErr maps psql "no rows" err to account.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return account.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func validIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	return valid
}

func (repo *accountRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excluded ...account.Account) error {
	exclIDs := make([]string, 0, len(excluded))
	for _, acc := range excluded {
		exclIDs = append(exclIDs, acc.ID)
	}

	var row accountRow
	q := `SELECT ` + accountColumns + ` FROM account
		WHERE ((username IS NOT NULL AND username = $1) OR (email IS NOT NULL AND email = $2))
		AND NOT (id = ANY($3::uuid[]))
		LIMIT 1`
	err := repo.db.GetContext(ctx, &row, q, username, email, pq.Array(validIDs(exclIDs)))
	switch {
	case err == sql.ErrNoRows:
		return nil
	case err != nil:
		return errors.Wrap(err, "checking account uniqueness")
	case username != "" && row.Username.String == username:
		return account.ErrUsernameExists
	default:
		return account.ErrEmailExists
	}
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	acc.ID = uuid.New().String()
	row := toRow(acc)
	q := `INSERT INTO account (` + accountColumns + `)
		VALUES (:id, :name, :username, :email, :is_active, :roles, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return account.Account{}, errors.Wrap(err, "inserting account")
	}
	return row.account(), nil
}

func (repo *accountRepository) QueryAccounts(ctx context.Context) ([]account.Account, error) {
	var rows []accountRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+accountColumns+` FROM account ORDER BY created_at, id`); err != nil {
		return nil, errors.Wrap(err, "querying accounts")
	}
	accounts := make([]account.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, row.account())
	}
	return accounts, nil
}

func (repo *accountRepository) GetAccount(ctx context.Context, filter account.GetFilter) (account.Account, error) {
	var (
		where string
		args  []interface{}
	)
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return account.Account{}, account.ErrNotFound
		}
		where, args = "id = $1", []interface{}{filter.ID}
	case filter.Username != "":
		where, args = "username = $1", []interface{}{filter.Username}
	case filter.Email != "":
		where, args = "email = $1", []interface{}{filter.Email}
	case len(filter.UsernameOrEmail) > 0:
		var email string
		uname := filter.UsernameOrEmail[0]
		if len(filter.UsernameOrEmail) > 1 {
			email = filter.UsernameOrEmail[1]
		}
		if email == "" {
			email = uname
		} else if uname == "" {
			uname = email
		}
		where, args = "username = $1 OR email = $2", []interface{}{uname, email}
	default:
		return account.Account{}, account.ErrNotFound
	}

	var row accountRow
	q := `SELECT ` + accountColumns + ` FROM account WHERE ` + where + ` ORDER BY created_at LIMIT 1`
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return account.Account{}, trapNoRowsErr(err, "finding account")
	}
	return row.account(), nil
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	row := toRow(acc)
	q := `UPDATE account SET
		name = :name, username = :username, email = :email, is_active = :is_active, roles = :roles,
		password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "updating account")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return account.Account{}, account.ErrNotFound
	}
	return row.account(), nil
}

func (repo *accountRepository) UpdateOrCreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	if acc.ID == "" {
		return repo.CreateAccount(ctx, acc)
	}
	return repo.UpdateAccount(ctx, acc)
}

func (repo *accountRepository) DeleteAccountsByID(ctx context.Context, ids ...string) (int, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM account WHERE id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting accounts")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting accounts")
	}
	return int(cnt), nil
}
