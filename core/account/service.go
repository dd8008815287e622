// Package account manages the dashboard accounts: creation, authentication and password resets.
package account

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/syllabus/core"
)

var (
	// errors
	ErrNotFound           = errors.New("account not found")
	ErrEmailExists        = errors.New("an account with this email already exists")
	ErrUsernameExists     = errors.New("an account with this username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("account is inactive")
	ErrInvalidResetLink   = errors.New("the password reset link is invalid or has expired")
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username, email string, excluded ...Account) error
		CreateAccount(ctx context.Context, acc Account) (Account, error)
		QueryAccounts(ctx context.Context) ([]Account, error)
		GetAccount(ctx context.Context, filter GetFilter) (Account, error)
		UpdateAccount(ctx context.Context, acc Account) (Account, error)
		UpdateOrCreateAccount(ctx context.Context, acc Account) (Account, error)
		DeleteAccountsByID(ctx context.Context, ids ...string) (int, error)
	}

	Service interface {
		Create(ctx context.Context, na NewAccount) (Account, error)
		// AddOrUpdate creates the account matching uname or email, or updates it; no password policy applies.
		AddOrUpdate(ctx context.Context, uname, email, pwd string, roles []string) (Account, error)
		Authenticate(ctx context.Context, creds Credentials) (Account, error)
		QueryAll(ctx context.Context) ([]Account, error)
		GetByID(ctx context.Context, id string) (Account, error)
		GetByEmail(ctx context.Context, email string) (Account, error)
		GetByUsernameOrEmail(ctx context.Context, login string) (Account, error)
		SetPassword(ctx context.Context, login, pwd string) error
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, rp ResetPassword) (Account, error)
		Delete(ctx context.Context, ids ...string) (int, error)
	}

	service struct {
		repo     Repository
		mailSvc  core.EmailService
		logger   core.Logger
		validate *validator.Validate
		tokenGen tokenGenerator
		appName  string
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(
	repo Repository,
	mailSvc core.EmailService,
	logger core.Logger,
	validate *validator.Validate,
	conf *core.Config,
) Service {
	return &service{
		repo:     repo,
		mailSvc:  mailSvc,
		logger:   logger,
		validate: validate,
		tokenGen: tokenGenerator{
			secretKey: []byte(conf.SecretKey),
			timeout:   conf.PasswordResetTimeoutDelta,
		},
		appName: conf.AppName,
	}
}

func (svc *service) checkUniqueness(ctx context.Context, uname, email string, excluded ...Account) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, email, excluded...); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *service) Create(ctx context.Context, na NewAccount) (Account, error) {
	na.Name = core.CleanString(na.Name)
	na.Username = core.CleanString(na.Username, true /* lower */)
	na.Email = core.CleanString(na.Email, true /* lower */)
	if err := svc.validate.Struct(na); err != nil {
		return Account{}, err
	}
	if err := svc.checkUniqueness(ctx, na.Username, na.Email); err != nil {
		return Account{}, err
	}

	roles := na.Roles
	if len(roles) == 0 {
		roles = []string{RoleViewer}
	}
	now := time.Now().UTC()
	acc := Account{
		Name:      na.Name,
		Username:  na.Username,
		Email:     na.Email,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	acc.SetActive(true)
	if err := acc.SetPassword(na.Password); err != nil {
		return Account{}, err
	}
	return svc.repo.CreateAccount(ctx, acc)
}

func (svc *service) AddOrUpdate(ctx context.Context, uname, email, pwd string, roles []string) (Account, error) {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	if uname == "" && email == "" {
		return Account{}, core.NewValidationError(nil, core.FieldError{Field: "username", Error: usernameOrEmailText})
	}
	for _, role := range roles {
		if !isRole(role) {
			return Account{}, core.NewValidationError(nil, core.FieldError{Field: "roles", Error: allRolesText})
		}
	}

	acc, err := svc.repo.GetAccount(ctx, GetFilter{UsernameOrEmail: []string{uname, email}})
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return Account{}, err
		}
		acc = Account{Username: uname, Email: email, CreatedAt: time.Now().UTC()}
	}
	if len(roles) > 0 {
		acc.Roles = roles
	}
	acc.SetActive(true)
	acc.UpdatedAt = time.Now().UTC()
	if err := acc.SetPassword(pwd); err != nil {
		return Account{}, err
	}
	return svc.repo.UpdateOrCreateAccount(ctx, acc)
}

func (svc *service) Authenticate(ctx context.Context, creds Credentials) (Account, error) {
	if err := svc.validate.Struct(creds); err != nil {
		return Account{}, err
	}

	acc, err := svc.GetByUsernameOrEmail(ctx, creds.Login)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, err
	}
	if err := acc.CheckPassword(creds.Password); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if !acc.Active() {
		return Account{}, ErrInactive
	}

	acc.LastLogin = time.Now().UTC()
	return svc.repo.UpdateAccount(ctx, acc)
}

func (svc *service) QueryAll(ctx context.Context) ([]Account, error) {
	return svc.repo.QueryAccounts(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Account, error) {
	return svc.repo.GetAccount(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (Account, error) {
	return svc.repo.GetAccount(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) GetByUsernameOrEmail(ctx context.Context, login string) (Account, error) {
	login = core.CleanString(login, true /* lower */)
	return svc.repo.GetAccount(ctx, GetFilter{UsernameOrEmail: []string{login}})
}

func (svc *service) SetPassword(ctx context.Context, login, pwd string) error {
	acc, err := svc.GetByUsernameOrEmail(ctx, login)
	if err != nil {
		return err
	}
	if err := acc.SetPassword(pwd); err != nil {
		return err
	}
	acc.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateAccount(ctx, acc)
	return err
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	acc, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !acc.Active() {
		return ErrInactive
	}
	go svc.sendPasswordResetMail(acc)
	return nil
}

func (svc *service) sendPasswordResetMail(acc Account) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: acc.DisplayName(), Address: acc.Email}},
		Subject:      "Password reset on " + svc.appName,
		TemplateName: "password_reset",
		TemplateData: map[string]interface{}{
			"Name":     acc.DisplayName(),
			"Username": acc.Username,
			"UID":      EncodeUID(acc),
			"Token":    svc.tokenGen.makeToken(acc),
		},
	})
}

func (svc *service) ResetPassword(ctx context.Context, rp ResetPassword) (Account, error) {
	if err := svc.validate.Struct(rp); err != nil {
		return Account{}, err
	}

	id, err := decodeUID(rp.UID)
	if err != nil {
		return Account{}, ErrInvalidResetLink
	}
	acc, err := svc.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Account{}, ErrInvalidResetLink
		}
		return Account{}, err
	}
	if err := svc.tokenGen.verifyToken(acc, rp.Token); err != nil {
		svc.logger.Info("account.ResetPassword: "+err.Error(), acc)
		return Account{}, ErrInvalidResetLink
	}
	if tag := checkPassword(rp.Password, acc.Name, acc.Username, acc.Email); tag == pwdAttrSimTag {
		return Account{}, core.NewValidationError(nil, core.FieldError{Field: "password", Error: pwdAttrSimText})
	}

	if err := acc.SetPassword(rp.Password); err != nil {
		return Account{}, err
	}
	acc.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAccount(ctx, acc)
}

func (svc *service) Delete(ctx context.Context, ids ...string) (int, error) {
	return svc.repo.DeleteAccountsByID(ctx, ids...)
}
