package account

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/syllabus/core"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a Service that sends its emails synchronously.
func NewServiceMock(repo Repository, mailSvc core.EmailService, validate *validator.Validate, conf *core.Config) Service {
	svc := NewService(repo, mailSvc, core.NopLogger{}, validate, conf).(*service)
	return &serviceMock{service: *svc}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	acc, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !acc.Active() {
		return ErrInactive
	}
	// run synchronously
	svc.sendPasswordResetMail(acc)
	return nil
}
