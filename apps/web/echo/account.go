package echoweb

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/syllabus/core"
	"github.com/trezcool/syllabus/core/account"
	"github.com/trezcool/syllabus/core/catalog"
)

const (
	msgInvalidCredentials = "Invalid username/email or password."
	msgMissingCredentials = "Please enter your username/email and password."
	msgPasswordReset      = "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."
	msgPasswordResetDone = "Password has been reset with the new password."
)

type accountApi struct {
	conf     *core.Config
	cookie   sessionCookie
	svc      account.Service
	validate *validator.Validate
	catalog  *catalog.Registry
	store    *sessionStore
	limiter  *loginLimiter
	logger   core.Logger
}

func registerAccountAPI(app *echo.Echo, authed []echo.MiddlewareFunc, api *accountApi) {
	// un-authed endpoints
	app.GET("/login", api.loginForm)
	app.POST("/login", api.login)
	app.POST("/password-reset", api.resetPassword)
	app.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	app.POST("/logout", api.logout, authed...)
	app.GET("/me", api.me, authed...)
}

// Handlers

func (api *accountApi) loginForm(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "login", pageData{AppName: api.conf.AppName, Title: "Sign in"})
}

func (api *accountApi) login(ctx echo.Context) error {
	if !api.limiter.allow(ctx.RealIP()) {
		return errTooManyAttempts
	}

	var data account.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}

	acc, err := api.svc.Authenticate(ctx.Request().Context(), data)
	if err != nil {
		switch cause := errors.Cause(err); {
		case cause == account.ErrInvalidCredentials:
			if wantsJSON(ctx) {
				return errAuthenticationFailed
			}
			return api.loginError(ctx, data.Login, msgInvalidCredentials)
		case cause == account.ErrInactive:
			return errAccountDeactivated
		default:
			if _, ok := cause.(validator.ValidationErrors); ok && !wantsJSON(ctx) {
				return api.loginError(ctx, data.Login, msgMissingCredentials)
			}
			return errors.Wrap(err, "authenticating")
		}
	}

	claims := NewClaims(acc, uuid.New().String(), api.conf)
	token, err := GenerateToken(claims, api.conf.SecretKey)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	api.cookie.set(ctx, token, time.Unix(claims.ExpiresAt, 0))
	api.logger.Info("account logged in", acc)

	if wantsJSON(ctx) {
		return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
	}
	return ctx.Redirect(http.StatusSeeOther, "/tables/"+api.conf.Server.DefaultResource)
}

func (api *accountApi) loginError(ctx echo.Context, login, msg string) error {
	return ctx.Render(http.StatusBadRequest, "login", pageData{
		AppName: api.conf.AppName,
		Title:   "Sign in",
		Error:   msg,
		Login:   login,
	})
}

func (api *accountApi) logout(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	api.store.drop(claims.Id)
	api.cookie.clear(ctx)

	if wantsJSON(ctx) {
		return ctx.NoContent(http.StatusNoContent)
	}
	return ctx.Redirect(http.StatusSeeOther, "/login")
}

func (api *accountApi) me(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, acc)
}

func (api *accountApi) resetPassword(ctx echo.Context) error {
	var data account.RequestPasswordReset
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RequestPasswordReset")
	}
	data.Email = core.CleanString(data.Email, true /* lower */)
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email)
	if cause := errors.Cause(err); !(err == nil || cause == account.ErrNotFound || cause == account.ErrInactive) {
		// do not return errors to attackers
		api.logger.Error("requesting password reset", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: msgPasswordReset})
}

func (api *accountApi) confirmPasswordReset(ctx echo.Context) error {
	var data account.ResetPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetPassword")
	}

	if _, err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		if errors.Cause(err) == account.ErrInvalidResetLink {
			return core.NewValidationError(err)
		}
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: msgPasswordResetDone})
}

type (
	LoginResponse struct {
		Token string `json:"token"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)
