package echoweb

import (
	"net/http"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/trezcool/syllabus/core"
	"github.com/trezcool/syllabus/core/account"
	"github.com/trezcool/syllabus/core/authz"
)

var (
	contextTokenKey   = "sessionToken"
	contextAccountKey = "account"
)

// Claims represents the authorization claims transmitted via the session cookie.
// Id is the session id.
type Claims struct {
	jwt.StandardClaims
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
		TokenLookup:   "cookie:" + conf.Server.SessionCookieName,
	}
}

func NewClaims(acc account.Account, sessionID string, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        sessionID,
			Issuer:    conf.AppName,
			Subject:   acc.ID,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: acc.Username,
		Email:    acc.Email,
		Roles:    acc.Roles,
	}
}

// GenerateToken generates a signed JWT token string representing the account Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// sessionCookie carries the session token to the browser.
type sessionCookie struct {
	name   string
	secure bool
}

func newSessionCookie(conf *core.Config) sessionCookie {
	return sessionCookie{name: conf.Server.SessionCookieName, secure: conf.Server.SecureCookie}
}

func (c sessionCookie) set(ctx echo.Context, token string, expires time.Time) {
	ctx.SetCookie(&http.Cookie{
		Name:     c.name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c sessionCookie) clear(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextAccount(ctx echo.Context) (account.Account, error) {
	if acc, ok := ctx.Get(contextAccountKey).(account.Account); ok {
		return acc, nil
	}
	return account.Account{}, errUnauthorized
}

// sessionMiddleware loads the account of a valid session token and keeps the session alive.
// It must run after the JWT middleware.
func sessionMiddleware(svc account.Service, store *sessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil || claims.Id == "" {
				return errUnauthorized
			}

			acc, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
			if err != nil {
				if errors.Cause(err) == account.ErrNotFound {
					store.drop(claims.Id)
					return errUnauthorized
				}
				return errors.Wrap(err, "finding account by ID")
			}
			if !acc.Active() {
				store.drop(claims.Id)
				return errAccountDeactivated
			}

			ctx.Set(contextAccountKey, acc)
			store.touch(claims.Id)
			return next(ctx)
		}
	}
}

// permissionMiddleware rejects accounts whose roles do not allow act on obj.
func permissionMiddleware(enforcer *authz.Enforcer, obj, act string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			acc, err := getContextAccount(ctx)
			if err != nil {
				return err
			}
			if !enforcer.Enforce(acc.Roles, obj, act) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// loginLimiter throttles login attempts per client IP.
type loginLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newLoginLimiter(perMinute, burst int) *loginLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &loginLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *loginLimiter) allow(ip string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// sweep forgets the clients that are back to a full burst.
func (l *loginLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, lim := range l.limiters {
		if lim.Tokens() >= float64(l.burst) {
			delete(l.limiters, ip)
		}
	}
}
