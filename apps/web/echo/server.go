package echoweb

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/syllabus/core"
	"github.com/trezcool/syllabus/core/account"
	"github.com/trezcool/syllabus/core/authz"
	"github.com/trezcool/syllabus/core/catalog"
	"github.com/trezcool/syllabus/core/table"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		AccountSvc account.Service
		Catalog    *catalog.Registry
		Transport  table.Transport
		Enforcer   *authz.Enforcer
		Validate   *validator.Validate
		Translator ut.Translator
		// DeletePool runs bulk deletes of every table. Optional.
		DeletePool table.Submitter
	}

	Server struct {
		deps      ServerDeps
		app       *echo.Echo
		store     *sessionStore
		limiter   *loginLimiter
		errors    chan error
		shutdown  chan os.Signal
		stopSweep context.CancelFunc
	}
)

func NewServer(deps ServerDeps) (*Server, error) {
	if err := vala.BeginValidation().Validate(
		vala.IsNotNil(deps.Conf, "Conf"),
		vala.IsNotNil(deps.Logger, "Logger"),
		vala.IsNotNil(deps.AccountSvc, "AccountSvc"),
		vala.IsNotNil(deps.Catalog, "Catalog"),
		vala.IsNotNil(deps.Transport, "Transport"),
		vala.IsNotNil(deps.Enforcer, "Enforcer"),
		vala.IsNotNil(deps.Validate, "Validate"),
		vala.IsNotNil(deps.Translator, "Translator"),
	).Check(); err != nil {
		return nil, err
	}

	renderer, err := newRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		deps:     deps,
		app:      echo.New(),
		store:    newSessionStore(deps),
		limiter:  newLoginLimiter(deps.Conf.Server.LoginRateLimitPerMinute, deps.Conf.Server.LoginRateLimitBurst),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	s.app.Renderer = renderer
	s.setup()
	return s, nil
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	if conf.Debug {
		s.app.Logger.SetLevel(log.DEBUG)
	} else {
		s.app.Logger.SetLevel(log.INFO)
	}

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableRequestLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(metricsMiddleware)

	cookie := newSessionCookie(conf)
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, cookie, s.signalShutdown)

	s.app.GET("/", s.home)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	jwt := middleware.JWTWithConfig(newJWTConfig(conf))
	authed := []echo.MiddlewareFunc{jwt, sessionMiddleware(s.deps.AccountSvc, s.store)}

	registerAccountAPI(s.app, authed, &accountApi{
		conf:     conf,
		cookie:   cookie,
		svc:      s.deps.AccountSvc,
		validate: s.deps.Validate,
		catalog:  s.deps.Catalog,
		store:    s.store,
		limiter:  s.limiter,
		logger:   s.deps.Logger,
	})
	registerTableAPI(s.app.Group("/tables", authed...), &tableApi{
		conf:     conf,
		catalog:  s.deps.Catalog,
		store:    s.store,
		enforcer: s.deps.Enforcer,
		validate: s.deps.Validate,
	})
}

// Start serves until Shutdown or Close; a listener failure is sent to Errors.
func (s *Server) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopSweep = cancel
	go s.store.run(ctx, s.deps.Conf.Server.SessionSweepInterval, s.limiter)

	if err := s.app.Start(s.deps.Conf.Server.Address()); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	s.stop()
	return s.app.Close()
}

func (s *Server) stop() {
	signal.Stop(s.shutdown)
	if s.stopSweep != nil {
		s.stopSweep()
	}
	s.store.dropAll()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.Redirect(http.StatusSeeOther, "/tables/"+s.deps.Conf.Server.DefaultResource)
}
