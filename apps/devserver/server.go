// Command devserver is a stub of the remote assessment API, good
// enough to develop and demo the evaluator client against without the
// real backend.
package main

import (
	"context"
	"net/http"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/psbppwb/penilaian/core"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool
		Conf           *core.Config
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
		data *fixtures
	}
)

var _ Server = (*server)(nil)

// claims mirror what the real API puts in its tokens.
type claims struct {
	jwt.StandardClaims
	Username string   `json:"username,omitempty"`
	Name     string   `json:"name,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
		data: newFixtures(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	if !(s.opts.Conf.Debug || s.opts.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = stubHTTPErrorHandler
	s.app.Debug = s.opts.Conf.Debug

	api := s.app.Group("/api")

	// un-authed endpoints
	api.POST("/login", s.login)
	api.POST("/login-rfid", s.loginRFID)

	// authed endpoints
	jwtmw := middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    []byte(s.opts.Conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(claims),
	})
	ag := api.Group("", jwtmw)
	ag.POST("/logout", s.logout)
	ag.GET("/peserta", s.listParticipants)
	ag.GET("/peserta/rfid", s.participantByRFID)
	ag.POST("/penilaian-akademik", s.submitAcademic)
	ag.POST("/penilaian-akhlak", s.submitBehavior)
	ag.GET("/statistik/:lokasi", s.statistics)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Addr))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// stubHTTPErrorHandler serves every error as the real API would: a
// `{"message": ...}` body, with the fixed sentinel on auth failures.
func stubHTTPErrorHandler(err error, ctx echo.Context) {
	code := http.StatusInternalServerError
	message := http.StatusText(code)

	if herr, ok := err.(*echo.HTTPError); ok {
		code = herr.Code
		if m, ok := herr.Message.(string); ok {
			message = m
		}
	}
	if code == http.StatusUnauthorized || err == middleware.ErrJWTMissing {
		code = http.StatusUnauthorized
		message = "Unauthenticated."
	}

	if !ctx.Response().Committed {
		if jErr := ctx.JSON(code, echo.Map{"message": message}); jErr != nil {
			ctx.Echo().Logger.Error(jErr)
		}
	}
}
