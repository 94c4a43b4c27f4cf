package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"fieldsurvey/internal/survey"
	"fieldsurvey/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

// CognitoAPI is the slice of the Cognito client the login handler uses.
type CognitoAPI interface {
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
}

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	survey    *survey.Service
	templates *template.Template

	cognitoClient CognitoAPI
	cookie        *securecookie.SecureCookie

	jwksCache *jwk.Cache
	jwksURL   string

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	surveys *survey.Service,
	cognitoClient CognitoAPI,
	jwkCache *jwk.Cache,
	jwksURL string,
) (*Service, error) {
	mux := flow.New()

	hashKey, err := cookieKey(config.CookieHashKey, 32)
	if err != nil {
		return nil, fmt.Errorf("cookie hash key: %w", err)
	}
	blockKey, err := cookieKey(config.CookieBlockKey, 0)
	if err != nil {
		return nil, fmt.Errorf("cookie block key: %w", err)
	}
	if config.CookieHashKey == "" {
		logger.Warn("COOKIE_HASH_KEY not set, using a random key; cookies will not survive a restart")
	}

	s := &Service{
		logger:        logger,
		config:        config,
		survey:        surveys,
		cognitoClient: cognitoClient,
		cookie:        securecookie.New(hashKey, blockKey),

		jwksCache: jwkCache,
		jwksURL:   jwksURL,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed mux, mostly for httptest.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	if s.config.AuthEnabled() {
		r.HandleFunc("/login", s.handleGetLogin, http.MethodGet)
		r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
		r.HandleFunc("/logout", s.handlePostLogout, http.MethodPost)
	}

	r.Group(func(r *flow.Mux) {
		if s.config.AuthEnabled() {
			r.Use(s.RequireAuth)
		}

		r.HandleFunc("/", s.handleHome, http.MethodGet)
		r.HandleFunc("/survey", s.handleGetSurveyStart, http.MethodGet)
		r.HandleFunc("/survey/lookup", s.handleGetSurveyLookup, http.MethodGet)
		r.HandleFunc("/survey/account/:accountID", s.handleGetSurveyAccount, http.MethodGet)
		r.HandleFunc("/survey/account/:accountID", s.handlePostSurveyAccount, http.MethodPost)
		r.HandleFunc("/survey/submitted", s.handleGetSurveySubmitted, http.MethodGet)
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		// accept lists the file types offered by the browser picker
		"accept": func(name types.FieldName) string {
			if name == types.FieldDocument {
				return "application/pdf,image/*"
			}
			return "image/*"
		},
		"fieldError": func(errs map[string]string, name string) string {
			return errs[name]
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// cookieKey decodes a base64 key. An empty value yields a random key of
// size random, or nil when random is 0.
func cookieKey(encoded string, random int) ([]byte, error) {
	if encoded == "" {
		if random == 0 {
			return nil, nil
		}
		return securecookie.GenerateRandomKey(random), nil
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	return key, nil
}

func (s *Service) userFromContext(ctx context.Context) string {
	if email, ok := ctx.Value(contextKeyEmail).(string); ok && email != "" {
		return email
	}
	userID, _ := ctx.Value(contextKeyUserID).(string)
	return userID
}
