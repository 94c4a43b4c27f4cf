package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fieldsurvey/internal/server"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx.String("env-prefix"))
	if err != nil {
		return err
	}
	if err := validateConfig(config); err != nil {
		return err
	}

	logger := newLogger(config)

	rt := newRuntime(config, logger)
	defer rt.Close()

	surveys, err := rt.surveyService(ctx)
	if err != nil {
		return err
	}

	if err := surveys.Probe(ctx); err != nil {
		// the form still renders; submits fail fast until the backend recovers
		logger.WithError(err).Warn("record backend probe failed at startup")
	}

	var (
		cognitoClient server.CognitoAPI
		jwkCache      *jwk.Cache
		jwksURL       string
	)
	if config.AuthEnabled() {
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}
		cognitoClient = cognitoidentityprovider.NewFromConfig(awsConfig)

		jwkCache, err = jwk.NewCache(ctx, httprc.NewClient())
		if err != nil {
			return fmt.Errorf("failed to initialize jwk cache: %w", err)
		}

		jwksURL = strings.TrimSuffix(config.CognitoIssuerURL, "/") + "/.well-known/jwks.json"
		if err := jwkCache.Register(ctx, jwksURL); err != nil {
			return fmt.Errorf("failed to register cognito jwks with cache: %w", err)
		}
	} else {
		logger.Warn("COGNITO_CLIENT_ID not set, the survey is open to anyone who can reach it")
	}

	srv, err := server.New(config, logger, surveys, cognitoClient, jwkCache, jwksURL)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
