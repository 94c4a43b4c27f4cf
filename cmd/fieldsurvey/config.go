package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldsurvey/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

func loadConfig(prefix string) (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process(prefix, c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	return c, nil
}

// validateConfig checks the keys each selected backend needs. Commands that
// touch a single backend check their own keys instead.
func validateConfig(c *types.Config) error {
	var errs []error

	switch c.ReferenceSource {
	case types.ReferenceSourceFile:
		if c.ReferencePath == "" {
			errs = append(errs, errors.New("set REFERENCE_PATH"))
		}
	case types.ReferenceSourcePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("set DATABASE_URL for the postgres reference source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown REFERENCE_SOURCE %q", c.ReferenceSource))
	}

	switch c.RecordBackend {
	case types.RecordBackendSheets:
		if c.SpreadsheetID == "" {
			errs = append(errs, errors.New("set SPREADSHEET_ID"))
		}
	case types.RecordBackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("set DATABASE_URL for the postgres record backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown RECORD_BACKEND %q", c.RecordBackend))
	}

	switch c.EvidenceBackend {
	case types.EvidenceBackendDrive:
		if c.DriveFolderID == "" {
			errs = append(errs, errors.New("set DRIVE_FOLDER_ID"))
		}
	case types.EvidenceBackendS3:
		if c.S3BucketName == "" {
			errs = append(errs, errors.New("set S3_BUCKET_NAME"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown EVIDENCE_BACKEND %q", c.EvidenceBackend))
	}

	if c.AuthEnabled() && c.CognitoIssuerURL == "" {
		errs = append(errs, errors.New("set COGNITO_ISSUER_URL when COGNITO_CLIENT_ID is set"))
	}

	if c.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be positive"))
	}

	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("invalid TIME_ZONE: %w", err))
	}

	return errors.Join(errs...)
}

func newLogger(c *types.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("invalid LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}
