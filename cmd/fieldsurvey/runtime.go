package main

import (
	"context"
	"fmt"
	"time"

	"fieldsurvey/internal/db"
	"fieldsurvey/internal/reference"
	"fieldsurvey/internal/sheets"
	"fieldsurvey/internal/storage"
	"fieldsurvey/internal/store"
	"fieldsurvey/internal/survey"
	"fieldsurvey/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// runtime builds the configured backends and owns what must be closed.
type runtime struct {
	config *types.Config
	logger *logrus.Logger
	pool   *pgxpool.Pool
}

func newRuntime(config *types.Config, logger *logrus.Logger) *runtime {
	return &runtime{config: config, logger: logger}
}

func (rt *runtime) Close() {
	if rt.pool != nil {
		rt.pool.Close()
	}
}

// dbPool connects on first use and applies the schema.
func (rt *runtime) dbPool(ctx context.Context) (*pgxpool.Pool, error) {
	if rt.pool != nil {
		return rt.pool, nil
	}
	if rt.config.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	pool, err := db.Connect(ctx, rt.config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	rt.pool = pool
	return pool, nil
}

func (rt *runtime) googleOptions() []option.ClientOption {
	opts := []option.ClientOption{
		option.WithScopes(gsheets.SpreadsheetsScope, drive.DriveScope),
	}
	if rt.config.GoogleCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(rt.config.GoogleCredentialsFile))
	}
	return opts
}

func (rt *runtime) location() *time.Location {
	loc, err := time.LoadLocation(rt.config.TimeZone)
	if err != nil {
		rt.logger.WithError(err).Warn("invalid TIME_ZONE, using UTC")
		return time.UTC
	}
	return loc
}

func (rt *runtime) referenceStore(ctx context.Context) (*reference.Store, error) {
	switch rt.config.ReferenceSource {
	case types.ReferenceSourcePostgres:
		pool, err := rt.dbPool(ctx)
		if err != nil {
			return nil, err
		}

		records, err := store.NewAccountRepository(pool).AllAccounts(ctx)
		if err != nil {
			return nil, err
		}
		rt.logger.WithField("accounts", len(records)).Info("reference table loaded from database")
		return reference.New(records), nil

	default:
		if rt.config.ReferencePath == "" {
			return nil, fmt.Errorf("set REFERENCE_PATH")
		}

		accounts, result, err := reference.LoadFile(rt.config.ReferencePath, rt.config.ReferenceSheet)
		if err != nil {
			return nil, err
		}
		rt.logger.WithFields(logrus.Fields{
			"path":     rt.config.ReferencePath,
			"accounts": accounts.Len(),
			"skipped":  result.Skipped,
		}).Info("reference table loaded")
		return accounts, nil
	}
}

func (rt *runtime) evidenceStore(ctx context.Context) (survey.EvidenceStore, error) {
	switch rt.config.EvidenceBackend {
	case types.EvidenceBackendS3:
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Store(
			s3.NewFromConfig(awsConfig),
			rt.config.S3BucketName,
			rt.config.S3KeyPrefix,
			rt.config.S3PublicBaseURL,
		), nil

	default:
		svc, err := drive.NewService(ctx, rt.googleOptions()...)
		if err != nil {
			return nil, fmt.Errorf("failed to create drive client: %w", err)
		}
		return storage.NewDriveStore(svc, rt.config.DriveFolderID, rt.config.DriveSharePublic), nil
	}
}

func (rt *runtime) recordAppender(ctx context.Context) (survey.RowAppender, error) {
	switch rt.config.RecordBackend {
	case types.RecordBackendPostgres:
		pool, err := rt.dbPool(ctx)
		if err != nil {
			return nil, err
		}
		return store.NewSubmissionRepository(pool), nil

	default:
		svc, err := gsheets.NewService(ctx, rt.googleOptions()...)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets client: %w", err)
		}
		return sheets.NewAppender(svc, rt.config.SpreadsheetID, rt.config.SheetName), nil
	}
}

func (rt *runtime) surveyService(ctx context.Context) (*survey.Service, error) {
	accounts, err := rt.referenceStore(ctx)
	if err != nil {
		return nil, err
	}

	evidence, err := rt.evidenceStore(ctx)
	if err != nil {
		return nil, err
	}

	appender, err := rt.recordAppender(ctx)
	if err != nil {
		return nil, err
	}

	return survey.New(survey.Deps{
		Logger:         rt.logger,
		Accounts:       accounts,
		Evidence:       evidence,
		Appender:       appender,
		MaxUploadBytes: rt.config.MaxUploadMB << 20,
		Location:       rt.location(),
	}), nil
}
