package store

import (
	"context"
	"fmt"

	"fieldsurvey/internal/utils"
	"fieldsurvey/pkg/types"

	"github.com/jackc/pgx/v5/pgxpool"
)

const submissionTableName = "fieldsurvey.survey_submissions"

var submissionColumns = utils.StructTagValues(types.SubmissionRecord{})

// SubmissionRepository is the database alternative to the shared sheet. It
// satisfies the same append contract: one row per call, all or nothing.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

func (r *SubmissionRepository) Probe(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) Append(ctx context.Context, row []string) error {
	record, err := RecordFromRow(row)
	if err != nil {
		return err
	}
	record.ID = utils.NanoID()

	query, args, err := psql().
		Insert(submissionTableName).
		SetMap(utils.StructToMap(record)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	return nil
}

// RecordFromRow maps a serialized row onto its columns. The row must carry
// exactly one value per column after the id.
func RecordFromRow(row []string) (*types.SubmissionRecord, error) {
	want := len(submissionColumns) - 1
	if len(row) != want {
		return nil, fmt.Errorf("row has %d values, want %d", len(row), want)
	}

	return &types.SubmissionRecord{
		AccountID:         row[0],
		Remark:            row[1],
		Zone:              row[2],
		Circle:            row[3],
		Division:          row[4],
		SubDivision:       row[5],
		Mobile:            row[6],
		RequiredRemark:    row[7],
		MeterSerial:       row[8],
		Reading:           row[9],
		Demand:            row[10],
		MeterImageLink:    row[11],
		PremisesImageLink: row[12],
		DocumentLink:      row[13],
		SubmittedAt:       row[14],
	}, nil
}
