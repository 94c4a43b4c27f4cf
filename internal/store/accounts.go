package store

import (
	"context"
	"fmt"
	"strings"

	"fieldsurvey/internal/utils"
	"fieldsurvey/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountTableName = "fieldsurvey.accounts"

// upsertChunkSize keeps a single INSERT under the 65535 bind parameter limit.
const upsertChunkSize = 1000

var accountColumns = utils.StructTagValues(types.AccountRecord{})

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) AllAccounts(ctx context.Context) ([]types.AccountRecord, error) {
	query, args, err := psql().
		Select(accountColumns...).
		From(accountTableName).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate accounts query: %w", err)
	}

	var accounts []types.AccountRecord
	err = pgxscan.Select(ctx, r.pool, &accounts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) Count(ctx context.Context) (int, error) {
	query, args, err := psql().Select("count(*)").From(accountTableName).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate count query: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	return count, nil
}

// UpsertAccounts inserts or refreshes accounts in chunks. Existing rows keep
// their id and take the incoming organizational fields.
func (r *AccountRepository) UpsertAccounts(ctx context.Context, accounts []types.AccountRecord) (int, error) {
	written := 0
	for start := 0; start < len(accounts); start += upsertChunkSize {
		end := min(start+upsertChunkSize, len(accounts))

		query, args, err := upsertAccountsQuery(accounts[start:end])
		if err != nil {
			return written, fmt.Errorf("failed to generate upsert query: %w", err)
		}

		tag, err := r.pool.Exec(ctx, query, args...)
		if err != nil {
			return written, fmt.Errorf("failed to upsert accounts %d-%d: %w", start, end, err)
		}
		written += int(tag.RowsAffected())
	}

	return written, nil
}

func (r *AccountRepository) DeleteAccountsNotIn(ctx context.Context, keep []string) (int, error) {
	query, args, err := deleteAccountsNotInQuery(keep)
	if err != nil {
		return 0, fmt.Errorf("failed to generate delete query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale accounts: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// deleteAccountsNotInQuery binds keep as a single text[] so the statement
// stays at one parameter however large the reference table is.
func deleteAccountsNotInQuery(keep []string) (string, []any, error) {
	builder := psql().Delete(accountTableName)
	if len(keep) > 0 {
		builder = builder.Where(sq.Expr("id <> ALL(?)", keep))
	}
	return builder.ToSql()
}

func upsertAccountsQuery(accounts []types.AccountRecord) (string, []any, error) {
	builder := psql().Insert(accountTableName).Columns(accountColumns...)
	for _, a := range accounts {
		builder = builder.Values(a.ID, a.Zone, a.Circle, a.Division, a.SubDivision)
	}

	return builder.
		Suffix("ON CONFLICT (id) DO UPDATE SET " + buildUpdateClause(accountColumns, "id")).
		ToSql()
}

// buildUpdateClause creates the SET clause for ON CONFLICT DO UPDATE
// e.g., "zone = EXCLUDED.zone, circle = EXCLUDED.circle"
func buildUpdateClause(columns []string, skip ...string) string {
	parts := make([]string, 0, len(columns))
	for _, c := range utils.FilterSliceString(columns, skip...) {
		parts = append(parts, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	return strings.Join(parts, ", ")
}
