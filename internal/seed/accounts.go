package seed

import (
	"context"
	"fmt"

	"fieldsurvey/pkg/types"
)

// AccountWriter is the part of store.AccountRepository a sync needs.
type AccountWriter interface {
	UpsertAccounts(ctx context.Context, accounts []types.AccountRecord) (int, error)
	DeleteAccountsNotIn(ctx context.Context, keep []string) (int, error)
	Count(ctx context.Context) (int, error)
}

type SyncResult struct {
	Upserted int
	Deleted  int
	Total    int
}

// SyncAccounts writes the reference records into the accounts table. With
// prune set, accounts missing from records are deleted afterwards.
func SyncAccounts(ctx context.Context, repo AccountWriter, records []types.AccountRecord, prune bool) (*SyncResult, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("refusing to sync an empty reference table")
	}

	fmt.Println("Starting account sync...")
	fmt.Printf("  Reference file contains %d accounts\n", len(records))

	upserted, err := repo.UpsertAccounts(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert accounts: %w", err)
	}

	result := &SyncResult{Upserted: upserted}

	if prune {
		ids := make([]string, 0, len(records))
		for _, r := range records {
			ids = append(ids, r.ID)
		}

		deleted, err := repo.DeleteAccountsNotIn(ctx, ids)
		if err != nil {
			return result, fmt.Errorf("failed to prune accounts: %w", err)
		}
		result.Deleted = deleted
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to count accounts: %w", err)
	}
	result.Total = total

	fmt.Printf("\nSync complete: %d upserted, %d deleted, %d accounts in table\n", result.Upserted, result.Deleted, result.Total)
	return result, nil
}
