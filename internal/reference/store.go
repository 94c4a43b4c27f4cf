// Package reference holds the read-only account table the survey resolves
// identifiers against.
package reference

import (
	"strings"

	"fieldsurvey/pkg/types"
)

const MaxIDLength = 10

// Store maps account identifiers to their organizational metadata. It is
// built once and never mutated, so it is safe for concurrent readers.
type Store struct {
	records map[string]types.AccountRecord
}

// New builds a store from records. The first record wins when an
// identifier repeats.
func New(records []types.AccountRecord) *Store {
	s := &Store{records: make(map[string]types.AccountRecord, len(records))}
	for _, rec := range records {
		rec.ID = NormalizeID(rec.ID)
		if _, ok := s.records[rec.ID]; ok {
			continue
		}
		s.records[rec.ID] = rec
	}
	return s
}

func (s *Store) Len() int {
	return len(s.records)
}

// Lookup resolves id. Malformed identifiers are an InputError and absent
// ones a LookupMiss.
func (s *Store) Lookup(id string) (*types.AccountRecord, error) {
	id = strings.TrimSpace(id)
	if err := CheckID(id); err != nil {
		return nil, err
	}

	rec, ok := s.records[id]
	if !ok {
		return nil, types.NewLookupMiss(id)
	}

	return &rec, nil
}

// CheckID validates the identifier format only.
func CheckID(id string) *types.SurveyError {
	switch {
	case id == "":
		return types.NewInputError(types.FieldAccountID, "Account ID is required.")
	case len(id) > MaxIDLength:
		return types.NewInputError(types.FieldAccountID, "Account ID must be at most 10 digits.")
	case !IsDigits(id):
		return types.NewInputError(types.FieldAccountID, "Account ID must contain digits only.")
	}
	return nil
}

func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NormalizeID trims whitespace and the ".0" suffix spreadsheets leave on
// numeric cells.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasSuffix(id, ".0") && IsDigits(strings.TrimSuffix(id, ".0")) {
		id = strings.TrimSuffix(id, ".0")
	}
	return id
}
