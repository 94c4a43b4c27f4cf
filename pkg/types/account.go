package types

// AccountRecord is the organizational metadata resolved for one service
// connection. Records are read-only once loaded.
type AccountRecord struct {
	ID          string `db:"id" json:"id"`
	Zone        string `db:"zone" json:"zone"`
	Circle      string `db:"circle" json:"circle"`
	Division    string `db:"division" json:"division"`
	SubDivision string `db:"sub_division" json:"subDivision"`
}
