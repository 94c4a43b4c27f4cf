package types

// SubmissionRecord is one appended row as stored by the database backend.
// Column order matches the shared sheet.
type SubmissionRecord struct {
	ID                string `db:"id"`
	AccountID         string `db:"account_id"`
	Remark            string `db:"remark"`
	Zone              string `db:"zone"`
	Circle            string `db:"circle"`
	Division          string `db:"division"`
	SubDivision       string `db:"sub_division"`
	Mobile            string `db:"mobile"`
	RequiredRemark    string `db:"required_remark"`
	MeterSerial       string `db:"meter_serial"`
	Reading           string `db:"reading"`
	Demand            string `db:"demand"`
	MeterImageLink    string `db:"meter_image_link"`
	PremisesImageLink string `db:"premises_image_link"`
	DocumentLink      string `db:"document_link"`
	SubmittedAt       string `db:"submitted_at"`
}
