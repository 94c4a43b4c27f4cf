package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"60"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone        string `envconfig:"TIME_ZONE" default:"Asia/Kolkata"`

	// Reference table
	ReferenceSource string `envconfig:"REFERENCE_SOURCE" default:"file"` // file | postgres
	ReferencePath   string `envconfig:"REFERENCE_PATH"`
	ReferenceSheet  string `envconfig:"REFERENCE_SHEET"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Google service account with the spreadsheets and drive scopes
	GoogleCredentialsFile string `envconfig:"GOOGLE_CREDENTIALS_FILE"`

	// Record appender
	RecordBackend string `envconfig:"RECORD_BACKEND" default:"sheets"` // sheets | postgres
	SpreadsheetID string `envconfig:"SPREADSHEET_ID"`
	SheetName     string `envconfig:"SHEET_NAME" default:"Sheet1"`

	// Evidence storage
	EvidenceBackend  string `envconfig:"EVIDENCE_BACKEND" default:"drive"` // drive | s3
	DriveFolderID    string `envconfig:"DRIVE_FOLDER_ID"`
	DriveSharePublic bool   `envconfig:"DRIVE_SHARE_PUBLIC" default:"true"`
	S3BucketName     string `envconfig:"S3_BUCKET_NAME"`
	S3KeyPrefix      string `envconfig:"S3_KEY_PREFIX" default:"evidence"`
	S3PublicBaseURL  string `envconfig:"S3_PUBLIC_BASE_URL"`
	MaxUploadMB      int64  `envconfig:"MAX_UPLOAD_MB" default:"10"`

	// Cognito Auth, disabled when the client id is empty
	CognitoClientID  string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL string `envconfig:"COGNITO_ISSUER_URL"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
}

const (
	ReferenceSourceFile     = "file"
	ReferenceSourcePostgres = "postgres"

	RecordBackendSheets   = "sheets"
	RecordBackendPostgres = "postgres"

	EvidenceBackendDrive = "drive"
	EvidenceBackendS3    = "s3"
)

func (c *Config) AuthEnabled() bool {
	return c.CognitoClientID != ""
}
