package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "fs_access_token"
	COOKIE_REDIRECT_NAME     = "fs_redirect"
	COOKIE_SURVEY_DRAFT_NAME = "fs_survey_draft"
)
