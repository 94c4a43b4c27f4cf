package types

type NavbarData struct {
	IsAuthenticated bool
	UserID          string
	UserEmail       string
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Navbar NavbarData
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type LoginPageData struct {
	BasePageData
	Message string
	Error   string
	Email   string
}

type SurveyStartPageData struct {
	BasePageData
	AccountID string
	Error     string
	NotFound  bool
}

// SurveyFieldView is one condition-dependent input as rendered on the form.
type SurveyFieldView struct {
	Name       FieldName
	Label      string
	IsEvidence bool
	Value      string
	Link       string
	Error      string
}

type SurveyFormPageData struct {
	BasePageData
	Account      *AccountRecord
	Remarks      []RemarkDefinition
	Remark       *RemarkDefinition
	RemarkCode   string
	Mobile       string
	Fields       []SurveyFieldView
	FieldErrors  map[string]string
	Error        string
	MaxUploadMB  int64
	AuthRequired bool
}

type SubmittedPageData struct {
	BasePageData
	SubmissionID string
	AccountID    string
	RemarkCode   string
}
