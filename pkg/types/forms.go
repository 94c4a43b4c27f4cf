package types

// SurveyForm is the text portion of the multipart survey submission.
// Evidence arrives as multipart files keyed by the evidence field name.
type SurveyForm struct {
	RemarkCode  string `form:"remark"`
	Mobile      string `form:"mobile"`
	MeterSerial string `form:"meter_serial"`
	Reading     string `form:"reading"`
	Demand      string `form:"demand"`
}

func (f *SurveyForm) TextValues() map[FieldName]string {
	return map[FieldName]string{
		FieldMeterSerial: f.MeterSerial,
		FieldReading:     f.Reading,
		FieldDemand:      f.Demand,
	}
}

// SurveyDraft is kept in a signed cookie between attempts so evidence that
// already uploaded is not sent again after a failed submit.
type SurveyDraft struct {
	AccountID  string               `json:"accountId"`
	RemarkCode string               `json:"remark"`
	Links      map[FieldName]string `json:"links"`
}

func (d *SurveyDraft) Matches(accountID, remarkCode string) bool {
	return d != nil && d.AccountID == accountID && d.RemarkCode == remarkCode
}
