package face

// TrainingFace is one labelled sample for the recognizer. Name carries the
// employee number.
type TrainingFace struct {
	Name        string `json:"name"`
	ImageBase64 string `json:"imageBase64"`
}

type StoredFace struct {
	ID             int64
	EmployeeID     int64
	EmployeeNumber int64
	CompanyID      int64
	ImageBase64    string
}

type SyncResult struct {
	CompanyID int64    `json:"companyId"`
	Count     int      `json:"count"`
	Skipped   int      `json:"skipped"`
	Files     []string `json:"-"`
}
