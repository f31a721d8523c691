package employee

type Employee struct {
	ID             int64  `json:"id"`
	CompanyID      int64  `json:"companyId"`
	EmployeeNumber int64  `json:"employeeNumber"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	PinCode        int64  `json:"-"`
	Active         bool   `json:"active"`
}

func (e Employee) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// Identity is what a successful PIN check reveals to the kiosk.
type Identity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
