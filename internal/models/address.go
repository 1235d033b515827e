package models

type Address struct {
	Name        string `json:"name"`
	CompanyName string `json:"company_name,omitempty"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Country     string `json:"country"` // ISO-2, bv. "NL"
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
}
