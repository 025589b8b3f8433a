package models

// Subject is one analysis unit: a company and its normalized domain.
type Subject struct {
	Name    string `json:"company_name"`
	Website string `json:"website"`
	Domain  string `json:"domain"`
}
