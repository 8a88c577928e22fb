package model

// Address is a saved delivery address.
type Address struct {
	ID        int64  `json:"id"`
	CityID    int64  `json:"city_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Street    string `json:"street,omitempty"`
	Building  string `json:"building,omitempty"`
	Details   string `json:"details,omitempty"`
	IsDefault bool   `json:"is_default"`
}

// AddressRequest represents the request payload for creating or updating an address.
type AddressRequest struct {
	CityID    int64  `json:"city_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Street    string `json:"street,omitempty"`
	Building  string `json:"building,omitempty"`
	Details   string `json:"details,omitempty"`
	IsDefault bool   `json:"is_default"`
}

// Validate checks the fields the backend always requires.
func (r *AddressRequest) Validate() error {
	if r.CityID <= 0 {
		return NewValidationError("city_id", "city is required")
	}
	if r.Name == "" {
		return NewValidationError("name", "name is required")
	}
	return nil
}
