package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Address is a postal shipping address. Street, city, zip code and country are required.
type Address struct {
	fullName string
	street   string
	city     string
	state    string
	zipCode  string
	country  string
	phone    string
}

// AddressOption sets an optional Address field
type AddressOption func(*Address)

// WithFullName sets the recipient name
func WithFullName(name string) AddressOption {
	return func(a *Address) {
		a.fullName = strings.TrimSpace(name)
	}
}

// WithState sets the state or province
func WithState(state string) AddressOption {
	return func(a *Address) {
		a.state = strings.TrimSpace(state)
	}
}

// WithPhone sets the contact phone number
func WithPhone(phone string) AddressOption {
	return func(a *Address) {
		a.phone = strings.TrimSpace(phone)
	}
}

// NewAddress creates a validated Address
func NewAddress(street, city, zipCode, country string, opts ...AddressOption) (Address, error) {
	a := Address{
		street:  strings.TrimSpace(street),
		city:    strings.TrimSpace(city),
		zipCode: strings.TrimSpace(zipCode),
		country: strings.TrimSpace(country),
	}
	for _, opt := range opts {
		opt(&a)
	}
	if err := a.validate(); err != nil {
		return Address{}, err
	}
	return a, nil
}

func (a Address) validate() error {
	switch {
	case a.street == "":
		return errors.New("street cannot be empty")
	case a.city == "":
		return errors.New("city cannot be empty")
	case a.zipCode == "":
		return errors.New("zip code cannot be empty")
	case a.country == "":
		return errors.New("country cannot be empty")
	case len(a.street) > 200:
		return errors.New("street cannot exceed 200 characters")
	case len(a.zipCode) > 20:
		return errors.New("zip code cannot exceed 20 characters")
	}
	return nil
}

// EmptyAddress returns the zero Address
func EmptyAddress() Address {
	return Address{}
}

func (a Address) FullName() string { return a.fullName }
func (a Address) Street() string   { return a.street }
func (a Address) City() string     { return a.city }
func (a Address) State() string    { return a.state }
func (a Address) ZipCode() string  { return a.zipCode }
func (a Address) Country() string  { return a.country }
func (a Address) Phone() string    { return a.phone }

// IsEmpty returns true if no address part is set
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// Lines returns the address formatted as printable lines
func (a Address) Lines() []string {
	lines := make([]string, 0, 4)
	if a.fullName != "" {
		lines = append(lines, a.fullName)
	}
	lines = append(lines, a.street)
	cityLine := a.city
	if a.state != "" {
		cityLine += ", " + a.state
	}
	cityLine += " " + a.zipCode
	lines = append(lines, cityLine, a.country)
	return lines
}

// String returns the single-line address
func (a Address) String() string {
	if a.IsEmpty() {
		return ""
	}
	return strings.Join(a.Lines(), ", ")
}

// AddressDTO is the wire form of Address
type AddressDTO struct {
	FullName string `json:"fullName,omitempty"`
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state,omitempty"`
	ZipCode  string `json:"zipCode"`
	Country  string `json:"country"`
	Phone    string `json:"phone,omitempty"`
}

// ToDTO converts the Address to its wire form
func (a Address) ToDTO() AddressDTO {
	return AddressDTO{
		FullName: a.fullName,
		Street:   a.street,
		City:     a.city,
		State:    a.state,
		ZipCode:  a.zipCode,
		Country:  a.country,
		Phone:    a.phone,
	}
}

// ToAddress validates the DTO and converts it to an Address
func (dto AddressDTO) ToAddress() (Address, error) {
	return NewAddress(dto.Street, dto.City, dto.ZipCode, dto.Country,
		WithFullName(dto.FullName), WithState(dto.State), WithPhone(dto.Phone))
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ToDTO())
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Address) UnmarshalJSON(data []byte) error {
	var dto AddressDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	if dto == (AddressDTO{}) {
		*a = EmptyAddress()
		return nil
	}
	addr, err := dto.ToAddress()
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// Value implements driver.Valuer; the address is stored as a JSON document
func (a Address) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (a *Address) Scan(value any) error {
	if value == nil {
		*a = EmptyAddress()
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}

	if len(data) == 0 || string(data) == "null" {
		*a = EmptyAddress()
		return nil
	}
	return json.Unmarshal(data, a)
}
