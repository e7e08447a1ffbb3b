package model

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-]{7,20}$`)

// CustomerInfo is what the shopper fills in before checkout.
type CustomerInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address"`
	City    string `json:"city"`
	Notes   string `json:"notes,omitempty"`
}

func (c CustomerInfo) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&c.Phone, validation.Required, validation.Match(phonePattern).Error("must be a valid phone number")),
		validation.Field(&c.Email, is.EmailFormat),
		validation.Field(&c.Address, validation.Required, validation.Length(5, 255)),
		validation.Field(&c.City, validation.Required, validation.Length(2, 100)),
		validation.Field(&c.Notes, validation.Length(0, 500)),
	)
}
