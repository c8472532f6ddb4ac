package model

import (
	"regexp"
	"strings"
)

// UnknownCustomer is displayed in place of a customer reference that no
// longer resolves.
const UnknownCustomer = "Unknown"

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Customer is the owner of one or more repair tickets.
type Customer struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	CompanyName  string `json:"company_name"`
	ContactName  string `json:"contact_name,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	Zip          string `json:"zip,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// DisplayName returns the company name, falling back to the contact name.
func (c *Customer) DisplayName() string {
	if c.CompanyName != "" {
		return c.CompanyName
	}
	if c.ContactName != "" {
		return c.ContactName
	}
	return UnknownCustomer
}

// Slugify lowercases s and collapses every run of non-alphanumeric
// characters into a single hyphen, trimming hyphens at either end.
func Slugify(s string) string {
	slug := slugInvalid.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}
