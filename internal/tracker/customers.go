package tracker

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
)

// CustomerInput holds the fields accepted when adding a customer.
type CustomerInput struct {
	CompanyName  string `json:"company_name" validate:"required"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone string `json:"contact_phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip"`
	Notes        string `json:"notes"`
}

// CustomerPatch edits a customer. Nil fields are left unchanged.
type CustomerPatch struct {
	CompanyName  *string `json:"company_name,omitempty"`
	ContactName  *string `json:"contact_name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	Address      *string `json:"address,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	Zip          *string `json:"zip,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

func (t *Tracker) customer(ref string) (*model.Customer, error) {
	ref = strings.TrimSpace(ref)
	for _, c := range t.customers {
		if c.ID == ref || strings.EqualFold(c.Slug, ref) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("customer %s: %w", ref, ErrNotFound)
}

// companyTaken reports whether another customer already uses name,
// ignoring case.
func (t *Tracker) companyTaken(name, exceptID string) bool {
	for _, c := range t.customers {
		if c.ID != exceptID && strings.EqualFold(strings.TrimSpace(c.CompanyName), name) {
			return true
		}
	}
	return false
}

// uniqueSlug slugifies name, appending -2, -3, ... on collision.
func (t *Tracker) uniqueSlug(name, exceptID string) string {
	base := model.Slugify(name)
	if base == "" {
		base = "customer"
	}
	taken := func(slug string) bool {
		return slices.ContainsFunc(t.customers, func(c *model.Customer) bool {
			return c.ID != exceptID && c.Slug == slug
		})
	}
	slug := base
	for n := 2; taken(slug); n++ {
		slug = base + "-" + strconv.Itoa(n)
	}
	return slug
}

// AddCustomer creates a customer. Company names are unique, ignoring case.
func (t *Tracker) AddCustomer(in CustomerInput) (*model.Customer, error) {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.ContactEmail = strings.TrimSpace(in.ContactEmail)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if t.companyTaken(in.CompanyName, "") {
		return nil, fmt.Errorf("%q: %w", in.CompanyName, ErrDuplicateCustomer)
	}

	c := &model.Customer{
		ID:           uuid.NewString(),
		Slug:         t.uniqueSlug(in.CompanyName, ""),
		CompanyName:  in.CompanyName,
		ContactName:  strings.TrimSpace(in.ContactName),
		ContactEmail: in.ContactEmail,
		ContactPhone: strings.TrimSpace(in.ContactPhone),
		Address:      strings.TrimSpace(in.Address),
		City:         strings.TrimSpace(in.City),
		State:        strings.TrimSpace(in.State),
		Zip:          strings.TrimSpace(in.Zip),
		Notes:        in.Notes,
	}
	t.customers = append(t.customers, c)
	t.commit("customer added", "customer", c.ID, "slug", c.Slug)
	cp := *c
	return &cp, nil
}

// UpdateCustomer edits a customer found by ID or slug. Renaming the company
// regenerates the slug.
func (t *Tracker) UpdateCustomer(ref string, patch CustomerPatch) (*model.Customer, error) {
	c, err := t.customer(ref)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	if patch.CompanyName != nil {
		name := strings.TrimSpace(*patch.CompanyName)
		if name == "" {
			return nil, invalid("company_name", "company_name is required")
		}
		if t.companyTaken(name, c.ID) {
			return nil, fmt.Errorf("%q: %w", name, ErrDuplicateCustomer)
		}
		if name != c.CompanyName {
			c.CompanyName = name
			c.Slug = t.uniqueSlug(name, c.ID)
		}
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&c.ContactName, patch.ContactName)
	set(&c.ContactEmail, patch.ContactEmail)
	set(&c.ContactPhone, patch.ContactPhone)
	set(&c.Address, patch.Address)
	set(&c.City, patch.City)
	set(&c.State, patch.State)
	set(&c.Zip, patch.Zip)
	if patch.Notes != nil {
		c.Notes = *patch.Notes
	}

	t.commit("customer updated", "customer", c.ID)
	cp := *c
	return &cp, nil
}

// GetCustomer returns a customer by ID or slug.
func (t *Tracker) GetCustomer(ref string) (*model.Customer, error) {
	c, err := t.customer(ref)
	if err != nil {
		return nil, err
	}
	cp := *c
	return &cp, nil
}

// ListCustomers returns every customer ordered by company name.
func (t *Tracker) ListCustomers() []*model.Customer {
	out := cloneCustomers(t.customers)
	slices.SortStableFunc(out, func(a, b *model.Customer) int {
		return strings.Compare(strings.ToLower(a.CompanyName), strings.ToLower(b.CompanyName))
	})
	return out
}

// DeleteCustomer removes a customer. Tickets keep their reference and
// display the customer as unknown.
func (t *Tracker) DeleteCustomer(ref string) error {
	c, err := t.customer(ref)
	if err != nil {
		return err
	}
	t.customers = slices.DeleteFunc(t.customers, func(x *model.Customer) bool { return x.ID == c.ID })
	t.commit("customer deleted", "customer", c.ID)
	return nil
}

// CustomerTickets splits a customer's tickets into active and completed.
func (t *Tracker) CustomerTickets(ref string) (active, completed []*model.Ticket, err error) {
	c, err := t.customer(ref)
	if err != nil {
		return nil, nil, err
	}
	for _, tk := range t.tickets {
		if tk.CustomerID != c.ID {
			continue
		}
		if tk.IsCompleted() {
			completed = append(completed, tk.Clone())
		} else {
			active = append(active, tk.Clone())
		}
	}
	return active, completed, nil
}

// CustomerName returns the display name for a customer reference, or
// "Unknown" when it no longer resolves.
func (t *Tracker) CustomerName(id string) string {
	c, err := t.customer(id)
	if err != nil {
		return model.UnknownCustomer
	}
	return c.DisplayName()
}
