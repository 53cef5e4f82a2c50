package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mchmarny/propensity/pkg/score"
	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used to parse phone numbers without a country code.
const DefaultRegion = "IN"

var (
	ErrMissingCustomerID = errors.New("customer id required")
	ErrInvalidPhone      = errors.New("invalid phone number")
)

// Profile is the customer identity shown on the dashboard together with the
// record used for scoring.
type Profile struct {
	Name        string         `json:"name" yaml:"name"`
	CustomerID  string         `json:"customer_id" yaml:"customerId"`
	Email       string         `json:"email" yaml:"email"`
	Phone       string         `json:"phone" yaml:"phone"`
	Address     string         `json:"address" yaml:"address"`
	Branch      string         `json:"branch" yaml:"branch"`
	AccountType string         `json:"account_type" yaml:"accountType"`
	LastLogin   string         `json:"last_login" yaml:"lastLogin"`
	Customer    score.Customer `json:"customer" yaml:"customer"`
}

// Validate checks the identity fields. The scoring record is not checked here.
func (p *Profile) Validate() error {
	_, err := p.check()
	return err
}

// check validates the identity fields and returns the phone in E.164 form,
// empty when the profile has no phone.
func (p *Profile) check() (string, error) {
	if p == nil {
		return "", errors.New("profile required")
	}
	if strings.TrimSpace(p.CustomerID) == "" {
		return "", ErrMissingCustomerID
	}
	if p.Phone == "" {
		return "", nil
	}
	return FormatPhone(p.Phone)
}

// FormatPhone parses a phone number and returns it in E.164 form.
func FormatPhone(phone string) (string, error) {
	num, err := phonenumbers.Parse(phone, DefaultRegion)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidPhone, phone, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPhone, phone)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// SampleProfile returns the demo customer shown on the dashboard.
func SampleProfile() *Profile {
	return &Profile{
		Name:        "Vikaram Bose",
		CustomerID:  "SBI123456789",
		Email:       "vikarambose@example.com",
		Phone:       "+91 98765 43210",
		Address:     "123 Main Street, Chennai, Tamil Nadu",
		Branch:      "Chennai Main Branch",
		AccountType: "Savings Account",
		LastLogin:   "2024-03-15 10:30 AM",
		Customer: score.Customer{
			Age:               36,
			AnnualIncome:      1200970,
			Expenses:          979021,
			CreditScore:       544,
			WebsiteVisits:     48,
			ActivePolicies:    5,
			MaturedPolicies:   0,
			EmailResponseRate: 0.9966,
			AppInteractions:   28,
			FeedbackScore:     9,
		},
	}
}
