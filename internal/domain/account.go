package domain

import (
	"strings"
	"time"
)

// Account represents a marketplace identity and commerce record, keyed by
// email. Clients and service providers share the same shape; providers carry
// the payment linkage fields and a service catalog.
type Account struct {
	Email               string          `json:"email"`
	PasswordHash        string          `json:"-"`
	Location            string          `json:"location,omitempty"`
	FirstName           string          `json:"first_name,omitempty"`
	LastName            string          `json:"last_name,omitempty"`
	PhoneNumber         string          `json:"phone_number,omitempty"`
	ProfileImage        string          `json:"profile_image,omitempty"`
	FavoriteBarberEmail string          `json:"favorite_barber_email,omitempty"`
	IsServiceProvider   bool            `json:"is_service_provider"`
	PaymentAccountID    string          `json:"payment_account_id,omitempty"`
	PaymentVerified     bool            `json:"payment_verified"`
	BlockedEmails       []string        `json:"blocked_emails"`
	ServiceCatalog      []Service       `json:"service_catalog"`
	PaymentHistory      []PaymentRecord `json:"payment_history"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// Service is a sellable entry in a provider's catalog. PriceID is assigned by
// the payment provider and is never generated locally.
type Service struct {
	Name     string  `json:"name"`
	Cost     float64 `json:"cost"`
	Duration int     `json:"duration"`
	PriceID  string  `json:"price_id"`
}

// PaymentRecord is one completed transaction in an account's payment history.
type PaymentRecord struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"`
	Amount       float64   `json:"amount"`
	ServiceNames []string  `json:"service_names"`
}

// NormalizeEmail lowercases and trims an email for use as the account key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Sanitize returns a shallow copy of the account with secret attributes
// removed. Every account value leaving the service layer must pass through
// here; the json:"-" tag on PasswordHash is a second line of defense, not a
// substitute.
func (a *Account) Sanitize() *Account {
	if a == nil {
		return nil
	}
	cp := *a
	cp.PasswordHash = ""
	return &cp
}

// IsPaymentLinked reports whether a payment-provider sub-account has been
// created for this account.
func (a *Account) IsPaymentLinked() bool {
	return a.PaymentAccountID != ""
}
