// Package subscription defines the records exchanged with the subscription
// service and the user directory: the root Subscription entity, the per-section
// records (billing records, managers, users, domains, usage, payment method,
// customer info, pricing terms), page envelopes, and action availability.
package subscription

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is the commercial category of a subscription.
type Category string

// Subscription categories.
const (
	CategoryStandard   Category = "standard"
	CategoryEnterprise Category = "enterprise"
)

// Status is the lifecycle status of a subscription.
type Status string

// Subscription lifecycle statuses.
const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// BillingType says how a subscription is billed.
type BillingType string

// Billing types.
const (
	// BillingFree subscriptions are never billed and have no customer record.
	BillingFree BillingType = "free"
	// BillingInvoice subscriptions are invoiced manually against a customer record.
	BillingInvoice BillingType = "invoice"
	// BillingCard subscriptions are charged automatically to a stored payment method.
	BillingCard BillingType = "card"
)

// Subscription is the root entity of a detail view. A loaded value is an
// immutable snapshot; reloads replace it wholesale.
type Subscription struct {
	UUID             string            `json:"uuid"`
	Name             string            `json:"name"`
	Type             Category          `json:"type"`
	Status           Status            `json:"status"`
	BillingType      BillingType       `json:"billingType"`
	ActivationDate   *time.Time        `json:"activationDate,omitempty"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	CustomPricing    bool              `json:"customPricing"`
	UsageTracked     bool              `json:"usageTracked"`
	CustomAttributes map[string]string `json:"customAttributes,omitempty"`
}

// IsEnterprise reports whether the subscription is in the enterprise category.
func (s Subscription) IsEnterprise() bool {
	return s.Type == CategoryEnterprise
}

// BillingRecord is one billing period of a subscription.
type BillingRecord struct {
	UUID        string          `json:"uuid"`
	PeriodStart time.Time       `json:"periodStart"`
	PeriodEnd   time.Time       `json:"periodEnd"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	IsCurrent   bool            `json:"isCurrent"`
	IsUpcoming  bool            `json:"isUpcoming"`
}

// JobInfo is supplementary directory data about a user.
type JobInfo struct {
	Title   string `json:"title"`
	Company string `json:"company"`
}

// SubscriptionUser is a manager or member of a subscription. Email and JobInfo
// are filled in from the directory when enrichment succeeds.
//
//nolint:revive // SubscriptionUser mirrors the service's resource name.
type SubscriptionUser struct {
	UUID     string    `json:"uuid"`
	UserUUID string    `json:"userUUID"`
	Role     string    `json:"role"`
	Name     string    `json:"name"`
	AddedAt  time.Time `json:"addedAt"`
	Email    string    `json:"email,omitempty"`
	JobInfo  *JobInfo  `json:"jobInfo,omitempty"`
}

// Enriched reports whether directory data has been merged into the record.
func (u SubscriptionUser) Enriched() bool {
	return u.Email != "" || u.JobInfo != nil
}

// DirectoryUser is a user record returned by the directory search.
type DirectoryUser struct {
	UUID    string   `json:"uuid"`
	Email   string   `json:"email"`
	JobInfo *JobInfo `json:"jobInfo,omitempty"`
}

// Domain is an email domain attached to an enterprise subscription.
type Domain struct {
	UUID     string    `json:"uuid"`
	Name     string    `json:"domain"`
	Verified bool      `json:"verified"`
	AddedAt  time.Time `json:"addedAt"`
}

// Usage summarises seat consumption for the current term.
type Usage struct {
	Seats        int             `json:"seats"`
	ActiveUsers  int             `json:"activeUsers"`
	RenewalIndex decimal.Decimal `json:"renewalIndex"`
	CalculatedAt time.Time       `json:"calculatedAt"`
}

// PaymentMethod is the stored payment instrument of a card-billed subscription.
type PaymentMethod struct {
	Type     string `json:"type"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"expMonth"`
	ExpYear  int    `json:"expYear"`
}

// Address is a postal billing address.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// CustomerInfo is the billing customer of a subscription.
type CustomerInfo struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Address Address `json:"address"`
}

// PricingTerms are negotiated pricing terms for a subscription.
type PricingTerms struct {
	UUID       string          `json:"uuid"`
	Terms      string          `json:"terms"`
	Discount   decimal.Decimal `json:"discount"`
	ValidUntil *time.Time      `json:"validUntil,omitempty"`
}

// Page is one page of a paginated collection as returned by the service.
type Page[T any] struct {
	Data        []T `json:"data"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalCount  int `json:"totalCount"`
	TotalPages  int `json:"totalPages"`
}

// Directory fields requested when enriching managers and users.
const (
	FieldEmail   = "email"
	FieldJobInfo = "jobInfo"
)

// UserQuery is a directory search for the users whose UUID is any of UUIDs.
type UserQuery struct {
	UUIDs    []string
	Fields   []string
	PageSize int
}
