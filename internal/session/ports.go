// Package session orchestrates the data of one subscription detail view.
//
// A Session loads the root subscription, decides from it which sections to
// fetch, fetches them in stages, re-fetches single sections on pagination
// changes, keeps the shared billing slots in step with the payments section,
// and, for the unified variant, polls around a scheduled activation and
// reloads when the subscription changes server-side.
//
// Every load belongs to an epoch. Open, Reload and Close start a new one and
// cancel the old one's context; results arriving for a stale epoch, or for a
// section request that has since been superseded, are dropped.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rshade/subview/internal/pagination"
	"github.com/rshade/subview/internal/subscription"
)

// Variant selects the branching of a session.
type Variant string

// Variants.
const (
	// VariantProfile is the self-service view of a subscription.
	VariantProfile Variant = "profile"
	// VariantUnified is the administrative view with enrichment, customer
	// info, pricing terms, shared billing slots and activation polling.
	VariantUnified Variant = "unified"
)

// ParseVariant validates a variant name.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantProfile, VariantUnified:
		return Variant(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// Status is the top-level state of a session.
type Status string

// Session statuses.
const (
	StatusIdle        Status = "idle"
	StatusLoading     Status = "loading"
	StatusReady       Status = "ready"
	StatusNotFound    Status = "notFound"
	StatusServerError Status = "serverError"
)

// Errors returned by Session methods.
var (
	ErrUnknownVariant = errors.New("unknown session variant")
	ErrInvalidID      = errors.New("invalid subscription identifier")
	ErrNotOpen        = errors.New("session is not open")
	ErrNotPaginated   = errors.New("section is not paginated")
	ErrNoBackend      = errors.New("session requires a backend")
)

// ClassifyRootError maps a failed root load to a status: 404 and 403 mean the
// subscription is not visible to the caller; anything else, including
// transport failures, is a server error.
func ClassifyRootError(err error) Status {
	if subscription.IsHidden(err) {
		return StatusNotFound
	}
	return StatusServerError
}

// Backend is the subscription service. Paged calls receive the pagination
// active when the request was issued.
type Backend interface {
	Subscription(ctx context.Context, id string) (subscription.Subscription, error)
	Actions(ctx context.Context, id string) (subscription.ActionSet, error)
	Usage(ctx context.Context, id string) (subscription.Usage, error)
	Payments(ctx context.Context, id string, req pagination.Request) (subscription.Page[subscription.BillingRecord], error)
	Managers(ctx context.Context, id string, req pagination.Request) (subscription.Page[subscription.SubscriptionUser], error)
	Domains(ctx context.Context, id string, req pagination.Request) (subscription.Page[subscription.Domain], error)
	Users(ctx context.Context, id string, req pagination.Request) (subscription.Page[subscription.SubscriptionUser], error)
	PaymentMethod(ctx context.Context, id string) (subscription.PaymentMethod, error)
	CustomerInfo(ctx context.Context, id string) (subscription.CustomerInfo, error)
	PricingTerms(ctx context.Context, id string) (subscription.PricingTerms, error)
}

// Directory looks up supplementary user data.
type Directory interface {
	SearchUsers(ctx context.Context, q subscription.UserQuery) ([]subscription.DirectoryUser, error)
}
