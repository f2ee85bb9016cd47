package session

import (
	"time"

	"github.com/rshade/subview/internal/billingstore"
	"github.com/rshade/subview/internal/pagination"
	"github.com/rshade/subview/internal/subscription"
)

// SectionView is the published state of a paginated section. Items and
// Pagination always come from the same response.
type SectionView[T any] struct {
	Items      []T              `json:"items"`
	Pagination pagination.State `json:"pagination"`
	IsLoading  bool             `json:"isLoading"`
	Admitted   bool             `json:"admitted"`
}

// SlotView is the published state of a single-value section.
type SlotView[T any] struct {
	Value     *T   `json:"value,omitempty"`
	IsLoading bool `json:"isLoading"`
	Admitted  bool `json:"admitted"`
}

// Activation describes whether a draft subscription can be activated.
type Activation struct {
	Date    *time.Time                 `json:"date,omitempty"`
	Allowed bool                       `json:"allowed"`
	Errors  []subscription.ActionError `json:"errors,omitempty"`
}

// PollState describes the activation poll.
type PollState struct {
	// Armed is true from scheduling until the poll stops.
	Armed bool `json:"armed"`
	// Active is true once the activation time has passed and ticks run.
	Active bool      `json:"active"`
	ID     string    `json:"id,omitempty"`
	At     time.Time `json:"at,omitzero"`
}

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	ID          string                     `json:"id"`
	Variant     Variant                    `json:"variant"`
	Status      Status                     `json:"status"`
	IsLoaded    bool                       `json:"isLoaded"`
	Entity      *subscription.Subscription `json:"entity,omitempty"`
	Admitted    Set                        `json:"admitted"`
	Visible     Set                        `json:"visible"`
	ReloadCount int                        `json:"reloadCount"`

	Payments SectionView[subscription.BillingRecord]    `json:"payments"`
	Managers SectionView[subscription.SubscriptionUser] `json:"managers"`
	Domains  SectionView[subscription.Domain]           `json:"domains"`
	Users    SectionView[subscription.SubscriptionUser] `json:"users"`

	Usage         SlotView[subscription.Usage]         `json:"usage"`
	PaymentMethod SlotView[subscription.PaymentMethod] `json:"paymentMethod"`
	CustomerInfo  SlotView[subscription.CustomerInfo]  `json:"customerInfo"`
	PricingTerms  SlotView[subscription.PricingTerms]  `json:"pricingTerms"`

	// Billing is the shared current/upcoming billing record pair as stored
	// for this subscription.
	Billing    billingstore.Slots `json:"billing"`
	Activation *Activation        `json:"activation,omitempty"`
	Poll       PollState          `json:"poll"`
}

// Loading reports whether the root load or any section request is in flight.
func (s Snapshot) Loading() bool {
	return s.Status == StatusLoading ||
		s.Payments.IsLoading || s.Managers.IsLoading || s.Domains.IsLoading || s.Users.IsLoading ||
		s.Usage.IsLoading || s.PaymentMethod.IsLoading || s.CustomerInfo.IsLoading || s.PricingTerms.IsLoading
}

// SectionLoading reports the loading flag of one section.
func (s Snapshot) SectionLoading(sec Section) bool {
	switch sec {
	case SectionPayments:
		return s.Payments.IsLoading
	case SectionManagers:
		return s.Managers.IsLoading
	case SectionDomains:
		return s.Domains.IsLoading
	case SectionUsers:
		return s.Users.IsLoading
	case SectionUsage:
		return s.Usage.IsLoading
	case SectionPaymentMethod:
		return s.PaymentMethod.IsLoading
	case SectionCustomerInfo:
		return s.CustomerInfo.IsLoading
	case SectionPricingTerms:
		return s.PricingTerms.IsLoading
	default:
		return false
	}
}

// Pagination returns the pagination of a paginated section.
func (s Snapshot) Pagination(sec Section) (pagination.State, bool) {
	switch sec {
	case SectionPayments:
		return s.Payments.Pagination, true
	case SectionManagers:
		return s.Managers.Pagination, true
	case SectionDomains:
		return s.Domains.Pagination, true
	case SectionUsers:
		return s.Users.Pagination, true
	default:
		return pagination.State{}, false
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:          s.id,
		Variant:     s.variant,
		Status:      s.status,
		IsLoaded:    !s.rootLoading,
		Admitted:    s.admitted,
		ReloadCount: s.reloadCount,

		Payments: s.payments.view(s.admitted.Has(SectionPayments)),
		Managers: s.managers.view(s.admitted.Has(SectionManagers)),
		Domains:  s.domains.view(s.admitted.Has(SectionDomains)),
		Users:    s.users.view(s.admitted.Has(SectionUsers)),

		Usage:         s.usage.view(s.admitted.Has(SectionUsage)),
		PaymentMethod: s.paymentMethod.view(s.admitted.Has(SectionPaymentMethod)),
		CustomerInfo:  s.customerInfo.view(s.admitted.Has(SectionCustomerInfo)),
		PricingTerms:  s.pricingTerms.view(s.admitted.Has(SectionPricingTerms)),
	}

	if s.entity != nil {
		ent := *s.entity
		snap.Entity = &ent
		snap.Visible = Visible(s.variant, ent)
		if ent.Status == subscription.StatusDraft && s.actions != nil {
			snap.Activation = &Activation{
				Date:    ent.ActivationDate,
				Allowed: s.actions.Allowed(subscription.ActionActivate),
				Errors:  append([]subscription.ActionError(nil), s.actions.Errors(subscription.ActionActivate)...),
			}
		}
	}
	if s.store != nil && s.id != "" {
		snap.Billing, _ = s.store.Get(s.id)
	}
	if p := s.poll; p != nil {
		snap.Poll = PollState{Armed: true, Active: p.polling, ID: p.id.String(), At: p.at}
	}
	return snap
}
