package session

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rshade/subview/internal/pagination"
	"github.com/rshade/subview/internal/subscription"
)

const testID = "5f0c6d3e-2a51-4d8e-9b7a-0c1f2e3d4a5b"

type call struct {
	method string
	req    pagination.Request
}

// fakeBackend records every call. Unset hooks return empty values; paged
// hooks default to an empty page echoing the request.
type fakeBackend struct {
	mu    sync.Mutex
	calls []call

	subscription  func(ctx context.Context, n int) (subscription.Subscription, error)
	actions       func(ctx context.Context) (subscription.ActionSet, error)
	usage         func(ctx context.Context) (subscription.Usage, error)
	payments      func(ctx context.Context, req pagination.Request) (subscription.Page[subscription.BillingRecord], error)
	managers      func(ctx context.Context, req pagination.Request) (subscription.Page[subscription.SubscriptionUser], error)
	domains       func(ctx context.Context, req pagination.Request) (subscription.Page[subscription.Domain], error)
	users         func(ctx context.Context, req pagination.Request) (subscription.Page[subscription.SubscriptionUser], error)
	paymentMethod func(ctx context.Context) (subscription.PaymentMethod, error)
	customerInfo  func(ctx context.Context) (subscription.CustomerInfo, error)
	pricingTerms  func(ctx context.Context) (subscription.PricingTerms, error)
}

func newFakeBackend(sub subscription.Subscription) *fakeBackend {
	return &fakeBackend{
		subscription: func(context.Context, int) (subscription.Subscription, error) { return sub, nil },
	}
}

func (f *fakeBackend) record(method string, req pagination.Request) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{method: method, req: req})
	n := 0
	for _, c := range f.calls {
		if c.method == method {
			n++
		}
	}
	return n
}

func (f *fakeBackend) callsTo(method string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeBackend) count(method string) int {
	return len(f.callsTo(method))
}

func (f *fakeBackend) order() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.method)
	}
	return out
}

func (f *fakeBackend) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func emptyPage[T any](req pagination.Request) subscription.Page[T] {
	return subscription.Page[T]{CurrentPage: req.Page, PageSize: req.PageSize}
}

func (f *fakeBackend) Subscription(ctx context.Context, _ string) (subscription.Subscription, error) {
	n := f.record("subscription", pagination.Request{})
	return f.subscription(ctx, n)
}

func (f *fakeBackend) Actions(ctx context.Context, _ string) (subscription.ActionSet, error) {
	f.record("actions", pagination.Request{})
	if f.actions == nil {
		return subscription.ActionSet{}, nil
	}
	return f.actions(ctx)
}

func (f *fakeBackend) Usage(ctx context.Context, _ string) (subscription.Usage, error) {
	f.record("usage", pagination.Request{})
	if f.usage == nil {
		return subscription.Usage{Seats: 10, ActiveUsers: 4}, nil
	}
	return f.usage(ctx)
}

func (f *fakeBackend) Payments(ctx context.Context, _ string, req pagination.Request) (subscription.Page[subscription.BillingRecord], error) {
	f.record("payments", req)
	if f.payments == nil {
		return emptyPage[subscription.BillingRecord](req), nil
	}
	return f.payments(ctx, req)
}

func (f *fakeBackend) Managers(ctx context.Context, _ string, req pagination.Request) (subscription.Page[subscription.SubscriptionUser], error) {
	f.record("managers", req)
	if f.managers == nil {
		return emptyPage[subscription.SubscriptionUser](req), nil
	}
	return f.managers(ctx, req)
}

func (f *fakeBackend) Domains(ctx context.Context, _ string, req pagination.Request) (subscription.Page[subscription.Domain], error) {
	f.record("domains", req)
	if f.domains == nil {
		return emptyPage[subscription.Domain](req), nil
	}
	return f.domains(ctx, req)
}

func (f *fakeBackend) Users(ctx context.Context, _ string, req pagination.Request) (subscription.Page[subscription.SubscriptionUser], error) {
	f.record("users", req)
	if f.users == nil {
		return emptyPage[subscription.SubscriptionUser](req), nil
	}
	return f.users(ctx, req)
}

func (f *fakeBackend) PaymentMethod(ctx context.Context, _ string) (subscription.PaymentMethod, error) {
	f.record("paymentMethod", pagination.Request{})
	if f.paymentMethod == nil {
		return subscription.PaymentMethod{Type: "card", Brand: "visa", Last4: "4242"}, nil
	}
	return f.paymentMethod(ctx)
}

func (f *fakeBackend) CustomerInfo(ctx context.Context, _ string) (subscription.CustomerInfo, error) {
	f.record("customerInfo", pagination.Request{})
	if f.customerInfo == nil {
		return subscription.CustomerInfo{Name: "Acme"}, nil
	}
	return f.customerInfo(ctx)
}

func (f *fakeBackend) PricingTerms(ctx context.Context, _ string) (subscription.PricingTerms, error) {
	f.record("pricingTerms", pagination.Request{})
	if f.pricingTerms == nil {
		return subscription.PricingTerms{UUID: "terms-1", Terms: "net 30"}, nil
	}
	return f.pricingTerms(ctx)
}

type fakeDirectory struct {
	mu      sync.Mutex
	queries []subscription.UserQuery
	users   map[string]subscription.DirectoryUser
	err     error
}

func (d *fakeDirectory) SearchUsers(_ context.Context, q subscription.UserQuery) ([]subscription.DirectoryUser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queries = append(d.queries, q)
	if d.err != nil {
		return nil, d.err
	}
	var out []subscription.DirectoryUser
	for _, id := range q.UUIDs {
		if u, ok := d.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *fakeDirectory) Queries() []subscription.UserQuery {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]subscription.UserQuery(nil), d.queries...)
}

func enterprise() subscription.Subscription {
	return subscription.Subscription{
		UUID:        testID,
		Name:        "Acme Enterprise",
		Type:        subscription.CategoryEnterprise,
		Status:      subscription.StatusActive,
		BillingType: subscription.BillingCard,
		UpdatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func standard() subscription.Subscription {
	sub := enterprise()
	sub.Name = "Acme Standard"
	sub.Type = subscription.CategoryStandard
	sub.BillingType = subscription.BillingInvoice
	return sub
}

func billingRecord(id string, current, upcoming bool) subscription.BillingRecord {
	return subscription.BillingRecord{
		UUID:       id,
		Amount:     decimal.NewFromInt(100),
		Currency:   "USD",
		Status:     "paid",
		IsCurrent:  current,
		IsUpcoming: upcoming,
	}
}
