package apiclient

import (
	"context"
	"net/http"

	"github.com/rshade/subview/internal/pagination"
	"github.com/rshade/subview/internal/subscription"
)

// Subscription fetches the root entity.
func (c *Client) Subscription(ctx context.Context, id string) (subscription.Subscription, error) {
	return getOne[subscription.Subscription](ctx, c, "get_subscription", id, "")
}

type actionsResponse struct {
	Actions subscription.ActionSet `json:"actions"`
}

// Actions fetches action availability.
func (c *Client) Actions(ctx context.Context, id string) (subscription.ActionSet, error) {
	resp, err := getOne[actionsResponse](ctx, c, "get_actions", id, "/actions")
	return resp.Actions, err
}

// Usage fetches seat usage.
func (c *Client) Usage(ctx context.Context, id string) (subscription.Usage, error) {
	return getOne[subscription.Usage](ctx, c, "get_usage", id, "/usage")
}

// Payments fetches one page of billing records.
func (c *Client) Payments(ctx context.Context, id string, req pagination.Request) (subscription.Page[subscription.BillingRecord], error) {
	return getPage[subscription.BillingRecord](ctx, c, "get_payments", id, "/billing-records", req.Page, req.PageSize)
}

// Managers fetches one page of managers.
func (c *Client) Managers(ctx context.Context, id string, req pagination.Request) (subscription.Page[subscription.SubscriptionUser], error) {
	return getPage[subscription.SubscriptionUser](ctx, c, "get_managers", id, "/managers", req.Page, req.PageSize)
}

// Domains fetches one page of domains.
func (c *Client) Domains(ctx context.Context, id string, req pagination.Request) (subscription.Page[subscription.Domain], error) {
	return getPage[subscription.Domain](ctx, c, "get_domains", id, "/domains", req.Page, req.PageSize)
}

// Users fetches one page of members.
func (c *Client) Users(ctx context.Context, id string, req pagination.Request) (subscription.Page[subscription.SubscriptionUser], error) {
	return getPage[subscription.SubscriptionUser](ctx, c, "get_users", id, "/users", req.Page, req.PageSize)
}

// PaymentMethod fetches the stored payment method.
func (c *Client) PaymentMethod(ctx context.Context, id string) (subscription.PaymentMethod, error) {
	return getOne[subscription.PaymentMethod](ctx, c, "get_payment_method", id, "/payment-method")
}

// CustomerInfo fetches the billing customer.
func (c *Client) CustomerInfo(ctx context.Context, id string) (subscription.CustomerInfo, error) {
	return getOne[subscription.CustomerInfo](ctx, c, "get_customer_info", id, "/customer")
}

// PricingTerms fetches custom pricing terms. A subscription without terms
// answers 404.
func (c *Client) PricingTerms(ctx context.Context, id string) (subscription.PricingTerms, error) {
	return getOne[subscription.PricingTerms](ctx, c, "get_pricing_terms", id, "/pricing-terms")
}

// DirectoryClient searches the user directory.
type DirectoryClient struct {
	t *transport
}

// NewDirectory returns a directory client for the service at baseURL.
func NewDirectory(baseURL string, opts ...Option) (*DirectoryClient, error) {
	t, err := newTransport(baseURL, opts)
	if err != nil {
		return nil, err
	}
	return &DirectoryClient{t: t}, nil
}

type anyOf struct {
	AnyOf []string `json:"anyOf"`
}

type searchRequest struct {
	FilterBy map[string]anyOf `json:"filterBy"`
	Fields   []string         `json:"fields,omitempty"`
	PageSize int              `json:"pageSize,omitempty"`
}

// SearchUsers returns the directory records of the users in q.UUIDs.
func (d *DirectoryClient) SearchUsers(ctx context.Context, q subscription.UserQuery) ([]subscription.DirectoryUser, error) {
	body := searchRequest{
		FilterBy: map[string]anyOf{"uuid": {AnyOf: q.UUIDs}},
		Fields:   q.Fields,
		PageSize: q.PageSize,
	}
	var out struct {
		Data []subscription.DirectoryUser `json:"data"`
	}
	if err := d.t.do(ctx, "search_users", http.MethodPost, d.t.endpoint("/users/search", nil), body, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
