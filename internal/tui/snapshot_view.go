package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/subview/internal/pagination"
	"github.com/rshade/subview/internal/session"
	"github.com/rshade/subview/internal/subscription"
)

// RenderOptions control RenderSnapshot.
type RenderOptions struct {
	// Focus highlights one paginated section. Zero value with HasFocus false
	// highlights nothing.
	Focus    session.Section
	HasFocus bool
	// Spinner replaces the loading marker of sections in flight.
	Spinner string
	Width   int
}

// RenderSnapshot renders every visible section of snap in display order.
func RenderSnapshot(snap session.Snapshot, opts RenderOptions) string {
	out := renderSnapshot(snap, opts)
	if opts.Width > 0 {
		out = lipgloss.NewStyle().MaxWidth(opts.Width).Render(out)
	}
	return out
}

func renderSnapshot(snap session.Snapshot, opts RenderOptions) string {
	var sb strings.Builder
	sb.WriteString(renderHeader(snap))

	switch snap.Status {
	case session.StatusNotFound:
		sb.WriteString("\n" + ErrorStyle.Render("Subscription not found") + "\n")
		return sb.String()
	case session.StatusServerError:
		sb.WriteString("\n" + ErrorStyle.Render("The subscription service failed to respond") + "\n")
		if snap.Entity == nil {
			return sb.String()
		}
	case session.StatusIdle, session.StatusLoading, session.StatusReady:
	}
	if snap.Entity == nil {
		return sb.String()
	}

	for _, sec := range snap.Visible.Sections() {
		title := sec.Label()
		if sec == session.SectionPayments {
			title = "billing records"
		}
		style := SectionStyle
		if opts.HasFocus && opts.Focus == sec {
			style = FocusedSectionStyle
		}
		heading := style.Render(strings.ToUpper(title))
		if snap.SectionLoading(sec) {
			marker := opts.Spinner
			if marker == "" {
				marker = "loading..."
			}
			heading += " " + MutedStyle.Render(marker)
		}
		sb.WriteString(heading + "\n")
		sb.WriteString(renderSection(snap, sec))
		if p, ok := snap.Pagination(sec); ok {
			sb.WriteString(renderPagination(p) + "\n")
		}
	}
	return sb.String()
}

func renderHeader(snap session.Snapshot) string {
	var sb strings.Builder
	name := snap.ID
	if snap.Entity != nil && snap.Entity.Name != "" {
		name = snap.Entity.Name
	}
	sb.WriteString(TitleStyle.Render(name) + "\n")

	if e := snap.Entity; e != nil {
		sb.WriteString(field("Status", string(e.Status)))
		sb.WriteString(field("Category", string(e.Type)))
		sb.WriteString(field("Billing", string(e.BillingType)))
		sb.WriteString(field("Updated", e.UpdatedAt.Format("2006-01-02 15:04:05")))
	}
	if snap.Status == session.StatusLoading {
		sb.WriteString(MutedStyle.Render("refreshing...") + "\n")
	}

	if a := snap.Activation; a != nil {
		date := "-"
		if a.Date != nil {
			date = FormatDate(*a.Date)
		}
		switch {
		case a.Allowed:
			sb.WriteString(OKStyle.Render("Activation scheduled for "+date) + "\n")
		default:
			sb.WriteString(WarningStyle.Render("Activation blocked") + "\n")
		}
		for _, e := range a.Errors {
			sb.WriteString(MutedStyle.Render("  "+e.Code+": "+e.Message) + "\n")
		}
	}

	switch {
	case snap.Poll.Active:
		sb.WriteString(OKStyle.Render(IconPolling+" watching for activation") + "\n")
	case snap.Poll.Armed:
		sb.WriteString(LabelStyle.Render(IconScheduled+" poll starts at "+snap.Poll.At.Format("2006-01-02 15:04:05")) + "\n")
	}

	if b := snap.Billing; !b.Empty() {
		if b.Current != nil {
			sb.WriteString(field("Current period", billingLine(*b.Current)))
		}
		if b.Upcoming != nil {
			sb.WriteString(field("Upcoming period", billingLine(*b.Upcoming)))
		}
	}
	return sb.String()
}

func field(label, value string) string {
	return LabelStyle.Render(label+": ") + ValueStyle.Render(value) + "\n"
}

func billingLine(r subscription.BillingRecord) string {
	return fmt.Sprintf("%s to %s  %s", FormatDate(r.PeriodStart), FormatDate(r.PeriodEnd), FormatMoney(r.Amount, r.Currency))
}

func renderSection(snap session.Snapshot, sec session.Section) string {
	switch sec {
	case session.SectionUsage:
		u := snap.Usage.Value
		if u == nil {
			return empty("No usage data")
		}
		return field("Seats", FormatCount(u.Seats)) +
			field("Active users", FormatCount(u.ActiveUsers)) +
			field("Calculated", FormatDate(u.CalculatedAt))
	case session.SectionPricingTerms:
		pt := snap.PricingTerms.Value
		if pt == nil {
			return empty("No custom pricing terms")
		}
		out := field("Terms", pt.Terms) + field("Discount", FormatPercent(pt.Discount))
		if pt.ValidUntil != nil {
			out += field("Valid until", FormatDate(*pt.ValidUntil))
		}
		return out
	case session.SectionPayments:
		return renderRows(snap.Payments.Items, "No billing records", paymentRow)
	case session.SectionManagers:
		return renderRows(snap.Managers.Items, "No managers", userRow)
	case session.SectionUsers:
		return renderRows(snap.Users.Items, "No users", userRow)
	case session.SectionDomains:
		return renderRows(snap.Domains.Items, "No domains", domainRow)
	case session.SectionCustomerInfo:
		c := snap.CustomerInfo.Value
		if c == nil {
			return empty("No customer record")
		}
		a := c.Address
		return field("Name", c.Name) + field("Email", c.Email) +
			field("Address", strings.Join(nonEmpty(a.Line1, a.Line2, a.PostalCode+" "+a.City, a.Country), ", "))
	case session.SectionPaymentMethod:
		pm := snap.PaymentMethod.Value
		if pm == nil {
			return empty("No payment method")
		}
		return field("Card", fmt.Sprintf("%s **** %s  exp %02d/%d", pm.Brand, pm.Last4, pm.ExpMonth, pm.ExpYear))
	default:
		return ""
	}
}

func renderRows[T any](items []T, none string, row func(T) string) string {
	if len(items) == 0 {
		return empty(none)
	}
	var sb strings.Builder
	for _, it := range items {
		sb.WriteString("  " + row(it) + "\n")
	}
	return sb.String()
}

func paymentRow(r subscription.BillingRecord) string {
	mark := " "
	switch {
	case r.IsCurrent:
		mark = IconCurrent
	case r.IsUpcoming:
		mark = IconUpcoming
	}
	return fmt.Sprintf("%s %s to %s  %-14s %s", mark, FormatDate(r.PeriodStart), FormatDate(r.PeriodEnd),
		FormatMoney(r.Amount, r.Currency), MutedStyle.Render(r.Status))
}

func userRow(u subscription.SubscriptionUser) string {
	line := ValueStyle.Render(u.Name)
	if u.Email != "" {
		line += " <" + u.Email + ">"
	}
	if u.Role != "" {
		line += "  " + LabelStyle.Render(u.Role)
	}
	if u.JobInfo != nil && u.JobInfo.Title != "" {
		line += "  " + MutedStyle.Render(u.JobInfo.Title)
	}
	return line
}

func domainRow(d subscription.Domain) string {
	if d.Verified {
		return d.Name + " " + OKStyle.Render(IconVerified)
	}
	return d.Name + " " + MutedStyle.Render("unverified")
}

func renderPagination(p pagination.State) string {
	if p.TotalPages == 0 {
		return MutedStyle.Render(fmt.Sprintf("  page %d", p.CurrentPage))
	}
	return MutedStyle.Render(fmt.Sprintf("  page %d of %d (%s total)", p.CurrentPage, p.TotalPages, FormatCount(p.TotalCount)))
}

func empty(msg string) string {
	return "  " + MutedStyle.Render(msg) + "\n"
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
