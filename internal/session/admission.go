package session

import (
	"encoding/json"
	"strings"

	"github.com/rshade/subview/internal/subscription"
)

// Section names one sub-resource of a subscription detail view.
type Section uint8

// Sections in display order.
const (
	SectionUsage Section = iota
	SectionPricingTerms
	SectionPayments
	SectionManagers
	SectionDomains
	SectionCustomerInfo
	SectionPaymentMethod
	SectionUsers

	sectionCount
)

//nolint:gochecknoglobals // Lookup tables indexed by Section.
var (
	sectionNames = [sectionCount]string{
		SectionUsage:         "usage",
		SectionPricingTerms:  "pricingTerms",
		SectionPayments:      "payments",
		SectionManagers:      "managers",
		SectionDomains:       "domains",
		SectionCustomerInfo:  "customerInfo",
		SectionPaymentMethod: "paymentMethod",
		SectionUsers:         "users",
	}
	sectionLabels = [sectionCount]string{
		SectionUsage:         "usage",
		SectionPricingTerms:  "pricing terms",
		SectionPayments:      "billing record",
		SectionManagers:      "managers",
		SectionDomains:       "domains",
		SectionCustomerInfo:  "customer",
		SectionPaymentMethod: "payment method",
		SectionUsers:         "users",
	}
)

func (s Section) String() string {
	if s >= sectionCount {
		return "unknown"
	}
	return sectionNames[s]
}

// Label is the human name used in notifications.
func (s Section) Label() string {
	if s >= sectionCount {
		return "unknown"
	}
	return sectionLabels[s]
}

// Paginated reports whether the section is a paged collection.
func (s Section) Paginated() bool {
	switch s {
	case SectionPayments, SectionManagers, SectionDomains, SectionUsers:
		return true
	default:
		return false
	}
}

// MarshalText encodes the section name.
func (s Section) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSection returns the section with the given name.
func ParseSection(name string) (Section, bool) {
	for i, n := range sectionNames {
		if strings.EqualFold(n, name) {
			return Section(i), true
		}
	}
	return 0, false
}

// AllSections returns every section in display order.
func AllSections() []Section {
	out := make([]Section, sectionCount)
	for i := range out {
		out[i] = Section(i)
	}
	return out
}

// Set is an immutable set of sections.
type Set uint16

// NewSet returns a set holding sections.
func NewSet(sections ...Section) Set {
	var s Set
	for _, sec := range sections {
		s = s.With(sec)
	}
	return s
}

// With returns the set plus sec.
func (s Set) With(sec Section) Set {
	return s | 1<<sec
}

// Without returns the set minus sec.
func (s Set) Without(sec Section) Set {
	return s &^ (1 << sec)
}

// Has reports whether sec is in the set.
func (s Set) Has(sec Section) bool {
	return s&(1<<sec) != 0
}

// Sections lists the members in display order.
func (s Set) Sections() []Section {
	var out []Section
	for sec := Section(0); sec < sectionCount; sec++ {
		if s.Has(sec) {
			out = append(out, sec)
		}
	}
	return out
}

func (s Set) String() string {
	names := make([]string, 0, sectionCount)
	for _, sec := range s.Sections() {
		names = append(names, sec.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// MarshalJSON encodes the set as a list of section names.
func (s Set) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, sectionCount)
	for _, sec := range s.Sections() {
		names = append(names, sec.String())
	}
	return json.Marshal(names)
}

// Admit returns the sections to fetch for a freshly loaded subscription.
// It depends on nothing but the variant and the entity.
func Admit(v Variant, sub subscription.Subscription) Set {
	set := NewSet(SectionPayments, SectionManagers)

	if sub.IsEnterprise() {
		set = set.With(SectionDomains).With(SectionUsers)
	}
	if sub.BillingType == subscription.BillingCard {
		set = set.With(SectionPaymentMethod)
	}

	switch v {
	case VariantProfile:
		set = set.With(SectionUsage)
	case VariantUnified:
		if sub.IsEnterprise() || sub.UsageTracked {
			set = set.With(SectionUsage)
		}
		if sub.BillingType != "" && sub.BillingType != subscription.BillingFree {
			set = set.With(SectionCustomerInfo)
		}
		if sub.CustomPricing {
			set = set.With(SectionPricingTerms)
		}
	}
	return set
}

// Visible returns the admitted sections a view should render. The profile
// variant fetches usage for every subscription but shows it only for
// enterprise ones.
func Visible(v Variant, sub subscription.Subscription) Set {
	set := Admit(v, sub)
	if v == VariantProfile && !sub.IsEnterprise() {
		set = set.Without(SectionUsage)
	}
	return set
}
