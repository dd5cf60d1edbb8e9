package alerts

import (
	"sort"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/domain"
)

// UnassignedKey holds anomalies whose company has no consultant.
const UnassignedKey = "__unassigned__"

const unassignedName = "Sin asignar"

// Bundle is the per-recipient collection of anomalies for one alert message.
type Bundle struct {
	Consultant  string                 `json:"consultant"`
	Email       string                 `json:"email"`
	SlackUserID *string                `json:"slackUserId"`
	Orders      []domain.OrderAnomaly  `json:"orders"`
	Reviews     []domain.ReviewAnomaly `json:"reviews"`
	Ads         []domain.AdsAnomaly    `json:"ads"`
}

// Total returns the number of anomalies in the bundle.
func (b *Bundle) Total() int {
	return len(b.Orders) + len(b.Reviews) + len(b.Ads)
}

// Grouped maps consultant id, or UnassignedKey, to a bundle.
type Grouped map[string]*Bundle

// Group fans every anomaly out to each consultant of its company, in the order
// orders, reviews, ads. Anomalies are duplicated across consultants, never dropped.
func Group(index CompanyIndex, orders []domain.OrderAnomaly, reviews []domain.ReviewAnomaly, ads []domain.AdsAnomaly) Grouped {
	g := make(Grouped)

	assign(g, index, orders, func(b *Bundle) *[]domain.OrderAnomaly { return &b.Orders })
	assign(g, index, reviews, func(b *Bundle) *[]domain.ReviewAnomaly { return &b.Reviews })
	assign(g, index, ads, func(b *Bundle) *[]domain.AdsAnomaly { return &b.Ads })

	return g
}

func assign[T domain.AnomalyRecord](g Grouped, index CompanyIndex, records []T, slot func(*Bundle) *[]T) {
	for _, rec := range records {
		consultants := index.Consultants(rec.Company())
		if len(consultants) == 0 {
			target := slot(g.unassigned())
			*target = append(*target, rec)

			continue
		}

		for _, c := range consultants {
			target := slot(g.forConsultant(c))
			*target = append(*target, rec)
		}
	}
}

func (g Grouped) forConsultant(p domain.ConsultantProfile) *Bundle {
	if b, ok := g[p.ID]; ok {
		return b
	}

	b := newBundle(p.DisplayName(), p.Email, p.SlackUserID)
	g[p.ID] = b

	return b
}

func (g Grouped) unassigned() *Bundle {
	if b, ok := g[UnassignedKey]; ok {
		return b
	}

	b := newBundle(unassignedName, "", nil)
	g[UnassignedKey] = b

	return b
}

func newBundle(name, email string, slackUserID *string) *Bundle {
	return &Bundle{
		Consultant:  name,
		Email:       email,
		SlackUserID: slackUserID,
		Orders:      []domain.OrderAnomaly{},
		Reviews:     []domain.ReviewAnomaly{},
		Ads:         []domain.AdsAnomaly{},
	}
}

// ConsultantCount returns the number of real consultants with a bundle.
func (g Grouped) ConsultantCount() int {
	n := len(g)
	if _, ok := g[UnassignedKey]; ok {
		n--
	}

	return n
}

// ConsultantIDs returns the consultant keys sorted, excluding UnassignedKey.
func (g Grouped) ConsultantIDs() []string {
	ids := make([]string, 0, len(g))

	for id := range g {
		if id == UnassignedKey {
			continue
		}

		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}
