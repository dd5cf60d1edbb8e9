package alerts

import "github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/domain"

// previewCompanies are the sample brands used by test messages.
var previewCompanies = []string{
	"Burger Palace",
	"Sushi Kento",
	"La Pizzeria del Barrio",
	"Poke House Madrid",
	"Tacos El Guero",
}

// PreviewAlerts scores the sample brands in simulation mode with the default
// preference, drops zero scores and sorts the rest.
func PreviewAlerts(thresholds domain.CategoryThresholds) []CompanyAlert {
	out := make([]CompanyAlert, 0, len(previewCompanies))

	for _, name := range previewCompanies {
		res := ComputeUrgencyScore(thresholds, domain.DefaultAlertPreference("", name), name)
		if res.Score == 0 {
			continue
		}

		out = append(out, CompanyAlert{
			CompanyID:  name,
			Name:       name,
			Score:      res.Score,
			Deviations: res.Deviations,
		})
	}

	SortAlerts(out)

	return out
}
