// Package alerts implements the daily anomaly alert pipeline: it resolves which
// consultants own which companies, fans anomalies out to per-consultant bundles,
// scores companies by urgency and renders the notification text.
package alerts

import "github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/domain"

// CompanyIndex maps a company id to its consultants in profile scan order.
type CompanyIndex map[string][]domain.ConsultantProfile

// BuildCompanyIndex inserts each profile once per company it lists.
// Profiles with no assignments contribute nothing.
func BuildCompanyIndex(profiles []domain.ConsultantProfile) CompanyIndex {
	index := make(CompanyIndex)

	for _, p := range profiles {
		for _, companyID := range p.AssignedCompanyIDs {
			if companyID == "" {
				continue
			}

			index[companyID] = append(index[companyID], p)
		}
	}

	return index
}

// Consultants returns the consultants assigned to companyID.
func (idx CompanyIndex) Consultants(companyID string) []domain.ConsultantProfile {
	return idx[companyID]
}
