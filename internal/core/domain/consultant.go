package domain

import "strings"

// Role is a staff role stored on a profile.
type Role string

// Staff roles that receive alerts.
const (
	RoleConsultant Role = "consultant"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
)

// StaffRoles lists the roles loaded by the assignment resolver.
var StaffRoles = []Role{RoleConsultant, RoleManager, RoleAdmin}

// ConsultantProfile is a read-only snapshot of a staff profile.
// A nil or empty AssignedCompanyIDs means no companies, never all companies.
type ConsultantProfile struct {
	ID                 string   `db:"id" json:"id"`
	Email              string   `db:"email" json:"email"`
	FullName           string   `db:"full_name" json:"full_name"`
	Role               Role     `db:"role" json:"role"`
	AssignedCompanyIDs []string `db:"assigned_company_ids" json:"assigned_company_ids"`
	SlackUserID        *string  `db:"slack_user_id" json:"slack_user_id"`
}

// DisplayName returns the full name, falling back to the email address.
func (p ConsultantProfile) DisplayName() string {
	if name := strings.TrimSpace(p.FullName); name != "" {
		return name
	}

	return p.Email
}

// FirstName returns the first word of the display name.
func FirstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}

	if at := strings.IndexByte(fields[0], '@'); at > 0 {
		return fields[0][:at]
	}

	return fields[0]
}
