package types

import "github.com/shopspring/decimal"

// Role is the closed set of subscriber roles.
type Role string

const (
	RoleSubscriber    Role = "subscriber"
	RoleApprover      Role = "approver"
	RoleAdministrator Role = "administrator"
)

// ParseRole maps stored role strings onto the closed enum. Legacy values
// ("user", "manager", "admin") are accepted.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "subscriber", "user":
		return RoleSubscriber, true
	case "approver", "manager":
		return RoleApprover, true
	case "administrator", "admin":
		return RoleAdministrator, true
	}
	return "", false
}

// CanReceiveAlerts is the single authorization check for procurement alerts.
func CanReceiveAlerts(r Role) bool {
	return r == RoleApprover || r == RoleAdministrator
}

type Subscriber struct {
	ID           int64   `json:"id"`
	TelegramID   *int64  `json:"telegram_id,omitempty"`
	Username     string  `json:"username,omitempty"`
	FullName     string  `json:"full_name"`
	Role         Role    `json:"role"`
	IsActive     bool    `json:"is_active"`
	ContactEmail *string `json:"contact_email,omitempty"`
}

// Email returns the contact address or "".
func (s *Subscriber) Email() string {
	if s.ContactEmail == nil {
		return ""
	}
	return *s.ContactEmail
}

// AllLots is the nomenclature sentinel meaning "no restriction".
const AllLots = "Все лоты"

type Preference struct {
	SubscriberID  int64            `json:"subscriber_id"`
	Customers     []string         `json:"customers"`
	Nomenclature  []string         `json:"nomenclature"`
	BudgetMin     *decimal.Decimal `json:"budget_min,omitempty"`
	BudgetMax     *decimal.Decimal `json:"budget_max,omitempty"`
	NotifyEnabled bool             `json:"notify_enabled"`
}

// PreferenceUpdate carries a partial preference change; nil fields are left
// untouched. ClearBudgetMin/ClearBudgetMax remove a bound.
type PreferenceUpdate struct {
	Customers      *[]string        `json:"customers,omitempty"`
	Nomenclature   *[]string        `json:"nomenclature,omitempty"`
	BudgetMin      *decimal.Decimal `json:"budget_min,omitempty"`
	BudgetMax      *decimal.Decimal `json:"budget_max,omitempty"`
	ClearBudgetMin bool             `json:"clear_budget_min,omitempty"`
	ClearBudgetMax bool             `json:"clear_budget_max,omitempty"`
	NotifyEnabled  *bool            `json:"notify_enabled,omitempty"`
}
