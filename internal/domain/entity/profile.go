package entity

import "time"

// Role selects which registration branch applies and which profile row, if
// any, extends the user.
type Role string

const (
	RoleStandard  Role = "standard"
	RoleAgent     Role = "agent"
	RoleCorporate Role = "corporate"
)

// AgentProfile is a 1:1 extension of a User created only for agent
// registrations.
type AgentProfile struct {
	ID         string
	UserID     string
	AgencyName string
	LicenseNo  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CorporateProfile is a 1:1 extension of a User created only for corporate
// registrations.
type CorporateProfile struct {
	ID           string
	UserID       string
	CompanyName  string
	TaxID        string
	BillingEmail string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Account is the resolved identity of a user: the base User plus at most one
// role profile. Role is the discriminant; Agent and Corporate are populated
// only when Role matches. Precedence when resolving is corporate > agent >
// standard, fixed in one place instead of scattered presence checks.
type Account struct {
	Role      Role
	User      *User
	Agent     *AgentProfile
	Corporate *CorporateProfile
}

// NewAccount resolves the tagged union from a user and its optional
// profiles. Profiles are mutually exclusive by construction, but the
// precedence stays explicit here.
func NewAccount(u *User, agent *AgentProfile, corp *CorporateProfile) *Account {
	switch {
	case corp != nil:
		return &Account{Role: RoleCorporate, User: u, Corporate: corp}
	case agent != nil:
		return &Account{Role: RoleAgent, User: u, Agent: agent}
	default:
		return &Account{Role: RoleStandard, User: u}
	}
}
