package access

import "strings"

// Scope is the resolved permission tier for one request. It is built once
// from the caller's role and passed by value; never mutate it downstream.
type Scope struct {
	AllAccess  bool
	SuperLevel string
	Level      string
}

// RoleUser is the baseline role every unknown or absent role resolves to.
const RoleUser = "USER"

// roleTable mirrors the backend's role mapping. Level "0" / SuperLevel "0"
// mean "not granted" and are normalized to empty strings on resolve.
var roleTable = map[string]Scope{
	"PILOT":                 {Level: "1"},
	"CUSTOMER_SUPPORT":      {Level: "2"},
	"TECHNICIAN":            {Level: "3"},
	"LOG_ANALYSIS_ENGINEER": {Level: "4"},
	"CUSTOMER_ADMIN":        {SuperLevel: "1"},
	"SENIOR_CS":             {SuperLevel: "2"},
	"ADMIN":                 {AllAccess: true},
	RoleUser:                {Level: "2"},
}

type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve maps a free-form role string to its Scope. Matching is
// case-insensitive. Unknown roles resolve to the USER baseline, never to
// "no access" and never to "all access".
func (r *Resolver) Resolve(role string) Scope {
	normalized := strings.ToUpper(strings.TrimSpace(role))
	if normalized == "" {
		normalized = RoleUser
	}
	scope, ok := roleTable[normalized]
	if !ok {
		scope = roleTable[RoleUser]
	}
	return scope
}

// NormalizeRole returns the role name the scope was resolved for, so the
// request context can record what was actually applied.
func (r *Resolver) NormalizeRole(role string) string {
	normalized := strings.ToUpper(strings.TrimSpace(role))
	if normalized == "" {
		return RoleUser
	}
	if _, ok := roleTable[normalized]; !ok {
		return RoleUser
	}
	return normalized
}
