// Package models contains shared data models used across the LicitaHub codebase.
package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Plan identifiers. Each plan caps the number of AI analyses per billing cycle.
const (
	PlanFree      = "free"
	Plan15        = "plan_15"
	Plan30        = "plan_30"
	Plan60        = "plan_60"
	Plan90        = "plan_90"
	PlanUnlimited = "unlimited"
)

var planLimits = map[string]int{
	PlanFree:      5,
	Plan15:        15,
	Plan30:        30,
	Plan60:        60,
	Plan90:        90,
	PlanUnlimited: 999999,
}

// PlanLimit returns the analysis quota for a plan. Unknown plans fall back
// to the free tier.
func PlanLimit(plan string) int {
	if limit, ok := planLimits[plan]; ok {
		return limit
	}
	return planLimits[PlanFree]
}

// ValidPlan reports whether plan is one of the known plan identifiers.
func ValidPlan(plan string) bool {
	_, ok := planLimits[plan]
	return ok
}

// User is an account holder. Reports and archive documents are scoped to a user;
// there is no cross-user sharing.
type User struct {
	ID           uuid.UUID `db:"id"            json:"id"`
	Username     string    `db:"username"      json:"username"`
	Name         string    `db:"name"          json:"name"`
	Email        string    `db:"email"         json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role"          json:"role"`
	Plan         string    `db:"plan"          json:"plan"`
	CreditsUsed  int       `db:"credits_used"  json:"credits_used"`
	SessionToken string    `db:"session_token" json:"-"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updated_at"`
}
