package models

import "gorm.io/gorm"

// Subscription plans. The free tier caps how many trips may be
// active at the same time; standard and pro are uncapped.
const (
	PlanFree     = "free"
	PlanStandard = "standard"
	PlanPro      = "pro"
)

type User struct {
	gorm.Model
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"` // bcrypt hash, never serialized
	Name     string `json:"name" gorm:"not null"`
	Plan     string `json:"plan" gorm:"not null;default:free"` // "free", "standard", "pro"

	Trips []Trip `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"trips,omitempty"`
}

// ValidPlan reports whether p is one of the known subscription plans.
func ValidPlan(p string) bool {
	switch p {
	case PlanFree, PlanStandard, PlanPro:
		return true
	}
	return false
}
