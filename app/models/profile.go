package models

import (
	"time"
)

// Onboarding answers for question1 ("What's most important to you in a partner?")
const (
	TraitHonesty  = "honesty"
	TraitHumor    = "humor"
	TraitAmbition = "ambition"
)

// Onboarding answers for question2 ("Your ideal weekend?")
const (
	WeekendHiking   = "hiking"
	WeekendReading  = "reading"
	WeekendPartying = "partying"
)

// Profile represents a user's onboarding answers
type Profile struct {
	UserID        string     `json:"userId" bson:"userId"`
	Question1     string     `json:"question1" bson:"question1"`
	Question2     string     `json:"question2" bson:"question2"`
	CreatedAt     time.Time  `json:"createdAt" bson:"createdAt"`
	LastMatchedAt *time.Time `json:"lastMatchedAt" bson:"lastMatchedAt"`
}

// SaveProfileRequest represents the onboarding submission
type SaveProfileRequest struct {
	UserID    string `json:"userId" validate:"required,userid"`
	Question1 string `json:"question1" validate:"required,oneof=honesty humor ambition"`
	Question2 string `json:"question2" validate:"required,oneof=hiking reading partying"`
}

// SaveProfileResponse represents the onboarding response
type SaveProfileResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CompatibilityScore counts the onboarding answers two profiles share.
func CompatibilityScore(a, b Profile) int {
	score := 0
	if a.Question1 == b.Question1 {
		score++
	}
	if a.Question2 == b.Question2 {
		score++
	}
	return score
}
