package domain

import "time"

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

type OnboardingStep string

const (
	OnboardingStepOne   OnboardingStep = "STEP_ONE"
	OnboardingStepTwo   OnboardingStep = "STEP_TWO"
	OnboardingStepThree OnboardingStep = "STEP_THREE"
	OnboardingStepFour  OnboardingStep = "STEP_FOUR"
	OnboardingDone      OnboardingStep = "DONE"
)

type User struct {
	ID                         string         `gorm:"primaryKey;size:36" json:"id"`
	Email                      string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username                   string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash               string         `gorm:"size:255;not null" json:"-"`
	FirstName                  string         `gorm:"size:255" json:"first_name"`
	LastName                   string         `gorm:"size:255" json:"last_name"`
	Bio                        string         `gorm:"size:2048" json:"bio"`
	AvatarURL                  string         `gorm:"size:1024" json:"avatar_url"`
	Age                        int            `json:"age"`
	Role                       UserRole       `gorm:"size:16;not null;default:USER" json:"role"`
	IsVerified                 bool           `gorm:"not null;default:false" json:"is_verified"`
	VerificationToken          *string        `gorm:"size:16;index" json:"-"`
	VerificationTokenExpiresAt *time.Time     `json:"-"`
	IsPremium                  bool           `gorm:"not null;default:false" json:"is_premium"`
	OnboardingStep             OnboardingStep `gorm:"size:16;not null;default:STEP_ONE" json:"onboarding_step"`
	IsOnboardingDone           bool           `gorm:"not null;default:false" json:"is_onboarding_done"`
	CreatedAt                  time.Time      `json:"created_at"`
	UpdatedAt                  time.Time      `json:"updated_at"`
	Sessions                   []Session      `gorm:"constraint:OnDelete:CASCADE" json:"sessions,omitempty"`
}

// Profile is the public projection of a User, safe to return without
// authentication.
type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
	}
}
