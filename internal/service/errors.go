package service

import "errors"

var (
	ErrInvalidPassword         = errors.New("invalid password")
	ErrInvalidVerificationCode = errors.New("invalid verification code")
	ErrVerificationExpired     = errors.New("verification code expired")
	ErrSessionExpired          = errors.New("session expired")
	ErrRoleUnchanged           = errors.New("user already has that role")
	ErrOnboardingDone          = errors.New("onboarding already completed")
	ErrAvatarTooLarge          = errors.New("avatar exceeds size limit")
	ErrUnsupportedAvatarType   = errors.New("unsupported avatar content type")
	ErrNothingToUpdate         = errors.New("no fields to update")
)
