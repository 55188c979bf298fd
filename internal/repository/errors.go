// Package repository holds the gorm-backed table access for accounts,
// profiles, health questionnaires and diet plans.
package repository

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrProfileNotFound = errors.New("profile not found")
	ErrPlanNotFound    = errors.New("plan not found")
)
