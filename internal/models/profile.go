package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Profile shares its identifier with the owning account.
type Profile struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	FirstName *string   `gorm:"size:100" json:"first_name"`
	LastName  *string   `gorm:"size:100" json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// DisplayName joins whichever name parts are set.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	var parts []string
	for _, s := range []*string{p.FirstName, p.LastName} {
		if s != nil && strings.TrimSpace(*s) != "" {
			parts = append(parts, strings.TrimSpace(*s))
		}
	}
	return strings.Join(parts, " ")
}
