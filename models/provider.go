package models

import (
	"time"
)

type Profile struct {
	ProviderName string  `bson:"providerName" json:"providerName,omitempty"`
	ProviderType string  `bson:"providerType" json:"providerType,omitempty"`
	Email        string  `bson:"email" json:"email,omitempty"`
	PhoneNumber  string  `bson:"phoneNumber" json:"phoneNumber,omitempty"`
	Status       string  `bson:"status" json:"status,omitempty"`
	ProfileImage string  `bson:"profileImage" json:"profileImage,omitempty"`
	Address      string  `bson:"address" json:"address,omitempty"`
	Rating       float64 `bson:"rating" json:"rating,omitempty"`
}

// Provider is the provider document as far as scheduling is concerned.
// Extra carries the document fields this service does not model so a full
// rewrite of the record keeps them intact.
type Provider struct {
	ID              string                 `json:"id"`
	Profile         Profile                `json:"profile"`
	Schedule        Schedule               `json:"schedule"`
	ScheduleVersion int                    `json:"scheduleVersion"`
	CreatedAt       time.Time              `json:"createdAt,omitzero"`
	UpdatedAt       time.Time              `json:"updatedAt,omitzero"`
	Extra           map[string]interface{} `json:"-"`
}

// NewProvider returns a provider with an empty schedule.
func NewProvider(id string, profile Profile, now time.Time) *Provider {
	return &Provider{
		ID:        id,
		Profile:   profile,
		Schedule:  EmptySchedule(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone copies the provider including Extra's top level.
func (p *Provider) Clone() *Provider {
	if p == nil {
		return nil
	}
	out := *p
	if p.Extra != nil {
		out.Extra = make(map[string]interface{}, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	return &out
}
