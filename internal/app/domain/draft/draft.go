// Package draft defines the in-progress entity creation draft: the wizard
// step plus everything the user has entered so far. One draft exists per
// user and is persisted whole after each mutation.
package draft

import (
	"strings"
	"time"

	entitydomain "github.com/FolioWorks/entity_layer/internal/app/domain/entity"
	"github.com/FolioWorks/entity_layer/internal/app/domain/invite"
)

// Step is the wizard position.
type Step int

const (
	StepProfile       Step = 1
	StepConfiguration Step = 2
	StepInvite        Step = 3
)

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	return s >= StepProfile && s <= StepInvite
}

// Profile holds the step-1 fields. BannerRef and AvatarRef may be local
// references; they are swapped for remote URLs at submission time.
type Profile struct {
	Name        string                    `json:"name"`
	Handle      string                    `json:"handle,omitempty"`
	BannerRef   string                    `json:"banner_ref,omitempty"`
	AvatarRef   string                    `json:"avatar_ref,omitempty"`
	Brief       string                    `json:"brief"`
	Type        string                    `json:"type,omitempty"`
	SocialLinks []entitydomain.SocialLink `json:"social_links,omitempty"`
}

// Complete reports whether the profile passes the step-1 gate: name and
// brief both non-blank.
func (p Profile) Complete() bool {
	return strings.TrimSpace(p.Name) != "" && strings.TrimSpace(p.Brief) != ""
}

// Configuration holds the step-2 per-category choices.
type Configuration struct {
	Data          map[entitydomain.CategoryKey]entitydomain.CategoryConfig `json:"data,omitempty"`
	CompletedKeys []entitydomain.CategoryKey                               `json:"completed_keys,omitempty"`
}

// Completed reports whether key is marked done.
func (c Configuration) Completed(key entitydomain.CategoryKey) bool {
	for _, k := range c.CompletedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// SetCompleted marks or unmarks key, keeping CompletedKeys free of
// duplicates.
func (c *Configuration) SetCompleted(key entitydomain.CategoryKey, done bool) {
	for i, k := range c.CompletedKeys {
		if k == key {
			if !done {
				c.CompletedKeys = append(c.CompletedKeys[:i], c.CompletedKeys[i+1:]...)
			}
			return
		}
	}
	if done {
		c.CompletedKeys = append(c.CompletedKeys, key)
	}
}

// Invite holds the step-3 selections.
type Invite struct {
	SelectedContacts []invite.ContactCandidate `json:"selected_contacts,omitempty"`
	Message          string                    `json:"message,omitempty"`
}

// Draft is the full wizard state persisted per user.
type Draft struct {
	Step          Step          `json:"step"`
	Profile       Profile       `json:"profile"`
	Configuration Configuration `json:"configuration"`
	Invite        Invite        `json:"invite"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Empty returns a fresh draft positioned at step 1.
func Empty() Draft {
	return Draft{
		Step: StepProfile,
		Configuration: Configuration{
			Data: map[entitydomain.CategoryKey]entitydomain.CategoryConfig{},
		},
	}
}

// Normalize repairs a decoded draft in place: the step is clamped into
// range, nil maps are allocated and unknown category keys are dropped.
func (d *Draft) Normalize() {
	if !d.Step.Valid() {
		d.Step = StepProfile
	}
	if d.Configuration.Data == nil {
		d.Configuration.Data = map[entitydomain.CategoryKey]entitydomain.CategoryConfig{}
	}
	for key := range d.Configuration.Data {
		if !entitydomain.ValidCategory(key) {
			delete(d.Configuration.Data, key)
		}
	}
	kept := d.Configuration.CompletedKeys[:0]
	for _, key := range d.Configuration.CompletedKeys {
		if entitydomain.ValidCategory(key) {
			kept = append(kept, key)
		}
	}
	d.Configuration.CompletedKeys = kept
}
