// Package entity defines the entity aggregate: the organization-backed
// record produced by the creation wizard, its configuration categories and
// social links.
package entity

import "time"

// CategoryKey identifies one configurable service category. The set is
// closed; unknown keys are rejected at the API boundary and dropped from
// persisted drafts.
type CategoryKey string

const (
	CategoryDomain     CategoryKey = "domain"
	CategoryBank       CategoryKey = "bank"
	CategoryLegal      CategoryKey = "legal"
	CategoryAccounting CategoryKey = "accounting"
	CategoryInsurance  CategoryKey = "insurance"
	CategoryPayroll    CategoryKey = "payroll"
	CategoryWorkspace  CategoryKey = "workspace"
)

// Categories returns all category keys in presentation order.
func Categories() []CategoryKey {
	return []CategoryKey{
		CategoryDomain,
		CategoryBank,
		CategoryLegal,
		CategoryAccounting,
		CategoryInsurance,
		CategoryPayroll,
		CategoryWorkspace,
	}
}

var categoryDescriptions = map[CategoryKey]string{
	CategoryDomain:     "Register a domain name for the entity",
	CategoryBank:       "Open a business bank account",
	CategoryLegal:      "Retain legal counsel",
	CategoryAccounting: "Set up bookkeeping and accounting",
	CategoryInsurance:  "Arrange business insurance",
	CategoryPayroll:    "Set up payroll for members",
	CategoryWorkspace:  "Provision a shared workspace",
}

// CategoryDescription returns the human description for a category key, or
// the empty string for an unknown key.
func CategoryDescription(key CategoryKey) string {
	return categoryDescriptions[key]
}

// ValidCategory reports whether key is one of the known categories.
func ValidCategory(key CategoryKey) bool {
	_, ok := categoryDescriptions[key]
	return ok
}

// CategoryConfig holds the user's choices for one category.
type CategoryConfig struct {
	ProviderID string `json:"provider_id,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// SocialPlatform identifies a social link slot.
type SocialPlatform string

const (
	SocialTwitter   SocialPlatform = "twitter"
	SocialInstagram SocialPlatform = "instagram"
	SocialLinkedIn  SocialPlatform = "linkedin"
	SocialFacebook  SocialPlatform = "facebook"
	SocialYouTube   SocialPlatform = "youtube"
	SocialTikTok    SocialPlatform = "tiktok"
	SocialWebsite   SocialPlatform = "website"
)

// SocialLink is a typed external link on the entity profile.
type SocialLink struct {
	Type SocialPlatform `json:"type"`
	URL  string         `json:"url"`
}

// Entity is the persisted record. OrgID references the organization created
// for it in the external identity provider.
type Entity struct {
	ID            string                         `json:"id"`
	OwnerID       string                         `json:"owner_id"`
	Name          string                         `json:"name"`
	Handle        string                         `json:"handle,omitempty"`
	Brief         string                         `json:"brief"`
	Type          string                         `json:"type,omitempty"`
	OrgID         string                         `json:"org_id"`
	BannerURL     string                         `json:"banner_url,omitempty"`
	AvatarURL     string                         `json:"avatar_url,omitempty"`
	SocialLinks   []SocialLink                   `json:"social_links,omitempty"`
	Configuration map[CategoryKey]CategoryConfig `json:"configuration,omitempty"`
	CompletedKeys []CategoryKey                  `json:"completed_keys,omitempty"`
	CreatedAt     time.Time                      `json:"created_at"`
	UpdatedAt     time.Time                      `json:"updated_at"`
}

// ItemCompleted reports whether the category is marked done on the entity.
func (e Entity) ItemCompleted(key CategoryKey) bool {
	for _, k := range e.CompletedKeys {
		if k == key {
			return true
		}
	}
	return false
}
