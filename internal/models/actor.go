package models

import (
	"strings"
	"time"
)

// Actor categories, normalized form. Stored as free text for historical
// reasons; NormalizeCategory maps the known synonyms onto this set.
const (
	CategoryPresse       = "presse"
	CategoryAudiovisuel  = "audiovisuel"
	CategoryIndependants = "independants"
	CategoryPersonnalite = "personnalité"
	CategoryInfluenceur  = "influenceur"
)

// Actor is a tracked media outlet, personality or influencer, positioned on
// four editorial axes. The JSON field names are the API contract: axis scores
// are camelCase, the rest snake_case.
type Actor struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	ActorType  string    `json:"actor_type"`
	FeedURL    string    `json:"feed_url"`
	Confidence *float64  `json:"confidence"`
	LibAutor   float64   `json:"libAutor"`
	IndivCol   float64   `json:"indivCol"`
	NatioMon   float64   `json:"natioMon"`
	ProgCons   float64   `json:"progCons"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateActorParams holds the fields needed to create an actor (seeding and
// admin creation).
type CreateActorParams struct {
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	FeedURL   string  `json:"feed_url"`
	ActorType string  `json:"actor_type"`
	LibAutor  float64 `json:"libAutor"`
	IndivCol  float64 `json:"indivCol"`
	NatioMon  float64 `json:"natioMon"`
	ProgCons  float64 `json:"progCons"`
}

// UpdateActorParams is a partial update; nil fields are left untouched.
type UpdateActorParams struct {
	Name      *string  `json:"name"`
	FeedURL   *string  `json:"feed_url"`
	ActorType *string  `json:"actor_type"`
	LibAutor  *float64 `json:"libAutor"`
	IndivCol  *float64 `json:"indivCol"`
	NatioMon  *float64 `json:"natioMon"`
	ProgCons  *float64 `json:"progCons"`
}

// Empty reports whether the update carries no fields at all.
func (p UpdateActorParams) Empty() bool {
	return p.Name == nil && p.FeedURL == nil && p.ActorType == nil &&
		p.LibAutor == nil && p.IndivCol == nil && p.NatioMon == nil && p.ProgCons == nil
}

// NormalizeCategory maps a raw actor_type label onto the canonical category
// set. English and legacy singular spellings are folded into their French
// plural equivalents; an empty label defaults to "presse"; anything
// unrecognized passes through lowercased.
func NormalizeCategory(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return CategoryPresse
	}
	switch s {
	case "press":
		return CategoryPresse
	case "audiovisual":
		return CategoryAudiovisuel
	case "influencer":
		return CategoryInfluenceur
	case "personnalite":
		return CategoryPersonnalite
	case "indépendant", "independant":
		return CategoryIndependants
	}
	return s
}

// CategoryLabel returns the display label for a normalized category.
// Unknown categories render as "inconnu".
func CategoryLabel(category string) string {
	switch category {
	case CategoryPresse:
		return "Pr. éditoriale"
	case CategoryAudiovisuel:
		return "TV / Radio"
	case CategoryIndependants:
		return "Pr. Indépendante"
	case CategoryPersonnalite:
		return "Pe. politiques"
	case CategoryInfluenceur:
		return "Influenceurs"
	}
	return "inconnu"
}
