package scoring

import (
	"fmt"
	"sort"
	"strings"
)

// Difficulty names.
const (
	Easy   = "easy"
	Medium = "medium"
	Hard   = "hard"
)

// DefaultDifficulty is selected when a client does not name one.
const DefaultDifficulty = Medium

// Profile tunes scoring strictness and the time bonus for one difficulty.
type Profile struct {
	Name string `json:"name"`
	// DotRadius is the on-screen radius of the target dot. Scoring ignores it;
	// clients use it for rendering.
	DotRadius float64 `json:"dot_radius"`
	// SigmaScale multiplies the relative radius deviation penalty.
	SigmaScale float64 `json:"sigma_scale"`
	// TimeScale is the largest achievable time bonus.
	TimeScale float64 `json:"time_scale"`
}

// Validate reports whether the profile can drive scoring.
func (p Profile) Validate() error {
	switch {
	case !isKnown(p.Name):
		return fmt.Errorf("%w: %q", ErrUnknownDifficulty, p.Name)
	case p.DotRadius <= 0:
		return fmt.Errorf("%w: dot_radius must be positive", ErrInvalidProfile)
	case p.SigmaScale <= 0:
		return fmt.Errorf("%w: sigma_scale must be positive", ErrInvalidProfile)
	case p.TimeScale < 0:
		return fmt.Errorf("%w: time_scale must not be negative", ErrInvalidProfile)
	}
	return nil
}

func isKnown(name string) bool {
	return name == Easy || name == Medium || name == Hard
}

// defaultProfiles returns the stock profiles. Harder levels penalise radius
// drift more and offer a smaller time bonus.
func defaultProfiles() map[string]Profile {
	return map[string]Profile{
		Easy:   {Name: Easy, DotRadius: 18, SigmaScale: 3.5, TimeScale: 80},
		Medium: {Name: Medium, DotRadius: 10, SigmaScale: 5.0, TimeScale: 50},
		Hard:   {Name: Hard, DotRadius: 5, SigmaScale: 7.5, TimeScale: 36},
	}
}

// CatalogOption customises a Catalog.
type CatalogOption func(*Catalog)

// WithProfile replaces the stock profile of the same name. Invalid profiles
// are ignored.
func WithProfile(p Profile) CatalogOption {
	return func(c *Catalog) {
		p.Name = strings.ToLower(strings.TrimSpace(p.Name))
		if p.Validate() == nil {
			c.profiles[p.Name] = p
		}
	}
}

// Catalog holds the immutable set of difficulty profiles.
type Catalog struct {
	profiles map[string]Profile
}

// NewCatalog builds a catalog from the stock profiles and any overrides.
func NewCatalog(opts ...CatalogOption) *Catalog {
	c := &Catalog{profiles: defaultProfiles()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup returns the profile registered under name (case-insensitive).
// An empty name selects DefaultDifficulty.
func (c *Catalog) Lookup(name string) (Profile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultDifficulty
	}
	p, ok := c.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, name)
	}
	return p, nil
}

// Profiles returns every profile ordered from easiest to hardest.
func (c *Catalog) Profiles() []Profile {
	out := make([]Profile, 0, len(c.profiles))
	for _, p := range c.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return rank(out[i].Name) < rank(out[j].Name)
	})
	return out
}

func rank(name string) int {
	switch name {
	case Easy:
		return 0
	case Medium:
		return 1
	default:
		return 2
	}
}
