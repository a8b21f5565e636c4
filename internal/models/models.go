// Package models defines the records kept by the dial-in log and the
// request types used to create them.
package models

import (
	"slices"
	"strings"
	"time"
)

// Rating is the taste outcome of a shot.
type Rating string

const (
	RatingVerySour   Rating = "Very Sour"
	RatingSour       Rating = "Sour"
	RatingBalanced   Rating = "Balanced"
	RatingBitter     Rating = "Bitter"
	RatingVeryBitter Rating = "Very Bitter"
)

// Valid reports whether r is on the 5-point scale.
func (r Rating) Valid() bool {
	return slices.Contains(Ratings, r)
}

// BrewType is the kind of drink pulled.
type BrewType string

const (
	BrewEspresso    BrewType = "Espresso"
	BrewDripCoffee  BrewType = "Drip Coffee"
	BrewColdBrew    BrewType = "Cold Brew"
	BrewColdPressed BrewType = "Cold Pressed"
	BrewOverIce     BrewType = "Over Ice"
)

// Valid reports whether b is a known brew type.
func (b BrewType) Valid() bool {
	return slices.Contains(BrewTypes, b)
}

// IsCold reports whether the brew type has no temperature control.
func (b BrewType) IsCold() bool {
	switch b {
	case BrewColdBrew, BrewColdPressed, BrewOverIce:
		return true
	}
	return false
}

// Basket is the portafilter insert size.
type Basket string

const (
	BasketDouble Basket = "Double"
	BasketLuxe   Basket = "Luxe"

	// BasketLegacySingle only appears in data written by early versions.
	// It is rewritten to BasketDouble when loaded.
	BasketLegacySingle Basket = "Single"
)

// Valid reports whether b is a current basket size.
func (b Basket) Valid() bool {
	return slices.Contains(Baskets, b)
}

// Temperature is the brew temperature setting.
type Temperature string

const (
	TempLow  Temperature = "Low"
	TempMed  Temperature = "Med"
	TempHigh Temperature = "High"
)

// Valid reports whether t is a known temperature.
func (t Temperature) Valid() bool {
	return slices.Contains(Temperatures, t)
}

// Warmer returns the next warmer setting, or t when already High.
func (t Temperature) Warmer() Temperature {
	i := slices.Index(Temperatures, t)
	if i < 0 || i == len(Temperatures)-1 {
		return t
	}
	return Temperatures[i+1]
}

// Cooler returns the next cooler setting, or t when already Low.
func (t Temperature) Cooler() Temperature {
	i := slices.Index(Temperatures, t)
	if i <= 0 {
		return t
	}
	return Temperatures[i-1]
}

// Strength is the machine strength selector, 1 (mild) to 3 (rich).
type Strength int

// Valid reports whether s is between 1 and 3.
func (s Strength) Valid() bool {
	return s >= 1 && s <= 3
}

type MilkType string

const (
	MilkDairy MilkType = "Dairy"
	MilkPlant MilkType = "Plant"
)

type MilkStyle string

const (
	MilkSteamed  MilkStyle = "Steamed"
	MilkThin     MilkStyle = "Thin"
	MilkThick    MilkStyle = "Thick"
	MilkColdFoam MilkStyle = "Cold Foam"
)

// MilkSettings describes the milk added to a drink.
type MilkSettings struct {
	Type  MilkType  `json:"type"`
	Style MilkStyle `json:"style"`
}

// Valid reports whether both the type and style are known values.
func (m MilkSettings) Valid() bool {
	return slices.Contains(MilkTypes, m.Type) && slices.Contains(MilkStyles, m.Style)
}

type RoastLevel string

const (
	RoastLight      RoastLevel = "Light"
	RoastMedium     RoastLevel = "Medium"
	RoastMediumDark RoastLevel = "Medium-Dark"
	RoastDark       RoastLevel = "Dark"
)

type ProcessMethod string

const (
	ProcessWashed    ProcessMethod = "Washed"
	ProcessNatural   ProcessMethod = "Natural"
	ProcessHoney     ProcessMethod = "Honey"
	ProcessAnaerobic ProcessMethod = "Anaerobic"
	ProcessOther     ProcessMethod = "Other"
)

// Grind size bounds. 1 is the finest setting.
const (
	MinGrindSize = 1
	MaxGrindSize = 25
)

// ShotLog is one logged extraction. Records are never edited after
// creation; duplicating a shot creates a new one.
type ShotLog struct {
	ID             string        `json:"id"`
	BeanName       string        `json:"beanName"`
	BrewType       BrewType      `json:"brewType"`
	Basket         Basket        `json:"basket"`
	GrindSize      int           `json:"grindSize"`
	Temperature    *Temperature  `json:"temperature,omitempty"`
	Strength       Strength      `json:"strength"`
	Rating         Rating        `json:"rating"`
	Milk           *MilkSettings `json:"milk,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	ExtractionTime *float64      `json:"extractionTime,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
}

// EffectiveTemperature returns the temperature that applied to the shot.
// Cold brew types never have one, whatever was stored.
func (s *ShotLog) EffectiveTemperature() *Temperature {
	if s.BrewType.IsCold() {
		return nil
	}
	return s.Temperature
}

// MatchesBean reports whether the shot was pulled with the named bean,
// ignoring case and surrounding whitespace.
func (s *ShotLog) MatchesBean(name string) bool {
	return strings.EqualFold(strings.TrimSpace(s.BeanName), strings.TrimSpace(name))
}

// FavoritesMap maps a lowercased bean name to the id of its target shot.
type FavoritesMap map[string]string

// FavoriteKey normalizes a bean name for use as a FavoritesMap key.
func FavoriteKey(beanName string) string {
	return strings.ToLower(strings.TrimSpace(beanName))
}

// SavedRecipe is a named bundle of brew settings.
type SavedRecipe struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	BeanName    string        `json:"beanName"`
	BrewType    BrewType      `json:"brewType"`
	Basket      Basket        `json:"basket"`
	GrindSize   int           `json:"grindSize"`
	Temperature *Temperature  `json:"temperature,omitempty"`
	Strength    Strength      `json:"strength"`
	Milk        *MilkSettings `json:"milk,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// BeanProfile is bean metadata kept independently of any shot.
type BeanProfile struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Roaster       string         `json:"roaster,omitempty"`
	Origin        string         `json:"origin,omitempty"`
	RoastLevel    *RoastLevel    `json:"roastLevel,omitempty"`
	ProcessMethod *ProcessMethod `json:"processMethod,omitempty"`
	RoastDate     *string        `json:"roastDate,omitempty"` // YYYY-MM-DD
	FlavorNotes   string         `json:"flavorNotes,omitempty"`
	IsActive      bool           `json:"isActive"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// RoastDateLayout is the calendar date format used for BeanProfile.RoastDate.
const RoastDateLayout = "2006-01-02"

// Ptr returns a pointer to v. Handy for the optional enum fields.
func Ptr[T any](v T) *T {
	return &v
}
