package models

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// Field length limits
const (
	MaxNameLength  = 200
	MaxNotesLength = 2000
)

// Validation errors
var (
	ErrBeanNameRequired   = errors.New("bean name is required")
	ErrNameRequired       = errors.New("name is required")
	ErrNameTooLong        = errors.New("name is too long")
	ErrNotesTooLong       = errors.New("notes are too long")
	ErrInvalidBrewType    = errors.New("invalid brew type")
	ErrInvalidBasket      = errors.New("invalid basket size")
	ErrGrindOutOfRange    = errors.New("grind size must be between 1 and 25")
	ErrInvalidTemperature = errors.New("invalid temperature")
	ErrInvalidStrength    = errors.New("strength must be between 1 and 3")
	ErrInvalidRating      = errors.New("invalid rating")
	ErrInvalidMilk        = errors.New("invalid milk settings")
	ErrInvalidRoastLevel  = errors.New("invalid roast level")
	ErrInvalidProcess     = errors.New("invalid process method")
	ErrInvalidRoastDate   = errors.New("roast date must be YYYY-MM-DD")
)

// BrewSettings are the fields shared by shots and recipes.
type BrewSettings struct {
	BeanName    string        `json:"beanName"`
	BrewType    BrewType      `json:"brewType"`
	Basket      Basket        `json:"basket"`
	GrindSize   int           `json:"grindSize"`
	Temperature *Temperature  `json:"temperature,omitempty"`
	Strength    Strength      `json:"strength"`
	Milk        *MilkSettings `json:"milk,omitempty"`
	Notes       string        `json:"notes,omitempty"`
}

// DefaultBrewSettings mirrors the initial state of a fresh shot form.
func DefaultBrewSettings() BrewSettings {
	return BrewSettings{
		BrewType:    BrewEspresso,
		Basket:      BasketDouble,
		GrindSize:   12,
		Temperature: Ptr(TempMed),
		Strength:    2,
	}
}

// Validate checks the settings. The bean name is required.
func (b *BrewSettings) Validate() error {
	name := strings.TrimSpace(b.BeanName)
	if name == "" {
		return ErrBeanNameRequired
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !b.BrewType.Valid() {
		return ErrInvalidBrewType
	}
	if !b.Basket.Valid() {
		return ErrInvalidBasket
	}
	if b.GrindSize < MinGrindSize || b.GrindSize > MaxGrindSize {
		return ErrGrindOutOfRange
	}
	if b.Temperature != nil && !b.Temperature.Valid() {
		return ErrInvalidTemperature
	}
	if !b.Strength.Valid() {
		return ErrInvalidStrength
	}
	if b.Milk != nil && !b.Milk.Valid() {
		return ErrInvalidMilk
	}
	if len(b.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// Normalize trims free text and drops the temperature for cold brew types.
func (b *BrewSettings) Normalize() {
	b.BeanName = strings.TrimSpace(b.BeanName)
	b.Notes = strings.TrimSpace(b.Notes)
	if b.BrewType.IsCold() {
		b.Temperature = nil
	}
}

// CreateShotRequest is the payload of the shot form.
type CreateShotRequest struct {
	BrewSettings
	Rating         Rating   `json:"rating"`
	ExtractionTime *float64 `json:"extractionTime,omitempty"`
}

// Validate checks the request before a shot is stored.
func (r *CreateShotRequest) Validate() error {
	if err := r.BrewSettings.Validate(); err != nil {
		return err
	}
	if !r.Rating.Valid() {
		return ErrInvalidRating
	}
	return nil
}

// ToShot builds a new record from the request.
func (r *CreateShotRequest) ToShot(id string, now time.Time) *ShotLog {
	s := r.BrewSettings
	s.Normalize()
	return &ShotLog{
		ID:             id,
		BeanName:       s.BeanName,
		BrewType:       s.BrewType,
		Basket:         s.Basket,
		GrindSize:      s.GrindSize,
		Temperature:    s.Temperature,
		Strength:       s.Strength,
		Rating:         r.Rating,
		Milk:           s.Milk,
		Notes:          s.Notes,
		ExtractionTime: r.ExtractionTime,
		Timestamp:      now,
	}
}

// ShotRequestFrom pre-fills a form from an existing shot.
func ShotRequestFrom(s *ShotLog) CreateShotRequest {
	return CreateShotRequest{
		BrewSettings: BrewSettings{
			BeanName:    s.BeanName,
			BrewType:    s.BrewType,
			Basket:      s.Basket,
			GrindSize:   s.GrindSize,
			Temperature: s.Temperature,
			Strength:    s.Strength,
			Milk:        s.Milk,
			Notes:       s.Notes,
		},
		Rating: s.Rating,
	}
}

// RecipeRequest creates or updates a saved recipe.
type RecipeRequest struct {
	Name string `json:"name"`
	BrewSettings
}

// Validate checks the recipe name and its settings.
func (r *RecipeRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return ErrNameRequired
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return r.BrewSettings.Validate()
}

// Apply copies the request onto recipe, keeping its id and creation time.
func (r *RecipeRequest) Apply(recipe *SavedRecipe) {
	s := r.BrewSettings
	s.Normalize()
	recipe.Name = strings.TrimSpace(r.Name)
	recipe.BeanName = s.BeanName
	recipe.BrewType = s.BrewType
	recipe.Basket = s.Basket
	recipe.GrindSize = s.GrindSize
	recipe.Temperature = s.Temperature
	recipe.Strength = s.Strength
	recipe.Milk = s.Milk
	recipe.Notes = s.Notes
}

// ShotRequest turns the recipe into a pre-filled shot form. The rating is
// left at Balanced, the form default.
func (r *SavedRecipe) ShotRequest() CreateShotRequest {
	return CreateShotRequest{
		BrewSettings: BrewSettings{
			BeanName:    r.BeanName,
			BrewType:    r.BrewType,
			Basket:      r.Basket,
			GrindSize:   r.GrindSize,
			Temperature: r.Temperature,
			Strength:    r.Strength,
			Milk:        r.Milk,
			Notes:       r.Notes,
		},
		Rating: RatingBalanced,
	}
}

// BeanProfileRequest creates or updates a bean profile.
type BeanProfileRequest struct {
	Name          string         `json:"name"`
	Roaster       string         `json:"roaster,omitempty"`
	Origin        string         `json:"origin,omitempty"`
	RoastLevel    *RoastLevel    `json:"roastLevel,omitempty"`
	ProcessMethod *ProcessMethod `json:"processMethod,omitempty"`
	RoastDate     *string        `json:"roastDate,omitempty"`
	FlavorNotes   string         `json:"flavorNotes,omitempty"`
	IsActive      *bool          `json:"isActive,omitempty"`
}

// Validate checks the profile fields.
func (r *BeanProfileRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return ErrNameRequired
	}
	if len(name) > MaxNameLength || len(r.Roaster) > MaxNameLength || len(r.Origin) > MaxNameLength {
		return ErrNameTooLong
	}
	if r.RoastLevel != nil && !slices.Contains(RoastLevels, *r.RoastLevel) {
		return ErrInvalidRoastLevel
	}
	if r.ProcessMethod != nil && !slices.Contains(ProcessMethods, *r.ProcessMethod) {
		return ErrInvalidProcess
	}
	if r.RoastDate != nil && *r.RoastDate != "" {
		if _, err := time.Parse(RoastDateLayout, *r.RoastDate); err != nil {
			return ErrInvalidRoastDate
		}
	}
	if len(r.FlavorNotes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// Apply copies the request onto bean. New profiles default to active.
func (r *BeanProfileRequest) Apply(bean *BeanProfile) {
	bean.Name = strings.TrimSpace(r.Name)
	bean.Roaster = strings.TrimSpace(r.Roaster)
	bean.Origin = strings.TrimSpace(r.Origin)
	bean.RoastLevel = r.RoastLevel
	bean.ProcessMethod = r.ProcessMethod
	bean.RoastDate = r.RoastDate
	if bean.RoastDate != nil && *bean.RoastDate == "" {
		bean.RoastDate = nil
	}
	bean.FlavorNotes = strings.TrimSpace(r.FlavorNotes)
	if r.IsActive != nil {
		bean.IsActive = *r.IsActive
	}
}
