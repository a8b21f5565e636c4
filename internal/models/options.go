package models

// Dropdown options for form fields
// These constants keep the CLI, the API and the calculators on one value set

var (
	// Ratings is the taste scale in order from most under- to most over-extracted
	Ratings = []Rating{
		RatingVerySour,
		RatingSour,
		RatingBalanced,
		RatingBitter,
		RatingVeryBitter,
	}

	// RatingColors maps each rating to its display color
	RatingColors = map[Rating]string{
		RatingVerySour:   "#E8A045",
		RatingSour:       "#D4915C",
		RatingBalanced:   "#7A9E6D",
		RatingBitter:     "#B85C5C",
		RatingVeryBitter: "#C04545",
	}

	// BrewTypes defines the available brew type options
	BrewTypes = []BrewType{
		BrewEspresso,
		BrewDripCoffee,
		BrewColdBrew,
		BrewColdPressed,
		BrewOverIce,
	}

	// Baskets defines the available portafilter basket options
	Baskets = []Basket{
		BasketDouble,
		BasketLuxe,
	}

	// Temperatures is ordered from coolest to warmest
	Temperatures = []Temperature{
		TempLow,
		TempMed,
		TempHigh,
	}

	// Strengths pairs each strength with its label
	Strengths = []StrengthOption{
		{Value: 1, Label: "1 Mild"},
		{Value: 2, Label: "2 Classic"},
		{Value: 3, Label: "3 Rich"},
	}

	MilkTypes = []MilkType{
		MilkDairy,
		MilkPlant,
	}

	MilkStyles = []MilkStyle{
		MilkSteamed,
		MilkThin,
		MilkThick,
		MilkColdFoam,
	}

	// RoastLevels defines the available roast level options for beans
	RoastLevels = []RoastLevel{
		RoastLight,
		RoastMedium,
		RoastMediumDark,
		RoastDark,
	}

	// ProcessMethods defines the available processing options for beans
	ProcessMethods = []ProcessMethod{
		ProcessWashed,
		ProcessNatural,
		ProcessHoney,
		ProcessAnaerobic,
		ProcessOther,
	}

	// Themes lists the supported UI themes
	Themes = []string{
		"dark",
		"light",
		"espresso",
	}
)

// StrengthOption is a strength value with its human label
type StrengthOption struct {
	Value Strength `json:"value"`
	Label string   `json:"label"`
}
