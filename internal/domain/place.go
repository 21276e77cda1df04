package domain

// PlaceSuggestion is an autocomplete candidate from the mapping service.
type PlaceSuggestion struct {
	PlaceID       string
	Description   string
	MainText      string
	SecondaryText string
	IsAirport     bool
}

// Place is a resolved location.
type Place struct {
	PlaceID   string
	Name      string
	Address   string
	Location  Point
	Types     []string
	IsAirport bool
}
