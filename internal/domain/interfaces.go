package domain

// ListItem is the polymorphic interface for entities shown in a list row.
// Movie, Topic, Actor and Game implement it directly.
type ListItem interface {
	// GetID returns the unique identifier for this item
	GetID() string

	// GetTitle returns the display title
	GetTitle() string

	// GetDescription returns secondary info for display (e.g., "2024 · US" for movies)
	GetDescription() string
}
