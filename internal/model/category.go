// Package model defines the core domain types shared across the application.
package model

import "time"

// Category represents an expense category a couple splits spending into.
type Category struct {
	CreatedAt time.Time
	Name      string
	ID        int
	IsActive  bool
}

// UncategorizedName is the fallback bucket used when free-text input
// cannot be resolved against any known category.
const UncategorizedName = "Other"
