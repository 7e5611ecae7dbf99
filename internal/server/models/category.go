package models

// Category is a flat, case-insensitively unique label for documents.
type Category struct {
	ID          string
	Name        string
	Description string
}
