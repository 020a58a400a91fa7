package models

// Label is the shape shared by tags and ingredients: a user-owned name
// attachable to recipes.
type Label struct {
	ID     int64
	UserID int64
	Name   string
}

type (
	Tag        = Label
	Ingredient = Label
)
