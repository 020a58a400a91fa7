// Package models defines server-side data models persisted in the database.
package models

// Recipe combines scalar attributes with sets of ingredients and tags that
// belong to the same owner.
type Recipe struct {
	ID          int64
	UserID      int64
	Title       string
	TimeMinutes int
	Price       Price
	Link        string
	// Image is the object-storage key of the uploaded picture, if any.
	Image *string

	IngredientIDs []int64
	TagIDs        []int64

	// Ingredients and Tags are filled only when a detail view is loaded.
	Ingredients []*Ingredient
	Tags        []*Tag
}

// RecipeFilter narrows a recipe listing to recipes having any of the given
// tags and any of the given ingredients.
type RecipeFilter struct {
	TagIDs        []int64
	IngredientIDs []int64
}
