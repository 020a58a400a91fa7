// Package labels stores tags and ingredients. Both kinds share one schema
// shape and differ only in the tables they live in.
package labels

// Kind names the table of a label kind and the junction table linking it to
// recipes.
type Kind struct {
	Name           string
	Table          string
	JunctionTable  string
	JunctionColumn string
}

var (
	Tags = Kind{
		Name:           "tag",
		Table:          "tags",
		JunctionTable:  "recipe_tags",
		JunctionColumn: "tag_id",
	}
	Ingredients = Kind{
		Name:           "ingredient",
		Table:          "ingredients",
		JunctionTable:  "recipe_ingredients",
		JunctionColumn: "ingredient_id",
	}
)
