package serializers

import (
	"errors"
	"math"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/dmitrijs2005/recipeapi/internal/common"
	"github.com/dmitrijs2005/recipeapi/internal/server/models"
	"github.com/dmitrijs2005/recipeapi/internal/server/services"
)

const maxLinkLength = 255

var errPriceRange = errors.New("ensure that there are no more than 5 digits in total")

// Recipe is the list and write form: ingredients and tags are ids.
type Recipe struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Ingredients []int64      `json:"ingredients"`
	Tags        []int64      `json:"tags"`
	TimeMinutes int          `json:"time_minutes"`
	Price       models.Price `json:"price"`
	Link        string       `json:"link"`
	Image       *string      `json:"image"`
}

// RecipeDetail expands ingredients and tags into nested objects.
type RecipeDetail struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Ingredients []Label      `json:"ingredients"`
	Tags        []Label      `json:"tags"`
	TimeMinutes int          `json:"time_minutes"`
	Price       models.Price `json:"price"`
	Link        string       `json:"link"`
	Image       *string      `json:"image"`
}

// RecipeImage is returned by the image upload endpoint.
type RecipeImage struct {
	ID    int64   `json:"id"`
	Image *string `json:"image"`
}

// NewRecipe renders r in list form. image is the client-facing link, if any.
func NewRecipe(r *models.Recipe, image *string) Recipe {
	return Recipe{
		ID:          r.ID,
		Title:       r.Title,
		Ingredients: nonNil(r.IngredientIDs),
		Tags:        nonNil(r.TagIDs),
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Image:       image,
	}
}

// NewRecipeDetail renders r with expanded references.
func NewRecipeDetail(r *models.Recipe, image *string) RecipeDetail {
	return RecipeDetail{
		ID:          r.ID,
		Title:       r.Title,
		Ingredients: NewLabels(r.Ingredients),
		Tags:        NewLabels(r.Tags),
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Image:       image,
	}
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

// RecipeWrite is the accepted payload for creating or updating a recipe.
type RecipeWrite struct {
	Title       *string       `json:"title"`
	Ingredients *[]int64      `json:"ingredients"`
	Tags        *[]int64      `json:"tags"`
	TimeMinutes *int          `json:"time_minutes"`
	Price       *models.Price `json:"price"`
	Link        *string       `json:"link"`
}

// Validate checks the payload; with partial set, absent fields are allowed.
func (p RecipeWrite) Validate(partial bool) error {
	titleRules := []validation.Rule{validation.Required}
	var required []validation.Rule
	if partial {
		titleRules = []validation.Rule{validation.NilOrNotEmpty}
	} else {
		required = []validation.Rule{validation.NotNil}
	}
	titleRules = append(titleRules, validation.Length(1, maxNameLength))

	return common.FromValidation(validation.ValidateStruct(&p,
		validation.Field(&p.Title, titleRules...),
		validation.Field(&p.TimeMinutes, append(required, validation.Min(math.MinInt32), validation.Max(math.MaxInt32))...),
		validation.Field(&p.Price, append(required, validation.By(checkPrice))...),
		validation.Field(&p.Link, validation.Length(0, maxLinkLength)),
	))
}

func checkPrice(value interface{}) error {
	var p models.Price
	switch v := value.(type) {
	case *models.Price:
		if v == nil {
			return nil
		}
		p = *v
	case models.Price:
		p = v
	default:
		return nil
	}

	if p > models.MaxPrice || p < -models.MaxPrice {
		return errPriceRange
	}
	return nil
}

// Input converts the payload into service input.
func (p RecipeWrite) Input() services.RecipeInput {
	return services.RecipeInput{
		Title:         p.Title,
		TimeMinutes:   p.TimeMinutes,
		Price:         p.Price,
		Link:          p.Link,
		IngredientIDs: p.Ingredients,
		TagIDs:        p.Tags,
	}
}
