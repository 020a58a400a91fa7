// Package serializers maps between stored records and their JSON
// representations and validates incoming payloads.
package serializers

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/dmitrijs2005/recipeapi/internal/common"
	"github.com/dmitrijs2005/recipeapi/internal/server/models"
)

const maxNameLength = 255

// Label is the wire form of a tag or an ingredient.
type Label struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func NewLabel(l *models.Label) Label {
	return Label{ID: l.ID, Name: l.Name}
}

func NewLabels(ls []*models.Label) []Label {
	out := make([]Label, 0, len(ls))
	for _, l := range ls {
		out = append(out, NewLabel(l))
	}
	return out
}

// LabelWrite is the accepted payload for creating or updating a label. The id
// is read-only and any incoming value is dropped during decoding.
type LabelWrite struct {
	Name *string `json:"name"`
}

// Validate checks the payload; with partial set, absent fields are allowed.
func (p LabelWrite) Validate(partial bool) error {
	nameRules := []validation.Rule{validation.Required}
	if partial {
		nameRules = []validation.Rule{validation.NilOrNotEmpty}
	}
	nameRules = append(nameRules, validation.Length(1, maxNameLength))

	return common.FromValidation(validation.ValidateStruct(&p,
		validation.Field(&p.Name, nameRules...),
	))
}
