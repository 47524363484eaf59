package validation

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mrlokans/kotobi/internal/entities"
)

// Result is the outcome of validating a batch. Either Valid is true and
// Records holds every record in input order, or Valid is false, Records is
// nil and Error explains the first rejected record.
type Result struct {
	Valid   bool
	Records []entities.RawImportRecord
	Error   error
}

// recordInput mirrors one book of a portable document. Pointers distinguish
// a missing field from a zero value.
type recordInput struct {
	Title      *string             `json:"title" validate:"required,min=1"`
	Cover      *string             `json:"cover" validate:"required,min=1"`
	TotalPages *int                `json:"totalPages" validate:"required,gt=0"`
	PagesRead  *int                `json:"pagesRead" validate:"required,gte=0"`
	Status     *string             `json:"status" validate:"required,oneof=to-read reading completed"`
	Rating     *int                `json:"rating" validate:"omitempty,gte=0,lte=5"`
	CreatedAt  *string             `json:"createdAt" validate:"required"`
	UpdatedAt  *string             `json:"updatedAt" validate:"required"`
	CoverData  *entities.CoverData `json:"coverData"`
}

// Validate checks every record of a batch. A single bad record rejects the
// whole batch: no partial result is ever returned. Extra fields on a record
// are ignored; coverData is carried through untouched.
func Validate(records []json.RawMessage) Result {
	validated := make([]entities.RawImportRecord, 0, len(records))
	for i, raw := range records {
		rec, err := validateRecord(raw)
		if err != nil {
			return Result{Error: fmt.Errorf("book %d: %w", i+1, err)}
		}
		validated = append(validated, rec)
	}
	return Result{Valid: true, Records: validated}
}

func validateRecord(raw json.RawMessage) (entities.RawImportRecord, error) {
	var in recordInput
	if err := json.Unmarshal(raw, &in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return entities.RawImportRecord{}, fmt.Errorf("%w: %s has the wrong type", entities.ErrValidation, typeErr.Field)
		}
		return entities.RawImportRecord{}, fmt.Errorf("%w: record is not a JSON object", entities.ErrValidation)
	}
	if err := Struct(in); err != nil {
		return entities.RawImportRecord{}, err
	}
	if *in.PagesRead > *in.TotalPages {
		return entities.RawImportRecord{}, fmt.Errorf("%w: pagesRead must not exceed totalPages", entities.ErrValidation)
	}

	book := entities.ValidatedBook{
		Title:      *in.Title,
		Cover:      *in.Cover,
		TotalPages: *in.TotalPages,
		PagesRead:  *in.PagesRead,
		Status:     entities.Status(*in.Status),
		CreatedAt:  *in.CreatedAt,
		UpdatedAt:  *in.UpdatedAt,
	}
	if in.Rating != nil {
		book.Rating = *in.Rating
	}
	return entities.RawImportRecord{Book: book, CoverData: in.CoverData}, nil
}
