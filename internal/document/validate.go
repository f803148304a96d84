package document

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validation errors.
var (
	ErrPartialLinks = errors.New("references, citedIn and related must be set together")
	ErrKeyMismatch  = errors.New("corpus key does not match document id")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateLinks, Document{})
	return v
}

// validateLinks enforces the all-or-nothing rule for link fields.
func validateLinks(sl validator.StructLevel) {
	d := sl.Current().Interface().(Document)
	set := 0
	for _, links := range [][]string{d.References, d.CitedIn, d.Related} {
		if links != nil {
			set++
		}
	}
	if set != 0 && set != 3 {
		sl.ReportError(d.CitedIn, "CitedIn", "citedIn", "links", "")
	}
}

// Validate checks a single document.
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Tag() == "links" {
					return fmt.Errorf("document %q: %w", d.ID, ErrPartialLinks)
				}
			}
		}
		return fmt.Errorf("document %q: %w", d.ID, err)
	}
	return nil
}

// Validate checks every document and that each key matches its document ID.
func (c Corpus) Validate() error {
	for _, id := range c.IDs() {
		d := c[id]
		if d.ID != id {
			return fmt.Errorf("key %q holds document %q: %w", id, d.ID, ErrKeyMismatch)
		}
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}
