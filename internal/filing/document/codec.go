package document

import (
	"encoding/json"
	"fmt"

	"efile/internal/filing/models"
	dErrors "efile/pkg/domain-errors"
)

type normalizer interface {
	normalize()
}

func newTyped(form models.FilingType) (Document, bool) {
	switch form {
	case models.FilingTypeEC601:
		return &Ec601{}, true
	case models.FilingTypeEC603:
		return &Ec603{}, true
	}
	return nil, false
}

// Supported reports whether the form has a typed document definition.
func Supported(form models.FilingType) bool {
	_, ok := newTyped(form)
	return ok
}

// Decode parses a raw document, dispatching on its "form" field. Columns the
// form does not define are dropped.
func Decode(data []byte) (Document, error) {
	var discriminator struct {
		Form models.FilingType `json:"form"`
	}
	if err := json.Unmarshal(data, &discriminator); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "document is not valid JSON")
	}
	doc, ok := newTyped(discriminator.Form)
	if !ok {
		return nil, dErrors.Validation(dErrors.KindUnsupportedFilingType,
			fmt.Sprintf("form %q is not implemented", discriminator.Form))
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, dErrors.Validation(dErrors.KindSchema, "document does not match form "+discriminator.Form.String(),
			dErrors.FieldError{Field: "form", Message: err.Error()})
	}
	if n, ok := doc.(normalizer); ok {
		n.normalize()
	}
	return doc, nil
}

// Encode serializes a document for storage.
func Encode(doc Document) ([]byte, error) {
	if n, ok := doc.(normalizer); ok {
		n.normalize()
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s document: %w", doc.Form(), err)
	}
	return b, nil
}

// Clone returns a deep copy of doc.
func Clone(doc Document) (Document, error) {
	b, err := Encode(doc)
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

func nonNil(rows []Row) []Row {
	if rows == nil {
		return []Row{}
	}
	return rows
}

func withKeys(m map[string]*string, keys []string) map[string]*string {
	if m == nil {
		m = make(map[string]*string, len(keys))
	}
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			m[k] = nil
		}
	}
	return m
}
