package document

import (
	"efile/internal/filing/models"
	dErrors "efile/pkg/domain-errors"
)

// Blank returns the canonical empty document for a form.
func Blank(form models.FilingType) (Document, error) {
	doc, ok := newTyped(form)
	if !ok {
		return nil, dErrors.Validation(dErrors.KindUnsupportedFilingType,
			"no form template for "+form.String())
	}
	h := doc.Common()
	h.FormType = form
	h.Meta = Meta{FormName: form.FormName(), SchemaVersion: form.SchemaVersion()}
	h.Directory.Reindex()
	doc.(normalizer).normalize()
	return doc, nil
}
