package document

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "efile/pkg/domain-errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checker accumulates field errors across struct-tag and reference checks.
type checker struct {
	fields []dErrors.FieldError
}

func (c *checker) add(field, format string, args ...any) {
	c.fields = append(c.fields, dErrors.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) structTags(doc any) error {
	err := validate.Struct(doc)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "document validation failed")
	}
	for _, fe := range verrs {
		c.fields = append(c.fields, dErrors.FieldError{Field: fieldPath(fe.Namespace()), Message: tagMessage(fe)})
	}
	return nil
}

func (c *checker) header(h *Header, want string) {
	if string(h.FormType) != want {
		c.add("form", "must be %s", want)
	}
	if h.FilingID.IsNil() {
		c.add("filing_id", "is required")
	}
	if h.Amendment && (h.AmendsID == nil || h.AmendsID.IsNil()) {
		c.add("amends_id", "is required for an amendment")
	}
	for _, dup := range h.Directory.Duplicates() {
		c.add("directory.entity", "duplicate id %s", dup)
	}
}

// roster checks that every row of a schedule references a dated directory entity.
func (c *checker) roster(schedule, refKey string, rows []Row, dir *Directory) {
	for i, row := range rows {
		field := fmt.Sprintf("%s[%d].%s", schedule, i, refKey)
		ref := row.Ref(refKey)
		if ref == "" {
			c.add(field, "is required")
			continue
		}
		e, ok := dir.Entity(ref)
		if !ok {
			c.add(field, "references unknown directory entity %s", ref)
			continue
		}
		if e.EffectiveDate.IsZero() {
			c.add(field, "directory entity %s has no effective_date", ref)
		}
	}
}

func (c *checker) result() error {
	if len(c.fields) == 0 {
		return nil
	}
	return dErrors.Validation(dErrors.KindSchema, "document failed validation", c.fields...)
}

// fieldPath turns Ec601.Header.filer.email into filer.email.
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	out := parts[:0]
	for i, p := range parts {
		if i == 0 || p == "Header" {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "len":
		return "must have length " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
