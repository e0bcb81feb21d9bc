package providers

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// StringFieldsSchema exige un objeto con los campos dados presentes y de tipo
// string. Se aceptan campos adicionales.
func StringFieldsSchema(fields ...string) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	for _, f := range fields {
		s = s.WithProperty(f, openapi3.NewStringSchema())
	}
	s.Required = append([]string(nil), fields...)
	return s
}

// ValidateAgainst valida raw contra schema y envuelve el error en ErrProfileShape.
func ValidateAgainst(schema *openapi3.Schema, raw RawProfile) error {
	if raw == nil {
		return fmt.Errorf("%w: empty profile", ErrProfileShape)
	}
	if err := schema.VisitJSON(map[string]any(raw)); err != nil {
		return fmt.Errorf("%w: %v", ErrProfileShape, err)
	}
	return nil
}

// Str lee un campo ya validado.
func Str(raw RawProfile, key string) string {
	s, _ := raw[key].(string)
	return s
}
