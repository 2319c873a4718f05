package catalog

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/*.json
var schemaFS embed.FS

// Schemas validates documents against the embedded JSON Schemas.
type Schemas struct {
	index *gojsonschema.Schema
	quiz  *gojsonschema.Schema
}

// LoadSchemas compiles the embedded schemas.
func LoadSchemas() (*Schemas, error) {
	index, err := compileSchema("schema/courses.schema.json")
	if err != nil {
		return nil, err
	}
	q, err := compileSchema("schema/quiz.schema.json")
	if err != nil {
		return nil, err
	}
	return &Schemas{index: index, quiz: q}, nil
}

func compileSchema(name string) (*gojsonschema.Schema, error) {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", name, err)
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", name, err)
	}
	return s, nil
}

// ValidateIndex checks a courses document.
func (s *Schemas) ValidateIndex(doc []byte) error {
	return validate(s.index, "courses", doc)
}

// ValidateQuiz checks a quiz document.
func (s *Schemas) ValidateQuiz(doc []byte) error {
	return validate(s.quiz, "quiz", doc)
}

func validate(schema *gojsonschema.Schema, kind string, doc []byte) error {
	res, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %s document is not valid JSON: %v", ErrLoadFailure, kind, err)
	}
	if res.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: invalid %s document: %s", ErrLoadFailure, kind, strings.Join(msgs, "; "))
}
