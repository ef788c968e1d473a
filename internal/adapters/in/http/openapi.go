package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var openapiSpec []byte

var (
	errUnknownSchema = errors.New("unknown request schema")

	loadSpecOnce sync.Once
	loadedSpec   *openapi3.T
	loadSpecErr  error
)

// Spec returns the parsed and validated API document.
func Spec() (*openapi3.T, error) {
	loadSpecOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(openapiSpec)
		if err != nil {
			loadSpecErr = fmt.Errorf("load openapi document: %w", err)
			return
		}
		if err = doc.Validate(context.Background()); err != nil {
			loadSpecErr = fmt.Errorf("validate openapi document: %w", err)
			return
		}
		loadedSpec = doc

		raw, err := doc.MarshalJSON()
		if err != nil {
			loadSpecErr = fmt.Errorf("encode openapi document: %w", err)
			return
		}
		swag.Register(swag.Name, swaggerDoc(raw))
	})
	return loadedSpec, loadSpecErr
}

// swaggerDoc serves the document at /swagger/doc.json.
type swaggerDoc []byte

func (d swaggerDoc) ReadDoc() string {
	return string(d)
}

// bodyValidator checks raw request bodies against the component schemas of the document.
type bodyValidator struct {
	doc *openapi3.T
}

func (v bodyValidator) validate(schemaName string, raw []byte) error {
	ref, ok := v.doc.Components.Schemas[schemaName]
	if !ok || ref.Value == nil {
		return fmt.Errorf("%w: %s", errUnknownSchema, schemaName)
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return err
	}
	return ref.Value.VisitJSON(value)
}
