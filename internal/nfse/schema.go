package nfse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildEnvelopeJSONSchema describes the object the convert stage is asked to
// emit. Leaves are strings; extra keys are tolerated because Merge drops them.
func BuildEnvelopeJSONSchema() map[string]any {
	party := objectOf(partyKeys, nil)
	nota := objectOf(notaKeys, map[string]any{"tomador": party, "prestador": party})
	arquivo := objectOf([]string{"nome", "tipo"}, nil)
	dados := map[string]any{
		"type":       "object",
		"properties": map[string]any{"nota": nota, "arquivo": arquivo},
		"required":   []string{"nota"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sucesso":  map[string]any{"type": "boolean"},
			"mensagem": map[string]any{"type": "string"},
			"dados":    dados,
		},
		"required": []string{"dados"},
	}
}

func objectOf(stringKeys []string, nested map[string]any) map[string]any {
	props := make(map[string]any, len(stringKeys)+len(nested))
	for _, k := range stringKeys {
		props[k] = map[string]any{"type": "string"}
	}
	required := make([]string, 0, len(nested))
	for k, v := range nested {
		props[k] = v
		required = append(required, k)
	}
	out := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

var (
	envelopeSchemaOnce sync.Once
	envelopeSchema     *jsonschema.Schema
	envelopeSchemaErr  error
)

func compiledEnvelopeSchema() (*jsonschema.Schema, error) {
	envelopeSchemaOnce.Do(func() {
		b, err := json.Marshal(BuildEnvelopeJSONSchema())
		if err != nil {
			envelopeSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("nfse.json", bytes.NewReader(b)); err != nil {
			envelopeSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		envelopeSchema, envelopeSchemaErr = compiler.Compile("nfse.json")
		if envelopeSchemaErr != nil {
			envelopeSchemaErr = fmt.Errorf("compile schema: %w", envelopeSchemaErr)
		}
	})
	return envelopeSchema, envelopeSchemaErr
}

// CheckConformance reports how far the decoded completion is from the
// requested shape. The result is advisory: Merge accepts any object, so
// callers log a non-nil error and carry on.
func CheckConformance(parsed map[string]any) error {
	schema, err := compiledEnvelopeSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(any(parsed)); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
