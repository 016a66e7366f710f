package nfse

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Merge lays the decoded completion over the empty schema. Keys outside the
// schema are ignored, missing keys stay "", numbers and booleans are rendered
// as strings, and the "Não encontrado" / "-" placeholders collapse to "".
func Merge(parsed map[string]any) Envelope {
	env := emptyEnvelope()
	env.Sucesso = true
	if msg, ok := parsed["mensagem"].(string); ok {
		env.Mensagem = strings.TrimSpace(msg)
	}

	nota := locateNota(parsed)
	if nota == nil {
		return env
	}

	fields := env.Dados.Nota.fields()
	for _, key := range notaKeys {
		raw, ok := nota[key]
		if !ok {
			continue
		}
		v := leafString(raw)
		if v == "" && (key == "tipo" || key == "origem") {
			continue
		}
		*fields[key] = v
	}
	mergeParty(&env.Dados.Nota.Tomador, nota["tomador"])
	mergeParty(&env.Dados.Nota.Prestador, nota["prestador"])
	return env
}

// locateNota accepts the full envelope shape, a bare {"nota": ...} wrapper or
// the invoice object itself.
func locateNota(parsed map[string]any) map[string]any {
	if dados, ok := parsed["dados"].(map[string]any); ok {
		if nota, ok := dados["nota"].(map[string]any); ok {
			return nota
		}
	}
	if nota, ok := parsed["nota"].(map[string]any); ok {
		return nota
	}
	_, hasTomador := parsed["tomador"]
	_, hasPrestador := parsed["prestador"]
	if hasTomador || hasPrestador {
		return parsed
	}
	return nil
}

func mergeParty(dst *Party, raw any) {
	src, ok := raw.(map[string]any)
	if !ok {
		return
	}
	fields := dst.fields()
	for _, key := range partyKeys {
		if v, ok := src[key]; ok {
			*fields[key] = leafString(v)
		}
	}
}

func leafString(v any) string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		// null, objects and arrays have no string form in the schema
		return ""
	}
	s = strings.TrimSpace(s)
	if s == NotFound || s == "-" {
		return ""
	}
	return s
}
