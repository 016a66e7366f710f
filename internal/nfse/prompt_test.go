package nfse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildNormalizePromptEmbedsTextVerbatim(t *testing.T) {
	raw := "NFS-e 0001\n  Prestador: ACME {x}\n" + strings.Repeat("linha ", 5000)

	p := BuildNormalizePrompt(raw)

	assert.Contains(t, p, raw)
	assert.True(t, strings.HasPrefix(p, "\nVocê é um assistente inteligente"))
	assert.Contains(t, p, `escreva "Não encontrado"`)
	assert.Contains(t, p, "=== TOMADOR ===")
	assert.Contains(t, p, "=== PRESTADOR ===")
	assert.Contains(t, p, "=== DADOS DA NOTA ===")
	assert.Equal(t, len(normalizeHead)+len(raw)+len(normalizeTail), len(p))
}

func TestBuildJSONPromptCarriesSchema(t *testing.T) {
	organized := "=== TOMADOR ===\nNome: Beta"

	p := BuildJSONPrompt(organized)

	assert.Contains(t, p, organized)
	assert.True(t, strings.HasSuffix(p, "Retorne APENAS o JSON:\n    "))
	for _, k := range append(append([]string{}, notaKeys...), partyKeys...) {
		assert.Contains(t, p, `"`+k+`"`, k)
	}
	assert.Contains(t, p, `"tipo": "inbox"`)
}
