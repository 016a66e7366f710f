package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/axiomhq/axiom-go/axiom"
	"github.com/axiomhq/axiom-go/axiom/ingest"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesJSONToFileWithService(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "app.log")
	require.NoError(t, Init(Options{Level: "debug", File: file, MaxSizeMB: 1}))
	defer Close()

	l := ForRequest("req-7")
	l.Info().Str("stage", "normalize").Msg("llm stage started")
	log.Debug().Msg("debug line")

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "nfsextract", first["service"])
	assert.Equal(t, "req-7", first["request_id"])
	assert.Equal(t, "normalize", first["stage"])
	assert.Equal(t, "info", first["level"])
}

func TestInitFallsBackToInfoLevel(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Init(Options{Level: "loud", File: file, Service: "svc"}))
	defer Close()

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hidden")
	assert.Contains(t, string(raw), `"service":"svc"`)
}

func TestAxiomWriterFiltersAndStamps(t *testing.T) {
	ac := &axiomClient{ch: make(chan axiom.Event, 4)}
	w := &axiomWriter{client: ac, min: zerolog.InfoLevel}

	for _, line := range []string{
		`{"level":"debug","message":"dropped"}`,
		`{"level":"warn","time":"2024-03-09T12:00:00Z","service":"nfsextract","message":"kept"}`,
		`not json`,
	} {
		n, err := w.Write([]byte(line))
		require.NoError(t, err)
		assert.Equal(t, len(line), n)
	}

	require.Len(t, ac.ch, 2)
	kept := <-ac.ch
	assert.Equal(t, "kept", kept["message"])
	assert.Equal(t, "2024-03-09T12:00:00Z", kept[ingest.TimestampField])

	raw := <-ac.ch
	assert.Equal(t, "not json", raw["message"])
	assert.Equal(t, "info", raw["level"])
	assert.Contains(t, raw, ingest.TimestampField)
}
