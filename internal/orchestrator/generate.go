package orchestrator

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/local/nfsextract/internal/logger"
	"github.com/local/nfsextract/internal/metrics"
	"github.com/local/nfsextract/internal/mupdf"
	"github.com/local/nfsextract/internal/nfse"
	"github.com/local/nfsextract/internal/sink"
)

const (
	msgNoFile      = "Arquivo PDF não enviado"
	msgNoText      = "PDF não contém texto extraível"
	msgPDFError    = "Erro ao processar PDF: "
	msgStage1      = "Falha ao organizar texto com o LLaMA (Etapa 1)"
	msgStage2      = "Falha ao converter texto para JSON com o LLaMA (Etapa 2)"
	msgInvalidJSON = "Resposta do LLaMA não é um JSON válido"
	msgInternal    = "Erro interno ao processar a requisição"
	msgTooLarge    = "arquivo excede o limite de %d MB"
)

// Caller ids end up in logs, stream events and archive keys.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// generation carries what one /generate call has learned so far, for the
// response and for the outcome handed to the sinks.
type generation struct {
	requestID string
	filename  string
	pdf       []byte
	start     time.Time
	log       zerolog.Logger
}

func (o *Orchestrator) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	g := &generation{requestID: callerRequestID(r), start: time.Now()}
	g.log = logger.ForRequest(g.requestID)
	w.Header().Set("X-Request-ID", g.requestID)

	defer func() {
		if rec := recover(); rec != nil {
			g.log.Error().Interface("panic", rec).Msg("generate panicked")
			o.finish(w, g, http.StatusInternalServerError, "internal", nfse.NewErrorEnvelope(msgInternal))
		}
	}()

	limit := int64(o.deps.Server.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			g.log.Warn().Int64("limit", tooLarge.Limit).Msg("upload exceeds size limit")
			msg := msgPDFError + fmt.Sprintf(msgTooLarge, o.deps.Server.MaxUploadMB)
			o.finish(w, g, http.StatusRequestEntityTooLarge, "too_large", nfse.NewErrorEnvelope(msg))
			return
		}
		g.log.Warn().Err(err).Msg("could not parse multipart form")
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	data, filename, present, err := uploadedFile(r)
	if !present {
		o.finish(w, g, http.StatusBadRequest, "no_file", nfse.NewErrorEnvelope(msgNoFile))
		return
	}
	g.filename = filename
	if g.filename == "" {
		g.filename = o.deps.Server.DefaultFilename
	}
	g.pdf = data
	exportBase64 := strings.ToLower(r.FormValue("export_base64")) == "true"
	g.log = g.log.With().Str("file", g.filename).Logger()
	if err != nil {
		g.log.Error().Err(err).Msg("failed to read upload")
		o.finish(w, g, http.StatusInternalServerError, "pdf_error", nfse.NewErrorEnvelope(msgPDFError+err.Error()))
		return
	}
	g.log.Info().Int("bytes", len(g.pdf)).Bool("export_base64", exportBase64).Msg("generate request received")

	start := time.Now()
	text, err := o.deps.Extractor.ExtractText(r.Context(), g.pdf)
	metrics.ObserveStage("extract", time.Since(start))
	switch {
	case errors.Is(err, mupdf.ErrEmptyText):
		g.log.Warn().Msg("pdf has no text layer")
		o.finish(w, g, http.StatusBadRequest, "no_text", nfse.NewErrorEnvelope(msgNoText))
		return
	case err != nil:
		g.log.Error().Err(err).Msg("pdf extraction failed")
		o.finish(w, g, http.StatusInternalServerError, "pdf_error", nfse.NewErrorEnvelope(msgPDFError+err.Error()))
		return
	}
	g.log.Info().Int("chars", len(text)).Msg("text extracted")

	organized, err := o.runStage(r.Context(), g.requestID, stageNormalize, nfse.BuildNormalizePrompt(text))
	if err != nil {
		o.finish(w, g, http.StatusInternalServerError, "stage1", nfse.NewErrorEnvelope(msgStage1))
		return
	}
	g.log.Debug().Str("preview", preview(organized)).Msg("organized text")

	completion, err := o.runStage(r.Context(), g.requestID, stageConvert, nfse.BuildJSONPrompt(organized))
	if err != nil {
		o.finish(w, g, http.StatusInternalServerError, "stage2", nfse.NewErrorEnvelope(msgStage2))
		return
	}

	start = time.Now()
	parsed, err := nfse.ExtractJSON(completion)
	metrics.ObserveStage("sanitize", time.Since(start))
	if err != nil {
		g.log.Error().Err(err).Str("preview", preview(completion)).Msg("completion is not a json object")
		o.finish(w, g, http.StatusInternalServerError, "invalid_json", nfse.NewErrorEnvelope(msgInvalidJSON))
		return
	}
	if err := nfse.CheckConformance(parsed); err != nil {
		metrics.IncSchemaMismatch()
		g.log.Warn().Err(err).Msg("completion deviates from requested schema; merging anyway")
	}

	env := nfse.Merge(parsed)
	env.Dados.Arquivo.Nome = g.filename
	if exportBase64 {
		env.PDFBase64 = base64.StdEncoding.EncodeToString(g.pdf)
	}
	o.finish(w, g, http.StatusOK, "ok", env)
}

// finish writes the envelope, counts the result and hands the outcome to the sinks.
func (o *Orchestrator) finish(w http.ResponseWriter, g *generation, status int, result string, env nfse.Envelope) {
	writeEnvelope(w, status, env)
	metrics.IncRequest(result)

	dur := time.Since(g.start)
	lvl := zerolog.InfoLevel
	if status != http.StatusOK {
		lvl = zerolog.WarnLevel
	}
	g.log.WithLevel(lvl).Str("mensagem", env.Mensagem).Int("status", status).Str("result", result).Dur("duration", dur).Msg("generate finished")

	o.record(sink.Outcome{
		RequestID: g.requestID,
		Filename:  g.filename,
		Result:    result,
		Status:    status,
		Message:   env.Mensagem,
		Bytes:     len(g.pdf),
		Duration:  dur,
		At:        g.start,
		PDF:       g.pdf,
		Envelope:  &env,
	})
}

// callerRequestID reuses the caller's X-Request-ID when it is a plain token and
// generates a fresh one otherwise.
func callerRequestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); requestIDPattern.MatchString(id) {
		return id
	}
	return uuid.NewString()
}

// uploadedFile returns the "file" part. A part sent without a filename lands in
// the form values; it still counts as an upload, just an unnamed one.
func uploadedFile(r *http.Request) (data []byte, filename string, present bool, err error) {
	file, hdr, ferr := r.FormFile("file")
	if ferr == nil {
		defer file.Close()
		data, err = io.ReadAll(file)
		return data, hdr.Filename, true, err
	}
	if r.MultipartForm != nil {
		if vals, ok := r.MultipartForm.Value["file"]; ok && len(vals) > 0 {
			return []byte(vals[0]), "", true, nil
		}
	}
	return nil, "", false, nil
}
