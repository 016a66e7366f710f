package sink

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/nfsextract/internal/metrics"
	"github.com/local/nfsextract/internal/nfse"
)

// Outcome is the record of one /generate request handed to the sinks after
// the response has been decided. Sinks never feed back into a request.
type Outcome struct {
	RequestID string        `json:"request_id"`
	Filename  string        `json:"filename"`
	Result    string        `json:"result"`
	Status    int           `json:"status"`
	Message   string        `json:"message"`
	Bytes     int           `json:"bytes"`
	Duration  time.Duration `json:"-"`
	At        time.Time     `json:"at"`

	PDF      []byte         `json:"-"`
	Envelope *nfse.Envelope `json:"-"`
}

// Sink is a write-only destination for outcomes.
type Sink interface {
	Name() string
	Record(ctx context.Context, o Outcome) error
}

// Fanout records to every sink and logs failures. It never returns an error.
type Fanout []Sink

func (f Fanout) Record(ctx context.Context, o Outcome) {
	for _, s := range f {
		if err := s.Record(ctx, o); err != nil {
			metrics.IncSinkError(s.Name())
			log.Warn().Err(err).Str("sink", s.Name()).Str("request_id", o.RequestID).Msg("failed to record outcome")
		}
	}
}
