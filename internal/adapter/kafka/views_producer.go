package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.CatalogViewProducer = (*ViewsProducer)(nil)

// A ViewsProducer produces [domain.CatalogView] records keyed by run ID.
type ViewsProducer struct {
	cl       ProducerClient
	encoder  Encoder
	opPrefix string
}

func NewViewsProducer(opts ...ProducerOpt) (ViewsProducer, error) {
	const op = "NewViewsProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return ViewsProducer{}, opErr(err, op)
		}
	}

	return ViewsProducer{
		cl:       options.cl,
		encoder:  options.encoder,
		opPrefix: "ViewsProducer",
	}, nil
}

func (p ViewsProducer) Close() {
	const op = "Close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p ViewsProducer) ProduceView(
	ctx context.Context, v domain.CatalogView,
) error {
	const op = "ProduceView"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	value, err := p.encoder.Encode(toSchemaV1(v))
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r := &kgo.Record{Key: []byte(v.RunID), Value: value}
	res := p.cl.ProduceSync(ctx, r)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

func toSchemaV1(v domain.CatalogView) (s schema.CatalogViewV1) {
	s.RunID = v.RunID
	s.Outcome = string(v.Outcome)
	s.Products = int64(v.Products)
	s.DurationMs = v.Duration.Milliseconds()
	s.Error = v.Error
	s.ViewedAt = v.ViewedAt
	return
}
