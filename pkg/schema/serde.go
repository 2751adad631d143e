package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

var ErrTooFewOpts = errors.New("too few options")

// A Serde encodes values into the registry wire format: a magic byte,
// the big-endian schema ID, then the Avro payload.
type Serde interface {
	Encode(v any) ([]byte, error)
}

type Opt func(*serdeOpts) error

type serdeOpts struct {
	subject string
	si      SchemaIdentifier
}

func SubjectOpt(subject string) Opt {
	return func(so *serdeOpts) error {
		if subject == "" {
			return errors.New("subject is empty string")
		}
		so.subject = subject
		return nil
	}
}

func SchemaIdentifierOpt(sc SchemaIdentifier) Opt {
	return func(so *serdeOpts) error {
		if sc == nil {
			return errors.New("schema identifier is nil")
		}
		so.si = sc
		return nil
	}
}

// NewSerdeCatalogViewV1 registers [CatalogViewSchemaTextV1] under the
// subject and returns a Serde for [CatalogViewV1]. Both options are
// required.
func NewSerdeCatalogViewV1(ctx context.Context, opts ...Opt) (Serde, error) {
	const op = "NewSerdeCatalogViewV1"

	if len(opts) != 2 {
		return nil, fmt.Errorf("%s: %w", op, ErrTooFewOpts)
	}

	var so serdeOpts
	for _, o := range opts {
		if err := o(&so); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	avroSchema, err := avro.Parse(CatalogViewSchemaTextV1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := so.si.DetermineID(ctx, so.subject, CatalogViewSchemaTextV1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := new(sr.Serde)
	s.Register(id, CatalogViewV1{}, sr.EncodeFn(func(v any) ([]byte, error) {
		return avro.Marshal(avroSchema, v)
	}))
	return s, nil
}
