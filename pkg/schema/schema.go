package schema

import (
	"context"

	"github.com/twmb/franz-go/pkg/sr"
)

// A SchemaIdentifier resolves the registry ID of a schema text under a
// subject, registering it when needed.
type SchemaIdentifier interface {
	DetermineID(ctx context.Context, subject string, schemaText string) (int, error)
}

type SchemaCreater interface {
	CreateSchema(ctx context.Context, subject string, s sr.Schema) (sr.SubjectSchema, error)
}

type schemaCreater struct {
	cl SchemaCreater
}

func NewSchemaCreater(cl SchemaCreater) SchemaIdentifier {
	return schemaCreater{cl}
}

func (c schemaCreater) DetermineID(
	ctx context.Context, subject string, schemaText string,
) (int, error) {
	ss, err := c.cl.CreateSchema(ctx, subject, sr.Schema{
		Type:   sr.TypeAvro,
		Schema: schemaText,
	})
	if err != nil {
		return 0, err
	}
	return ss.ID, nil
}
