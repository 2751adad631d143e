package schema_test

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/sr"
)

type MockSchemaIdentifier struct {
	mock.Mock
}

func (c *MockSchemaIdentifier) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (id int, err error) {
	args := c.Called(ctx, subject, avroSchemaText)
	return args.Int(0), args.Error(1)
}

type MockSchemaCreater struct {
	mock.Mock
}

func (c *MockSchemaCreater) CreateSchema(
	ctx context.Context, subject string, s sr.Schema,
) (sr.SubjectSchema, error) {
	args := c.Called(ctx, subject, s)
	return args.Get(0).(sr.SubjectSchema), args.Error(1)
}

func TestSerdeCatalogViewV1(t *testing.T) {

	t.Run("NoOpts", func(t *testing.T) {
		_, err := schema.NewSerdeCatalogViewV1(t.Context())
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("OneOpt", func(t *testing.T) {
		_, err := schema.NewSerdeCatalogViewV1(
			t.Context(),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("EmptySubject", func(t *testing.T) {
		_, err := schema.NewSerdeCatalogViewV1(
			t.Context(),
			schema.SubjectOpt(""),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		require.Error(t, err)
	})

	t.Run("IdentifierError", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		subject := "catalog-views-value"
		registryErr := errors.New("registry unavailable")

		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.CatalogViewSchemaTextV1,
		).Return(0, registryErr)

		_, err := schema.NewSerdeCatalogViewV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.ErrorIs(t, err, registryErr)
	})

	t.Run("Encode", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		schemaID := 1
		subject := "catalog-views-value"

		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.CatalogViewSchemaTextV1,
		).Return(schemaID, nil)

		serde, err := schema.NewSerdeCatalogViewV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.NoError(t, err)

		view1 := schema.CatalogViewV1{
			RunID:      "8f0d5c43-1f1e-4c59-a0a4-3a2f3b1d9a11",
			Outcome:    "rendered",
			Products:   20,
			DurationMs: 135,
			ViewedAt:   time.Date(2025, 3, 4, 5, 6, 7, 8_000_000, time.UTC),
		}

		encodedData, err := serde.Encode(view1)
		require.NoError(t, err)

		require.Greater(t, len(encodedData), 5)
		assert.Zero(t, encodedData[0])
		assert.EqualValues(t, schemaID, binary.BigEndian.Uint32(encodedData[1:5]))

		avroSchema, err := avro.Parse(schema.CatalogViewSchemaTextV1)
		require.NoError(t, err)

		var view2 schema.CatalogViewV1
		err = avro.Unmarshal(avroSchema, encodedData[5:], &view2)
		require.NoError(t, err)

		assert.Equal(t, view1.RunID, view2.RunID)
		assert.Equal(t, view1.Outcome, view2.Outcome)
		assert.Equal(t, view1.Products, view2.Products)
		assert.Equal(t, view1.DurationMs, view2.DurationMs)
		assert.Equal(t, view1.Error, view2.Error)
		assert.True(t, view1.ViewedAt.Equal(view2.ViewedAt))
	})
}

func TestSchemaCreater(t *testing.T) {
	creater := new(MockSchemaCreater)
	subject := "catalog-views-value"
	creater.On("CreateSchema", t.Context(), subject, sr.Schema{
		Type:   sr.TypeAvro,
		Schema: schema.CatalogViewSchemaTextV1,
	}).Return(sr.SubjectSchema{ID: 42}, nil)

	id, err := schema.NewSchemaCreater(creater).DetermineID(
		t.Context(), subject, schema.CatalogViewSchemaTextV1,
	)
	require.NoError(t, err)
	assert.Equal(t, 42, id)
	creater.AssertExpectations(t)
}
