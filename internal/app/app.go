package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter/catalog"
	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/internal/adapter/page"
	"github.com/niksmo/storefront/internal/adapter/price"
	"github.com/niksmo/storefront/internal/adapter/s3"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type outbound struct {
	catalog port.CatalogFetcher
	prices  port.PriceFormatter
	views   port.CatalogViewProducer
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	viewsSerde schema.Serde
	outbound   outbound
	service    service.Service
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	InitLogger(cfg.LogLevel, cfg.LogFormat)
	app.initSerdes()
	app.initOutboundAdapters()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

// InitLogger sets the default logger writing to stderr in format "json"
// or "text".
func InitLogger(level slog.Leveler, format string) {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func (app *App) initSerdes() {
	const op = "App.initSerdes"

	if !app.cfg.ViewsEnabled() {
		slog.Info("catalog views are disabled", "op", op)
		return
	}

	srClient, err := sr.NewClient(sr.URLs(app.cfg.Broker.SchemaRegistryURLs...))
	if err != nil {
		app.fallDown(op, err)
	}

	viewsSerde, err := schema.NewSerdeCatalogViewV1(
		app.ctx,
		schema.SubjectOpt(app.cfg.Broker.ViewsTopic+"-value"),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.viewsSerde = viewsSerde
}

func (app *App) initOutboundAdapters() {
	const op = "App.initOutboundAdapters"
	cfg := app.cfg

	app.outbound.catalog = catalog.New(
		cfg.Catalog.URL,
		catalog.HTTPClientOpt(&http.Client{Timeout: cfg.Catalog.Timeout}),
		catalog.RetryOpt(cfg.Catalog.MaxAttempts, cfg.Catalog.RetryBackoff),
		catalog.ValidateShapeOpt(cfg.Catalog.ValidateShape),
		catalog.MaxBodyBytesOpt(cfg.Catalog.MaxBodyBytes),
	)

	prices, err := price.NewFormatter(cfg.Locale.Language, cfg.Locale.Currency)
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.prices = prices

	if app.viewsSerde == nil {
		return
	}

	viewsProducer, err := kafka.NewViewsProducer(
		kafka.ProducerClientOpt(app.ctx, cfg.Broker.SeedBrokers, cfg.Broker.ViewsTopic),
		kafka.ProducerEncoderOpt(app.viewsSerde),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.views = viewsProducer
}

func (app *App) initCoreService() {
	app.service = service.New(
		app.outbound.catalog,
		app.outbound.prices,
		app.outbound.views,
	)
}

func (app *App) initInboundAdapters() {
	handler := httphandler.NewRouter(app.service, page.NewPage)
	app.httpServer = httphandler.NewHTTPServer(
		httphandler.ServerConfig{
			Addr:              app.cfg.HTTP.Addr,
			ReadHeaderTimeout: app.cfg.HTTP.ReadHeaderTimeout,
			IdleTimeout:       app.cfg.HTTP.IdleTimeout,
			HandlerTimeout:    app.cfg.HTTP.HandlerTimeout,
		},
		handler,
	)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

// RenderPage runs the pipeline once on a fresh document and returns the
// rendered page.
func (app *App) RenderPage(ctx context.Context) ([]byte, error) {
	const op = "App.RenderPage"

	doc, err := page.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app.service.FetchProducts(ctx, doc)

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

// PublishPage uploads body to the configured bucket under key.
func (app *App) PublishPage(ctx context.Context, key string, body []byte) error {
	const op = "App.PublishPage"

	publisher, err := s3.NewPublisher(s3.Config{
		Region:    app.cfg.S3.Region,
		Bucket:    app.cfg.S3.Bucket,
		Endpoint:  app.cfg.S3.Endpoint,
		AccessKey: app.cfg.S3.AccessKey,
		SecretKey: app.cfg.S3.SecretKey,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := publisher.PublishPage(ctx, key, body); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close stops the HTTP server and flushes producers. Call it once.
func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	if app.outbound.views != nil {
		app.outbound.views.Close()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
