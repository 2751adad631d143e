package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/app"
	"github.com/niksmo/storefront/pkg/sigctx"
	"github.com/spf13/pflag"
)

const (
	configFlag = "config"
	outFlag    = "out"
	s3KeyFlag  = "s3-key"

	closeTimeout = 5 * time.Second

	exitOK      = 0
	exitFailure = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath, out, s3Key := getFlagsValues()

	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg, err := config.LoadFile(config.FilepathFromEnv(configPath))
	if err != nil {
		fmt.Printf("failed to load config file: %v\n", err)
		return exitFailure
	}

	snapshot := app.New(sigCtx, cfg)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		snapshot.Close(ctx)
	}()

	return publish(sigCtx, snapshot, out, s3Key)
}

type pagePublisher interface {
	RenderPage(ctx context.Context) ([]byte, error)
	PublishPage(ctx context.Context, key string, body []byte) error
}

func publish(ctx context.Context, p pagePublisher, out, s3Key string) int {
	body, err := p.RenderPage(ctx)
	if err != nil {
		slog.Error("failed to render page", "err", err)
		return exitFailure
	}

	if err := writeOut(out, body); err != nil {
		slog.Error("failed to write page", "out", out, "err", err)
		return exitFailure
	}

	if s3Key == "" {
		return exitOK
	}

	if err := p.PublishPage(ctx, s3Key, body); err != nil {
		slog.Error("failed to publish page", "key", s3Key, "err", err)
		return exitFailure
	}
	return exitOK
}

func getFlagsValues() (configPath, out, s3Key string) {
	c := pflag.StringP(configFlag, "c", "/config.yaml", "config file")
	o := pflag.StringP(outFlag, "o", "-", "output file, - for stdout")
	k := pflag.StringP(s3KeyFlag, "k", "", "upload the page to s3.bucket under this key")
	pflag.Parse()
	return *c, *o, *k
}

func writeOut(out string, body []byte) error {
	if out == "-" {
		_, err := os.Stdout.Write(body)
		return err
	}
	return os.WriteFile(out, body, 0o644)
}
