// cmd/cropimages/main.go - Crops the marketing images to their exact display sizes
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/studioleflow/portal/internal/imagebatch"
	"github.com/studioleflow/portal/internal/logging"
)

type options struct {
	preset   string
	root     string
	logLevel string

	bucket    string
	endpoint  string
	accessKey string
	secretKey string
	region    string
	useSSL    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "cropimages: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:   "cropimages",
		Short: "Crop and encode the marketing images",
		Long: `cropimages cover-fits every image of a preset to its exact output size and writes
JPEGs next to the public site. Items that fail are logged and skipped; the run still succeeds.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.preset, "preset", "p", "all", "Preset to run: equipment, services or all")
	f.StringVar(&opts.root, "root", ".", "Directory the preset inputs and outputs are relative to")
	f.StringVar(&opts.logLevel, "log-level", "info", "Log level")
	f.StringVar(&opts.bucket, "upload-bucket", "", "Also publish outputs to this S3 bucket")
	f.StringVar(&opts.endpoint, "s3-endpoint", getEnv("S3_ENDPOINT", "localhost:9000"), "S3-compatible endpoint")
	f.StringVar(&opts.accessKey, "s3-access-key", getEnv("S3_ACCESS_KEY", ""), "S3 access key")
	f.StringVar(&opts.secretKey, "s3-secret-key", getEnv("S3_SECRET_KEY", ""), "S3 secret key")
	f.StringVar(&opts.region, "s3-region", getEnv("S3_REGION", "us-east-1"), "S3 region")
	f.BoolVar(&opts.useSSL, "s3-ssl", getBool("S3_USE_SSL", false), "Use TLS for the S3 endpoint")
	return cmd
}

func run(ctx context.Context, opts options) error {
	presets, err := selectPresets(opts.preset)
	if err != nil {
		return err
	}

	logger, err := logging.New(opts.logLevel, "console")
	if err != nil {
		return err
	}
	defer logger.Sync()

	p := &imagebatch.Processor{Root: opts.root, Log: logger}
	if opts.bucket != "" {
		up, err := imagebatch.NewS3Uploader(imagebatch.S3Config{
			Endpoint:  opts.endpoint,
			AccessKey: opts.accessKey,
			SecretKey: opts.secretKey,
			Region:    opts.region,
			Bucket:    opts.bucket,
			UseSSL:    opts.useSSL,
		})
		if err != nil {
			return err
		}
		if err := up.EnsureBucket(ctx); err != nil {
			return err
		}
		p.Uploader = up
		logger.Info("publishing to bucket", zap.String("bucket", opts.bucket))
	}

	for _, preset := range presets {
		rep, err := p.Run(ctx, preset)
		if err != nil {
			return fmt.Errorf("preset %s: %w", preset.Name, err)
		}
		for _, f := range rep.Failed {
			logger.Warn("skipped", zap.String("input", f.Item.Input), zap.Error(f.Err))
		}
	}
	return nil
}

func selectPresets(name string) ([]imagebatch.Preset, error) {
	if name == "all" {
		names := make([]string, 0, len(imagebatch.Presets))
		for n := range imagebatch.Presets {
			names = append(names, n)
		}
		sort.Strings(names)
		out := make([]imagebatch.Preset, 0, len(names))
		for _, n := range names {
			out = append(out, imagebatch.Presets[n])
		}
		return out, nil
	}
	p, ok := imagebatch.Presets[name]
	if !ok {
		return nil, errors.New("unknown preset " + strconv.Quote(name))
	}
	return []imagebatch.Preset{p}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
