package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/spawn/internal/config"
	"github.com/vango-dev/spawn/pkg/publish"
)

func publishCmd(g *globals) *cobra.Command {
	var (
		bucket string
		prefix string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "publish FILE...",
		Short: "Render descriptor documents and upload them to S3",
		Long: `Render each FILE and upload the pages to the configured bucket.
Keys are the publish prefix followed by the page name, so
pages/about.yaml becomes <prefix>about.html.

Credentials come from publish.access_key_id and
publish.secret_access_key, usually set as SPAWN_PUBLISH_ACCESS_KEY_ID
and SPAWN_PUBLISH_SECRET_ACCESS_KEY. Set publish.endpoint and
publish.path_style for S3-compatible stores.

Examples:
  spawn publish pages/*.yaml
  spawn publish index.json --bucket=site --prefix=preview/ --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if bucket != "" {
				cfg.Publish.Bucket = bucket
			}
			if cmd.Flags().Changed("prefix") {
				cfg.Publish.Prefix = prefix
			}
			if err := cfg.ValidatePublish(); err != nil {
				return err
			}

			logger := g.logger(cfg)
			c := g.cache(cfg, logger)
			w := cmd.OutOrStdout()

			objs := make([]publish.Object, 0, len(args))
			for _, path := range args {
				b, err := buildFile(path, c, logger)
				if err != nil {
					return err
				}
				b.reportDiagnostics(cmd.ErrOrStderr())
				out, err := b.html(cfg, false)
				if err != nil {
					return err
				}
				objs = append(objs, publish.Object{Name: outputName(path), Body: out})
			}

			p := newPublisher(cfg, nil)
			if dryRun {
				for _, o := range objs {
					info(w, "would upload s3://%s/%s (%d bytes)", cfg.Publish.Bucket, p.Key(o.Name), len(o.Body))
				}
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p = newPublisher(cfg, publish.NewS3Client(publish.S3Options{
				Region:          cfg.Publish.Region,
				Endpoint:        cfg.Publish.Endpoint,
				PathStyle:       cfg.Publish.PathStyle,
				AccessKeyID:     cfg.Publish.AccessKeyID,
				SecretAccessKey: cfg.Publish.SecretAccessKey,
			}), publish.WithLogger(logger))

			results, err := p.Publish(ctx, objs)
			if err != nil {
				return err
			}
			for _, r := range results {
				if r.Skipped {
					info(w, "unchanged s3://%s/%s", cfg.Publish.Bucket, r.Key)
					continue
				}
				success(w, "s3://%s/%s (%d bytes)", cfg.Publish.Bucket, r.Key, r.Size)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Bucket to upload to (default from config)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the keys without uploading")

	return cmd
}

// newPublisher builds a publisher from the publish settings.
func newPublisher(cfg *config.Config, client publish.Client, opts ...publish.Option) *publish.Publisher {
	opts = append([]publish.Option{
		publish.WithPrefix(cfg.Publish.Prefix),
		publish.WithConcurrency(cfg.Publish.Concurrency),
		publish.WithSkipUnchanged(cfg.Publish.SkipUnchanged),
		publish.WithCacheControl(cfg.Publish.CacheControl),
	}, opts...)
	return publish.New(client, cfg.Publish.Bucket, opts...)
}
