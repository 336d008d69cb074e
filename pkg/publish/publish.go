// Package publish uploads rendered pages to S3 or an S3-compatible store.
//
// Uploads run concurrently up to a limit and stop at the first failure:
//
//	client := publish.NewS3Client(publish.S3Options{Region: "eu-west-1"})
//	p := publish.New(client, "my-bucket", publish.WithPrefix("site/"))
//	results, err := p.Publish(ctx, objects)
//
// An object's key is the prefix followed by its name.
package publish

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"

	spawnerrors "github.com/vango-dev/spawn/internal/errors"
	"github.com/vango-dev/spawn/pkg/metrics"
)

// Metadata key holding the hex SHA-256 of the object body.
const digestKey = "content-sha256"

// Client is the part of *s3.Client used for publishing.
type Client interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Object is one file to publish.
type Object struct {
	// Name is appended to the prefix to form the key.
	Name string

	Body []byte

	// ContentType defaults to the type registered for Name's extension.
	ContentType string
}

// Result describes one published object.
type Result struct {
	Key     string
	Size    int
	Skipped bool
}

// Publisher uploads objects to one bucket.
type Publisher struct {
	client        Client
	bucket        string
	prefix        string
	concurrency   int
	skipUnchanged bool
	cacheControl  string
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithPrefix sets the key prefix, e.g. "site/".
func WithPrefix(prefix string) Option {
	return func(p *Publisher) { p.prefix = prefix }
}

// WithConcurrency limits parallel uploads. Values below 1 mean 1.
func WithConcurrency(n int) Option {
	return func(p *Publisher) {
		if n < 1 {
			n = 1
		}
		p.concurrency = n
	}
}

// WithSkipUnchanged skips objects whose stored digest matches.
func WithSkipUnchanged(skip bool) Option {
	return func(p *Publisher) { p.skipUnchanged = skip }
}

// WithCacheControl sets the Cache-Control header of every object.
func WithCacheControl(v string) Option {
	return func(p *Publisher) { p.cacheControl = v }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records each upload.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

// New returns a publisher for bucket.
func New(client Client, bucket string, opts ...Option) *Publisher {
	p := &Publisher{
		client:      client,
		bucket:      bucket,
		concurrency: 4,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key returns the key an object name is stored under.
func (p *Publisher) Key(name string) string {
	return p.prefix + name
}

// Publish uploads objs. On failure the remaining uploads are cancelled and
// the first error is returned; results are in input order either way.
func (p *Publisher) Publish(ctx context.Context, objs []Object) ([]Result, error) {
	results := make([]Result, len(objs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, obj := range objs {
		g.Go(func() error {
			res, err := p.put(ctx, obj)
			p.metrics.RecordUpload(err)
			if err != nil {
				return spawnerrors.New("S061").WithDetailf("%s", p.Key(obj.Name)).Wrap(err)
			}
			results[i] = res
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

func (p *Publisher) put(ctx context.Context, obj Object) (Result, error) {
	key := p.Key(obj.Name)
	sum := sha256.Sum256(obj.Body)
	digest := hex.EncodeToString(sum[:])

	if p.skipUnchanged {
		same, err := p.unchanged(ctx, key, digest)
		if err != nil {
			return Result{}, err
		}
		if same {
			p.logger.Debug("publish skipped", "key", key)
			return Result{Key: key, Size: len(obj.Body), Skipped: true}, nil
		}
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(obj.Name))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	in := &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(obj.Body),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			digestKey:      digest,
			"publish-time": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if p.cacheControl != "" {
		in.CacheControl = aws.String(p.cacheControl)
	}

	if _, err := p.client.PutObject(ctx, in); err != nil {
		return Result{}, fmt.Errorf("put %s: %w", key, err)
	}
	p.logger.Info("published", "bucket", p.bucket, "key", key, "bytes", len(obj.Body))
	return Result{Key: key, Size: len(obj.Body)}, nil
}

func (p *Publisher) unchanged(ctx context.Context, key, digest string) (bool, error) {
	out, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, fmt.Errorf("head %s: %w", key, err)
	}
	return out.Metadata[digestKey] == digest, nil
}

// S3Options configures NewS3Client.
type S3Options struct {
	Region string

	// Endpoint overrides the service endpoint for S3-compatible stores.
	Endpoint string

	// PathStyle addresses buckets as endpoint/bucket.
	PathStyle bool

	// AccessKeyID and SecretAccessKey are static credentials. When empty
	// the client sends anonymous requests.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// NewS3Client builds an S3 client from explicit options.
func NewS3Client(opts S3Options) *s3.Client {
	o := s3.Options{
		Region:       opts.Region,
		UsePathStyle: opts.PathStyle,
	}
	if opts.Endpoint != "" {
		o.BaseEndpoint = aws.String(opts.Endpoint)
	}
	if opts.AccessKeyID != "" {
		creds := aws.Credentials{
			AccessKeyID:     opts.AccessKeyID,
			SecretAccessKey: opts.SecretAccessKey,
			SessionToken:    opts.SessionToken,
			Source:          "spawn",
		}
		o.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) { return creds, nil },
		))
	} else {
		o.Credentials = aws.AnonymousCredentials{}
	}
	return s3.New(o)
}
