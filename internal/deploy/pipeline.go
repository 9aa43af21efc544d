// Package deploy packages a site template and publishes it through a
// deployments API.
package deploy

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/m3rciful/sitebot/core/logger"
)

// Resolver maps a template name to its directory.
type Resolver interface {
	Resolve(product string) (string, error)
}

// Uploader sends an archive and returns the deployment host.
type Uploader interface {
	Upload(ctx context.Context, archive, name string) (string, error)
}

// Options tunes a Pipeline; zero values pick defaults.
type Options struct {
	WorkDir       string
	Timeout       time.Duration
	MaxConcurrent int
}

func (o Options) withDefaults() Options {
	if o.WorkDir == "" {
		o.WorkDir = filepath.Join(os.TempDir(), "sitebot")
	}
	if o.Timeout <= 0 {
		o.Timeout = 2 * time.Minute
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 2
	}
	return o
}

// Pipeline copies a template, zips it and uploads the archive.
type Pipeline struct {
	resolver Resolver
	uploader Uploader
	opts     Options
	sem      *semaphore.Weighted
}

// NewPipeline returns a Pipeline bounded to opts.MaxConcurrent publishes.
func NewPipeline(resolver Resolver, uploader Uploader, opts Options) *Pipeline {
	opts = opts.withDefaults()
	return &Pipeline{
		resolver: resolver,
		uploader: uploader,
		opts:     opts,
		sem:      semaphore.NewWeighted(int64(opts.MaxConcurrent)),
	}
}

// Publish deploys template under target and returns its https URL. scope
// separates the working copies of different conversations.
func (p *Pipeline) Publish(ctx context.Context, template, target, scope string) (string, error) {
	src, err := p.resolver.Resolve(template)
	if err != nil {
		return "", err
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", errors.Wrap(err, "wait for deploy slot")
	}
	defer p.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	id := uuid.NewString()
	workDir := filepath.Join(p.opts.WorkDir, scope+"-"+id)
	archive := filepath.Join(p.opts.WorkDir, target+"-"+id+".zip")
	defer p.cleanup(ctx, workDir, archive)

	start := time.Now()
	if err := os.MkdirAll(p.opts.WorkDir, 0o755); err != nil {
		return "", errors.Wrap(err, "create work dir")
	}
	if err := CopyTree(src, workDir); err != nil {
		return "", errors.Wrapf(err, "copy template %s", template)
	}
	files, err := ZipDir(workDir, archive)
	if err != nil {
		return "", err
	}
	logger.Debug(ctx, "deploy", "deploy.packaged",
		slog.String("product", template),
		slog.String("site", target),
		slog.Int("count", files),
		slog.Duration("duration", logger.Took(start)),
	)

	host, err := p.uploader.Upload(ctx, archive, target)
	if err != nil {
		var apiErr *APIError
		attrs := []slog.Attr{
			slog.String("status", "fail"),
			slog.String("site", target),
			slog.Duration("duration", logger.Took(start)),
			logger.Err(err),
		}
		if errors.As(err, &apiErr) {
			attrs = append(attrs, slog.Int("http_code", apiErr.StatusCode))
		}
		logger.Warn(ctx, "deploy", "deploy.upload", attrs...)
		return "", errors.Wrap(err, "upload archive")
	}

	url := PublicURL(host)
	logger.Info(ctx, "deploy", "deploy.upload",
		slog.String("status", "ok"),
		slog.String("product", template),
		slog.String("site", target),
		slog.String("url", url),
		slog.Duration("duration", logger.Took(start)),
	)
	return url, nil
}

func (p *Pipeline) cleanup(ctx context.Context, paths ...string) {
	for _, path := range paths {
		if err := os.RemoveAll(path); err != nil {
			logger.Debug(ctx, "deploy", "deploy.cleanup", slog.String("path", path), logger.Err(err))
		}
	}
}
