// Package seed fetches the initial library dataset. The merge policy lives
// in the service: seed books overwrite the stored catalog, seed users are
// merged without overwriting.
package seed

import (
	"context"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Opnex/Ai-Developer-Library/library/internal/errs"
	"github.com/Opnex/Ai-Developer-Library/library/internal/model"
	cb "github.com/Opnex/Ai-Developer-Library/pkg/circuit_breaker"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	URL     string        `yaml:"url" envconfig:"SEED_URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"SEED_TIMEOUT" default:"10s"`
}

type Fetcher interface {
	Fetch(ctx context.Context) (model.SeedData, error)
}

type fetcher struct {
	url     string
	client  *http.Client
	breaker cb.CircuitBreaker
	log     *zap.Logger
}

func New(cfg Config, log *zap.Logger) *fetcher {
	const (
		cbWindow     = 10
		cbTimeout    = 30 * time.Second
		cbPercentile = 0.5
		cbRecovery   = 2
	)
	return &fetcher{
		url: cfg.URL,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: cb.New(cbWindow, cbTimeout, cbPercentile, cbRecovery),
		log:     log.Named("seed"),
	}
}

// Fetch GETs the seed document. One shot, no retry: a failure is recovered
// by falling back to whatever is persisted, which is the caller's job.
// Public search re-fetches per request, so calls go through the breaker.
func (f *fetcher) Fetch(ctx context.Context) (model.SeedData, error) {
	if f.url == "" {
		return model.SeedData{}, errs.ErrSeedUnavailable
	}

	var data model.SeedData
	err := f.breaker.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, http.NoBody)
		if err != nil {
			return err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return errors.Errorf("seed fetch: unexpected status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&data)
	})
	if err != nil {
		f.log.Warn("seed fetch failed, falling back to stored data", zap.Error(err))
		return model.SeedData{}, errors.Wrap(errs.ErrSeedUnavailable, err.Error())
	}
	return data, nil
}
