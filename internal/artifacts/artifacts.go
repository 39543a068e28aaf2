// Package artifacts loads the reference choices and the classifier once at
// start-up.
package artifacts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"loan-approval/internal/classifier"
	"loan-approval/internal/common/config"
	"loan-approval/internal/common/database"
	"loan-approval/internal/common/errors"
	commonhttp "loan-approval/internal/common/http"
	"loan-approval/internal/common/logger"
	"loan-approval/internal/common/metrics"
	"loan-approval/internal/models"
	"loan-approval/internal/reference"
)

const (
	ArtifactReference = "reference"
	ArtifactModel     = "model"
)

// Artifacts is read-only after Load returns. When Err is set both Choices
// and Classifier are nil and pages render with empty choice lists.
type Artifacts struct {
	Choices    *reference.Choices
	Classifier classifier.Classifier
	Err        error
	LoadedAt   time.Time
}

// Ready reports whether both artifacts are available.
func (a *Artifacts) Ready() bool {
	return a != nil && a.Err == nil && a.Classifier != nil
}

// Load reads both artifacts concurrently. It never returns an error; a
// failure of either artifact is recorded in Err.
func Load(ctx context.Context, cfg config.Config, log logger.Logger) *Artifacts {
	log = log.WithFields(map[string]interface{}{"component": "artifacts"})
	start := time.Now()

	var (
		choices *reference.Choices
		clf     classifier.Classifier

		mu       sync.Mutex
		firstErr error
	)
	fail := func(artifact string, err error) error {
		metrics.ArtifactLoadFailures.WithLabelValues(artifact).Inc()
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = errors.NewArtifactLoadFailedError(artifact, err)
		}
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := LoadChoices(gctx, cfg, log)
		if err != nil {
			return fail(ArtifactReference, err)
		}
		choices = c
		return nil
	})
	g.Go(func() error {
		c, err := LoadClassifier(cfg.Artifacts.Model)
		if err != nil {
			return fail(ArtifactModel, err)
		}
		clf = c
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Warn("artifact load failed", map[string]interface{}{
			"error": firstErr,
		})
		return &Artifacts{Err: firstErr, LoadedAt: time.Now()}
	}

	log.Info("artifacts loaded", map[string]interface{}{
		"referenceDriver": cfg.Artifacts.Reference.Driver,
		"remoteModel":     cfg.Artifacts.Model.Endpoint != "",
		"durationMs":      time.Since(start).Milliseconds(),
	})
	return &Artifacts{Choices: choices, Classifier: clf, LoadedAt: time.Now()}
}

// LoadChoices snapshots every categorical column from the configured
// reference store. Database connections are closed before it returns.
func LoadChoices(ctx context.Context, cfg config.Config, log logger.Logger) (*reference.Choices, error) {
	ref := cfg.Artifacts.Reference

	var lister reference.Lister
	switch ref.Driver {
	case "", "csv":
		table, err := reference.LoadCSV(ref.Path)
		if err != nil {
			return nil, err
		}
		lister = table

	case "postgres", "sqlite":
		db, err := database.OpenReference(ctx, ref.Driver, cfg.Database)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		if lister, err = reference.NewSQLSource(db.DB, ref.Table); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unsupported reference driver %q", ref.Driver)
	}

	if ref.Cache {
		rc := database.NewRedis(cfg.Database.Redis)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn("choice cache unreachable, reading reference store directly", map[string]interface{}{"error": err})
		}
		lister = reference.NewCachedSource(lister, rc.Client, config.GetDuration(ref.CacheTTL), log)
	}

	return reference.Snapshot(ctx, lister, models.CategoricalColumns)
}

// LoadClassifier returns a remote client when an endpoint is configured and
// otherwise decodes the pipeline file.
func LoadClassifier(cfg config.ModelConfig) (classifier.Classifier, error) {
	if cfg.Endpoint != "" {
		return classifier.NewRemote(commonhttp.NewClient(config.GetDuration(cfg.Timeout)), cfg.Endpoint), nil
	}
	return classifier.LoadFile(cfg.Path)
}
