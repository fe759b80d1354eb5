package repository

import (
	"fmt"
	"time"

	cfg "c2paview/src/configuration"
	"c2paview/src/presenter"

	"github.com/dgraph-io/ristretto"
	"github.com/sirupsen/logrus"
)

type (
	// CredentialsDB keeps credential summaries for a short while so hover
	// cards do not re-run the slow C2PA extraction.
	CredentialsDB interface {
		Put(uri string, summary presenter.Credentials) error
		Get(uri string) (presenter.Credentials, bool)
		Connect() bool
		Close()
	}
	TTLCache struct {
		cache  *ristretto.Cache
		ttl    time.Duration
		logger *logrus.Logger
	}
)

const (
	cacheCounters = 10_000
	cacheMaxCost  = 1 << 20
)

func NewCredentialsDataBase(config *cfg.Properties, logger *logrus.Logger) (CredentialsDB, error) {
	if config == nil {
		return nil, fmt.Errorf("config is not valid")
	}
	if config.Viewer.CredentialsTTL <= 0 {
		return nil, fmt.Errorf("credentials ttl must be positive, got %s", config.Viewer.CredentialsTTL)
	}
	return &TTLCache{ttl: config.Viewer.CredentialsTTL, logger: logger}, nil
}

func (c *TTLCache) Connect() bool {
	if c.cache != nil {
		return true
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cacheCounters,
		MaxCost:     cacheMaxCost,
		BufferItems: 64,
	})
	if err != nil {
		c.logger.WithError(err).Error("can not create credentials cache")
		return false
	}
	c.cache = cache
	return true
}

// Put stores a summary. It is visible to Get once Put returns.
func (c *TTLCache) Put(uri string, summary presenter.Credentials) error {
	if c.cache == nil {
		return fmt.Errorf("can not store credentials, connection is off")
	}
	if !c.cache.SetWithTTL(uri, summary, 1, c.ttl) {
		return fmt.Errorf("credentials for %s were dropped by the cache", uri)
	}
	c.cache.Wait()
	c.logger.WithFields(logrus.Fields{"uri": uri, "ttl": c.ttl}).Debug("cached credentials")
	return nil
}

func (c *TTLCache) Get(uri string) (presenter.Credentials, bool) {
	if c.cache == nil {
		return presenter.Credentials{}, false
	}
	v, ok := c.cache.Get(uri)
	if !ok {
		return presenter.Credentials{}, false
	}
	summary, ok := v.(presenter.Credentials)
	return summary, ok
}

func (c *TTLCache) Close() {
	if c.cache != nil {
		c.cache.Close()
		c.cache = nil
	}
}
