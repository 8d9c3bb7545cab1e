package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// CachedRuleRepository is a read-through redis cache in front of a rule
// repository. Cache failures fall back to the backing repository.
type CachedRuleRepository struct {
	next  RuleRepository
	store redis.KeyValueStore
	ttl   time.Duration
	logg  *logger.Logger
}

// NewCachedRuleRepository wraps next with a redis-backed cache.
func NewCachedRuleRepository(next RuleRepository, store redis.KeyValueStore, ttl time.Duration, logg *logger.Logger) (*CachedRuleRepository, error) {
	if next == nil {
		return nil, fmt.Errorf("rule repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("cache store required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive")
	}
	return &CachedRuleRepository{next: next, store: store, ttl: ttl, logg: logg}, nil
}

// FindActiveRules serves from cache when possible and populates it on a miss.
func (c *CachedRuleRepository) FindActiveRules(ctx context.Context, accountType enums.AccountType) ([]models.DiscountRule, error) {
	key := c.store.PricingRulesKey(accountType.String())

	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var rules []models.DiscountRule
		decodeErr := json.Unmarshal([]byte(raw), &rules)
		if decodeErr == nil {
			return rules, nil
		}
		c.warn(ctx, accountType, "pricing rule cache payload unreadable", decodeErr)
	case !redis.IsMiss(err):
		c.warn(ctx, accountType, "pricing rule cache read failed", err)
	}

	rules, err := c.next.FindActiveRules(ctx, accountType)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(rules)
	if err != nil {
		c.warn(ctx, accountType, "pricing rule cache encode failed", err)
		return rules, nil
	}
	if err := c.store.Set(ctx, key, payload, c.ttl); err != nil {
		c.warn(ctx, accountType, "pricing rule cache write failed", err)
	}
	return rules, nil
}

// Invalidate drops the cached rule set for accountType.
func (c *CachedRuleRepository) Invalidate(ctx context.Context, accountType enums.AccountType) error {
	if err := c.store.Del(ctx, c.store.PricingRulesKey(accountType.String())); err != nil {
		return fmt.Errorf("invalidate pricing rules for %s: %w", accountType, err)
	}
	return nil
}

func (c *CachedRuleRepository) warn(ctx context.Context, accountType enums.AccountType, msg string, err error) {
	if c.logg == nil {
		return
	}
	ctx = c.logg.WithFields(ctx, map[string]any{
		"account_type": accountType.String(),
		"error":        err.Error(),
	})
	c.logg.Warn(ctx, msg)
}
