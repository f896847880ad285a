// Package cache wraps the account directory with a Redis read-through
// layer. Org rosters change rarely but are read on every assigned-lead
// fan-out, so short-TTL caching keeps the notification path off DynamoDB.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/pkg/logger"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/service/notification"
)

const defaultTTL = 5 * time.Minute

// Directory is a read-through cache over a notification.Directory. Cache
// failures degrade to the underlying source, never to an error.
type Directory struct {
	redis  *redis.Client
	source notification.Directory
	ttl    time.Duration
}

// NewDirectory wraps source with a Redis cache. A ttl of zero uses the
// default of five minutes.
func NewDirectory(client *redis.Client, source notification.Directory, ttl time.Duration) *Directory {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Directory{redis: client, source: source, ttl: ttl}
}

func memberKey(orgID string) string {
	return fmt.Sprintf("directory:org:%s:members", orgID)
}

// OrgMembers returns the org's roster, serving from Redis when a fresh
// copy exists.
func (d *Directory) OrgMembers(ctx context.Context, orgID string) ([]domain.Recipient, error) {
	key := memberKey(orgID)

	cached, err := d.redis.Get(ctx, key).Result()
	if err == nil {
		var members []domain.Recipient
		if err := json.Unmarshal([]byte(cached), &members); err == nil {
			return members, nil
		}
		// Corrupt entry; fall through to the source and rewrite it.
		logger.Warn("discarding corrupt directory cache entry", "org_id", orgID)
	} else if !errors.Is(err, redis.Nil) {
		logger.Warn("directory cache read failed", "org_id", orgID, "error", err.Error())
	}

	members, err := d.source.OrgMembers(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(members); err == nil {
		if err := d.redis.Set(ctx, key, payload, d.ttl).Err(); err != nil {
			logger.Warn("directory cache write failed", "org_id", orgID, "error", err.Error())
		}
	}
	return members, nil
}

// Invalidate drops the cached roster for an org, forcing the next read
// back to the source.
func (d *Directory) Invalidate(ctx context.Context, orgID string) error {
	return d.redis.Del(ctx, memberKey(orgID)).Err()
}
