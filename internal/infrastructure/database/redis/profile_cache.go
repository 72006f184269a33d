package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/turtacn/CaseBridge/internal/domain/organization"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

// CachingProfileProvider decorates a ProfileProvider with a read-through
// Redis cache. Cache failures degrade to the backing provider; they are never
// fatal.
type CachingProfileProvider struct {
	backing organization.ProfileProvider
	client  *Client
	ttl     time.Duration
	logger  logging.Logger
}

// NewCachingProfileProvider wires the decorator. A zero ttl defaults to five
// minutes.
func NewCachingProfileProvider(backing organization.ProfileProvider, client *Client, ttl time.Duration, logger logging.Logger) *CachingProfileProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CachingProfileProvider{
		backing: backing,
		client:  client,
		ttl:     ttl,
		logger:  logger.Named("profile_cache"),
	}
}

func (p *CachingProfileProvider) cacheKey(orgID common.ID) string {
	return p.client.Key("profile", string(orgID))
}

func (p *CachingProfileProvider) GetProfile(ctx context.Context, orgID common.ID) (*organization.CapabilityProfile, error) {
	key := p.cacheKey(orgID)
	if data, err := p.client.Get(ctx, key); err == nil {
		var profile organization.CapabilityProfile
		if uerr := json.Unmarshal(data, &profile); uerr == nil {
			return &profile, nil
		}
		// A corrupt entry falls through to the backing store and is replaced.
		p.logger.Warn("dropping corrupt cached profile", logging.String("org_id", string(orgID)))
		_ = p.client.Delete(ctx, key)
	} else if !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		p.logger.Warn("profile cache read failed", logging.Err(err))
	}

	profile, err := p.backing.GetProfile(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if data, merr := json.Marshal(profile); merr == nil {
		if serr := p.client.Set(ctx, key, data, p.ttl); serr != nil {
			p.logger.Warn("profile cache write failed", logging.Err(serr))
		}
	}
	return profile, nil
}

// ListCandidateOrgIDs is not cached; the candidate set must stay fresh.
func (p *CachingProfileProvider) ListCandidateOrgIDs(ctx context.Context, q organization.CandidateQuery) ([]common.ID, error) {
	return p.backing.ListCandidateOrgIDs(ctx, q)
}

// Invalidate drops the cached profile for one organization.
func (p *CachingProfileProvider) Invalidate(ctx context.Context, orgID common.ID) error {
	return p.client.Delete(ctx, p.cacheKey(orgID))
}
