package query

import (
	"context"
	"strings"

	"github.com/goliatone/go-messaging/core"
)

type ProfileResolver interface {
	ProfileReader(providerID string) (core.ProfileReader, bool)
}

// ProfileReaders is a ProfileResolver keyed by provider id.
type ProfileReaders map[string]core.ProfileReader

func (r ProfileReaders) ProfileReader(providerID string) (core.ProfileReader, bool) {
	reader, ok := r[strings.ToLower(strings.TrimSpace(providerID))]
	return reader, ok && reader != nil
}

type GetProfileQuery struct {
	readers ProfileResolver
}

func NewGetProfileQuery(readers ProfileResolver) *GetProfileQuery {
	return &GetProfileQuery{readers: readers}
}

func (q *GetProfileQuery) Query(ctx context.Context, msg GetProfileMessage) (core.UserProfile, error) {
	if q == nil || q.readers == nil {
		return core.UserProfile{}, queryDependencyError("query: profile readers are required")
	}
	if err := msg.Validate(); err != nil {
		return core.UserProfile{}, err
	}
	reader, ok := q.readers.ProfileReader(msg.ProviderID)
	if !ok {
		return core.UserProfile{}, queryNotFoundError("query: provider does not expose profiles", map[string]any{
			"provider_id": msg.ProviderID,
		})
	}
	profile, err := reader.GetProfile(ctx, strings.TrimSpace(msg.UserID))
	if err != nil {
		return core.UserProfile{}, core.MapError(err)
	}
	return profile, nil
}
