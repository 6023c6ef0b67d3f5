package contacts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"callguard/internal/callfilter/models"
	id "callguard/pkg/domain"
	"callguard/pkg/platform/sentinel"
)

var lookupDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "callguard_contact_lookup_duration_ms",
	Help:    "Latency of Redis contact lookups in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
})

// one hash per profile, field = normalized handle
const keyPrefix = "contacts:"

type entry struct {
	DisplayName     string `json:"display_name,omitempty"`
	SendToVoicemail bool   `json:"send_to_voicemail,omitempty"`
}

// RedisStore keeps contacts in Redis. The client lifecycle is managed by
// the caller.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func key(profileID id.ProfileID) string {
	return keyPrefix + profileID.String()
}

func (s *RedisStore) Lookup(ctx context.Context, profileID id.ProfileID, handle id.Handle) (*models.Contact, error) {
	start := time.Now()
	defer func() {
		lookupDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	variants := handle.Variants()
	if len(variants) == 0 {
		return nil, fmt.Errorf("contact: %w", sentinel.ErrNotFound)
	}
	values, err := s.client.HMGet(ctx, key(profileID), variants...).Result()
	if err != nil {
		return nil, fmt.Errorf("lookup contact: %w", err)
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var e entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("decode contact: %w", err)
		}
		return &models.Contact{
			ProfileID:       profileID,
			Handle:          id.Handle(variants[i]),
			DisplayName:     e.DisplayName,
			SendToVoicemail: e.SendToVoicemail,
		}, nil
	}
	return nil, fmt.Errorf("contact: %w", sentinel.ErrNotFound)
}

func (s *RedisStore) Upsert(ctx context.Context, contact models.Contact) error {
	field := contact.Handle.Normalize()
	if field.IsEmpty() {
		return fmt.Errorf("upsert contact: empty handle")
	}
	raw, err := json.Marshal(entry{DisplayName: contact.DisplayName, SendToVoicemail: contact.SendToVoicemail})
	if err != nil {
		return fmt.Errorf("encode contact: %w", err)
	}
	if err := s.client.HSet(ctx, key(contact.ProfileID), string(field), raw).Err(); err != nil {
		return fmt.Errorf("upsert contact: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, profileID id.ProfileID, handle id.Handle) error {
	variants := handle.Variants()
	if len(variants) == 0 {
		return fmt.Errorf("delete contact: %w", sentinel.ErrNotFound)
	}
	n, err := s.client.HDel(ctx, key(profileID), variants...).Result()
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete contact: %w", sentinel.ErrNotFound)
	}
	return nil
}
