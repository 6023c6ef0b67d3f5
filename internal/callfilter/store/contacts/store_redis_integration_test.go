//go:build integration

package contacts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"callguard/internal/callfilter/models"
	id "callguard/pkg/domain"
	"callguard/pkg/platform/sentinel"
	"callguard/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestUpsertLookupDelete() {
	ctx := context.Background()
	profile := id.ProfileID(uuid.New())

	s.Require().NoError(s.store.Upsert(ctx, models.Contact{
		ProfileID:   profile,
		Handle:      "(555) 010-2000",
		DisplayName: "Ana",
	}))

	c, err := s.store.Lookup(ctx, profile, "+5550102000")
	s.Require().NoError(err)
	s.Equal("Ana", c.DisplayName)
	s.False(c.SendToVoicemail)

	s.Require().NoError(s.store.Delete(ctx, profile, "5550102000"))
	_, err = s.store.Lookup(ctx, profile, "5550102000")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestUnknownProfile() {
	_, err := s.store.Lookup(context.Background(), id.ProfileID(uuid.New()), "+15550102000")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestCorruptEntryIsAnError() {
	ctx := context.Background()
	profile := id.ProfileID(uuid.New())
	s.Require().NoError(s.redis.Client.HSet(ctx, key(profile), "+15550102000", "{not json").Err())

	_, err := s.store.Lookup(ctx, profile, "+15550102000")
	s.Error(err)
	s.NotErrorIs(err, sentinel.ErrNotFound)
}
