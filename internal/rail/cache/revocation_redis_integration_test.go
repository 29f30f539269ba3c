//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"railguard/internal/platform/config"
	platformredis "railguard/internal/platform/redis"
	"railguard/internal/rail/cache"
	"railguard/pkg/domain"
	"railguard/pkg/testutil/containers"
)

const (
	testOwner  = domain.OwnerID("GAAZI4TCR3TY5OJHCTJC2A4QSY6CJWJH5IAJTGKIN2ER7LBNVKOCCWN7")
	otherOwner = domain.OwnerID("GA7QYNF7SOWQ3GLR2BGMZEHXAVIRZA4KVWLTJJFC7MGXUA74P7UJVSGZ")
)

type RevocationMarkerSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	client *platformredis.Client
	marker *cache.RevocationMarker
}

func TestRevocationMarkerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RevocationMarkerSuite))
}

func (s *RevocationMarkerSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())

	client, err := platformredis.New(config.Redis{
		URL:          s.redis.Addr,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	s.Require().NoError(err)
	s.Require().NotNil(client)
	s.client = client
	s.marker = cache.NewRevocationMarker(client)
}

func (s *RevocationMarkerSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

func (s *RevocationMarkerSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RevocationMarkerSuite) TestMarkAndRead() {
	ctx := context.Background()

	revoked, err := s.marker.IsOwnerRevoked(ctx, testOwner)
	s.Require().NoError(err)
	s.False(revoked)

	s.Require().NoError(s.marker.MarkOwnerRevoked(ctx, testOwner))

	revoked, err = s.marker.IsOwnerRevoked(ctx, testOwner)
	s.Require().NoError(err)
	s.True(revoked)

	revoked, err = s.marker.IsOwnerRevoked(ctx, otherOwner)
	s.Require().NoError(err)
	s.False(revoked, "markers are per owner")
}

func (s *RevocationMarkerSuite) TestMarkerCarriesTTL() {
	ctx := context.Background()
	s.Require().NoError(s.marker.MarkOwnerRevoked(ctx, testOwner))

	ttl, err := s.client.TTL(ctx, "railguard:killswitch:"+testOwner.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0), "marker expires instead of lingering forever")
	s.LessOrEqual(ttl, 24*time.Hour)
}
