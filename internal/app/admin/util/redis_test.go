package util

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RedisViewCacheTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	cache     *RedisViewCache
}

func TestRedisViewCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisViewCacheTestSuite))
}

func (s *RedisViewCacheTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.cache, err = NewRedisViewCache(s.miniRedis.Addr(), "", 0)
	require.NoError(s.T(), err)
}

func (s *RedisViewCacheTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *RedisViewCacheTestSuite) TearDownSuite() {
	s.cache.Close()
	s.miniRedis.Close()
}

func (s *RedisViewCacheTestSuite) TestGetView_Miss() {
	ctx := context.Background()

	data, err := s.cache.GetView(ctx, ViewProducts, 1, 20)

	s.NoError(err)
	s.Nil(data)
}

func (s *RedisViewCacheTestSuite) TestSetAndGetView() {
	ctx := context.Background()
	payload := []byte(`{"products":[]}`)

	err := s.cache.SetView(ctx, ViewProducts, 1, 20, payload, time.Minute)
	s.Require().NoError(err)

	data, err := s.cache.GetView(ctx, ViewProducts, 1, 20)
	s.NoError(err)
	s.Equal(payload, data)

	// A different page of the same view is a separate key.
	data, err = s.cache.GetView(ctx, ViewProducts, 2, 20)
	s.NoError(err)
	s.Nil(data)
}

func (s *RedisViewCacheTestSuite) TestInvalidate_DropsAllPagesOfView() {
	ctx := context.Background()

	s.Require().NoError(s.cache.SetView(ctx, ViewProducts, 1, 20, []byte("p1"), time.Minute))
	s.Require().NoError(s.cache.SetView(ctx, ViewProducts, 2, 20, []byte("p2"), time.Minute))
	s.Require().NoError(s.cache.SetView(ctx, ViewProducts, 1, 50, []byte("p3"), time.Minute))
	s.Require().NoError(s.cache.SetView(ctx, ViewOrders, 1, 20, []byte("o1"), time.Minute))

	err := s.cache.Invalidate(ctx, ViewProducts)
	s.Require().NoError(err)

	for _, tc := range []struct{ page, size int }{{1, 20}, {2, 20}, {1, 50}} {
		data, err := s.cache.GetView(ctx, ViewProducts, tc.page, tc.size)
		s.NoError(err)
		s.Nil(data)
	}

	// Other views survive.
	data, err := s.cache.GetView(ctx, ViewOrders, 1, 20)
	s.NoError(err)
	s.Equal([]byte("o1"), data)
}

func (s *RedisViewCacheTestSuite) TestSetView_TTLExpires() {
	ctx := context.Background()

	s.Require().NoError(s.cache.SetView(ctx, ViewCategories, 1, 20, []byte("c1"), time.Minute))

	s.miniRedis.FastForward(2 * time.Minute)

	data, err := s.cache.GetView(ctx, ViewCategories, 1, 20)
	s.NoError(err)
	s.Nil(data)
}
