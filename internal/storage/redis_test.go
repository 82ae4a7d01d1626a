package storage_test

import (
	"testing"

	"github.com/nikolayk812/gomarket-cart/internal/config"
	"github.com/nikolayk812/gomarket-cart/internal/port"
	"github.com/nikolayk812/gomarket-cart/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type redisStorageSuite struct {
	suite.Suite

	container *tcredis.RedisContainer
	connStr   string
	rdb       *redis.Client
	kv        port.KeyValueStore
}

// entry point to run the tests in the suite
func TestRedisStorageSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	suite.Run(t, new(redisStorageSuite))
}

// before all tests in the suite
func (suite *redisStorageSuite) SetupSuite() {
	ctx := suite.T().Context()

	var err error
	suite.container, suite.connStr, err = startRedis(ctx)
	suite.Require().NoError(err)

	opts, err := redis.ParseURL(suite.connStr)
	suite.Require().NoError(err)

	suite.rdb = redis.NewClient(opts)
	suite.kv = storage.NewRedis(suite.rdb, "test:")
}

// after all tests in the suite
func (suite *redisStorageSuite) TearDownSuite() {
	if suite.kv != nil {
		suite.NoError(suite.kv.Close())
	}
	if suite.container != nil {
		suite.NoError(testcontainers.TerminateContainer(suite.container))
	}
}

func (suite *redisStorageSuite) TearDownTest() {
	suite.NoError(suite.rdb.FlushDB(suite.T().Context()).Err())
}

func (suite *redisStorageSuite) TestKeyValueStore() {
	assertKeyValueStore(suite.T(), suite.kv)
}

func (suite *redisStorageSuite) TestPrefix() {
	t := suite.T()
	ctx := t.Context()

	require.NoError(t, suite.kv.Set(ctx, "@GoMarket:cart", []byte("[]")))

	raw, err := suite.rdb.Get(ctx, "test:@GoMarket:cart").Result()
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	other := storage.NewRedis(suite.rdb, "other:")
	_, ok, err := other.Get(ctx, "@GoMarket:cart")
	require.NoError(t, err)
	assert.False(t, ok)
}

func (suite *redisStorageSuite) TestOpen() {
	t := suite.T()

	kv, err := storage.Open(t.Context(), config.StorageConfig{
		Driver:      config.DriverRedis,
		DSN:         suite.connStr,
		RedisPrefix: "open:",
	})
	require.NoError(t, err)
	defer func() { suite.NoError(kv.Close()) }()

	assertKeyValueStore(t, kv)
}
