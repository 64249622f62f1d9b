package backends

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"strconv"

	"storefront/internal/backends/ddb"
	"storefront/internal/backends/memory"
	"storefront/internal/backends/postgres"
	"storefront/internal/ports"
	"storefront/internal/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	redisbackend "storefront/internal/backends/redis"
)

const (
	StorageBackendEnvKey = "STORAGE_BACKEND"
	BackendDDB           = "ddb"
	BackendRedis         = "redis"
	BackendPostgres      = "postgres"
	BackendMemory        = "memory"

	DDBEndpointKey = "DDB_ENDPOINT"
	DDBTableKey    = "DDB_TABLE"
	SNSEndpointKey = "SNS_ENDPOINT"

	RedisHost  = "REDIS_HOST"
	RedisPort  = "REDIS_PORT"
	RedisUser  = "REDIS_USER"
	RedisPass  = "REDIS_PASS"
	RedisTLS   = "REDIS_SSL"
	RedisDBNum = "REDIS_DB_NUM"

	PostgresDSN = "POSTGRES_DSN"
)

// Closer releases the connections held by a backend.
type Closer func()

// StorageFromEnv constructs the KVStore holding the cart based on environment
// variables. It first checks "STORAGE_BACKEND" to determine which backend to
// use ("memory", "redis", "ddb" or "postgres"), then reads the variables of
// that backend. Defaults to BackendMemory if unspecified.
func StorageFromEnv(ctx context.Context) (ports.KVStore, Closer, error) {
	backend := os.Getenv(StorageBackendEnvKey)
	switch backend {
	case BackendRedis:
		redisClient, err := redisClientFromEnv(ctx)
		if err != nil {
			return nil, nil, err
		}
		return redisbackend.NewKVStore(redisClient), func() { _ = redisClient.Close() }, nil

	case BackendDDB:
		ddbClient, err := ddbClientFromEnv(ctx)
		if err != nil {
			return nil, nil, err
		}
		store, err := ddb.NewKVStore(ctx, getenv(DDBTableKey, "storefront_cart"), ddbClient)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	case BackendPostgres:
		dsn := os.Getenv(PostgresDSN)
		if dsn == "" {
			return nil, nil, types.Err(types.ErrInvalidBackend, nil, "%s is required for the postgres backend", PostgresDSN)
		}
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		store, err := postgres.NewKVStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil

	case BackendMemory, "":
		log.Warn("using the in-memory storage backend, the cart will not survive a restart")
		return memory.NewKVStore(), func() {}, nil

	default:
		return nil, nil, types.Err(types.ErrInvalidBackend, nil, "unknown storage backend %q", backend)
	}
}

// SNSClientFromEnv creates an SNS client. SNS_ENDPOINT points it at a local
// mock for testing.
func SNSClientFromEnv(ctx context.Context) (*sns.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	endpoint := os.Getenv(SNSEndpointKey)
	return sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.Region = getenv("AWS_REGION", "us-east-1")
			o.Credentials = localCredentials()
		}
	}), nil
}

// ddbClientFromEnv creates a DynamoDB client from environment variables, if any.
func ddbClientFromEnv(ctx context.Context) (*dynamodb.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	endpoint := os.Getenv(DDBEndpointKey)
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			// This is used for testing only locally
			o.BaseEndpoint = aws.String(endpoint)
			o.Region = getenv("AWS_REGION", "us-east-1")
			o.Credentials = localCredentials()
		}
	}), nil
}

func localCredentials() aws.CredentialsProvider {
	return credentials.NewStaticCredentialsProvider(
		getenv("AWS_ACCESS_KEY_ID", "x"),
		getenv("AWS_SECRET_ACCESS_KEY", "x"),
		"",
	)
}

// redisClientFromEnv creates a Redis client from environment variables, if any.
func redisClientFromEnv(ctx context.Context) (*redis.Client, error) {
	host := getenv(RedisHost, "localhost")
	port := getenv(RedisPort, "6379")
	dbNum, err := strconv.Atoi(getenv(RedisDBNum, "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid Redis DB number: %w", err)
	}

	var tlsConfig *tls.Config
	if parseBoolean(getenv(RedisTLS, "false")) {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:      fmt.Sprintf("%s:%s", host, port),
		Username:  os.Getenv(RedisUser),
		Password:  os.Getenv(RedisPass),
		DB:        dbNum,
		TLSConfig: tlsConfig,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return redisClient, nil
}

// getenv retrieves the value of the environment variable named by the key.
func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func parseBoolean(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}
