package redis_client

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/trenvio/trenvio/pkg/util"
)

var Client *redis.Client

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

// Connect sets up the shared redis client used by the cross-process
// results cache. Redis is optional; callers must treat a nil Client as
// "no shared cache".
func Connect() error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["TRENVIO_REDIS_ADDRESS"] != "" {
		address = env["TRENVIO_REDIS_ADDRESS"]
	}

	if env["TRENVIO_REDIS_PASSWORD"] != "" {
		password = env["TRENVIO_REDIS_PASSWORD"]
	}

	if env["TRENVIO_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["TRENVIO_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	statusCmd := Client.Ping(context.Background())
	if statusCmd.Err() != nil {
		Client = nil
	}

	return statusCmd.Err()
}
