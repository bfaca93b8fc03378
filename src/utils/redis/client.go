package redis

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/onton-events/settler/src/utils/config"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to the shared low-latency store. It holds the job
// locks, the click queue and the caches; losing it costs efficiency,
// never correctness.
func NewClient(ctx context.Context, redisConfig *config.Redis, name string) (client *redis.Client, err error) {
	opts := redis.Options{
		ClientName:      fmt.Sprintf("onton/%s", name),
		Addr:            fmt.Sprintf("%s:%d", redisConfig.Host, redisConfig.Port),
		Password:        redisConfig.Password,
		Username:        redisConfig.User,
		DB:              redisConfig.DB,
		MinIdleConns:    redisConfig.MinIdleConns,
		MaxIdleConns:    redisConfig.MaxIdleConns,
		ConnMaxIdleTime: redisConfig.ConnMaxIdleTime,
		PoolSize:        redisConfig.MaxOpenConns,
		ConnMaxLifetime: redisConfig.ConnMaxLifetime,
	}

	if redisConfig.ClientCert != "" && redisConfig.ClientKey != "" && redisConfig.CaCert != "" {
		var cert tls.Certificate
		cert, err = tls.X509KeyPair([]byte(redisConfig.ClientCert), []byte(redisConfig.ClientKey))
		if err != nil {
			return
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM([]byte(redisConfig.CaCert)) {
			err = errors.New("failed to append CA cert to pool")
			return
		}

		opts.TLSConfig = &tls.Config{
			InsecureSkipVerify: false,
			RootCAs:            caCertPool,
			ClientCAs:          caCertPool,
			Certificates:       []tls.Certificate{cert},
		}
	}

	client = redis.NewClient(&opts)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	err = client.Ping(pingCtx).Err()
	if err != nil {
		return
	}

	return
}
