package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"hotspot-service/internal/models"
)

const flowKeyPrefix = "hotspot:flow:"

// FlowStore persists login flow state between requests. The client never
// holds the flow itself, only a signed token referencing it.
type FlowStore interface {
	Save(ctx context.Context, flow *models.LoginFlow) error
	Resolve(ctx context.Context, token string) (*models.LoginFlow, error)
	IssueToken(flow *models.LoginFlow) (string, error)
	Delete(ctx context.Context, flowID string) error
}

// RedisFlowStore keeps flows in redis under the flow TTL, so an abandoned
// device conflict or half-finished login evaporates on its own.
type RedisFlowStore struct {
	rdb    *redis.Client
	secret []byte
	ttl    time.Duration
}

// NewRedisFlowStore creates a redis-backed flow store
func NewRedisFlowStore(rdb *redis.Client, tokenSecret string, ttl time.Duration) *RedisFlowStore {
	return &RedisFlowStore{
		rdb:    rdb,
		secret: []byte(tokenSecret),
		ttl:    ttl,
	}
}

// Save writes the flow under its remaining lifetime
func (s *RedisFlowStore) Save(ctx context.Context, flow *models.LoginFlow) error {
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to marshal flow: %w", err)
	}

	ttl := time.Until(flow.ExpiresAt)
	if ttl <= 0 {
		return ErrFlowInvalid
	}

	return s.rdb.Set(ctx, flowKeyPrefix+flow.ID, data, ttl).Err()
}

// IssueToken signs a compact reference to the flow for the client to hold
func (s *RedisFlowStore) IssueToken(flow *models.LoginFlow) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   flow.ID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(flow.ExpiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Resolve validates the signed token and loads the referenced flow
func (s *RedisFlowStore) Resolve(ctx context.Context, tokenString string) (*models.LoginFlow, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrFlowInvalid
	}

	data, err := s.rdb.Get(ctx, flowKeyPrefix+claims.Subject).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrFlowInvalid
		}
		return nil, fmt.Errorf("failed to load flow: %w", err)
	}

	var flow models.LoginFlow
	if err := json.Unmarshal([]byte(data), &flow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow: %w", err)
	}

	if flow.IsExpired() {
		return nil, ErrFlowInvalid
	}

	return &flow, nil
}

// Delete removes a flow once it reaches a terminal state
func (s *RedisFlowStore) Delete(ctx context.Context, flowID string) error {
	return s.rdb.Del(ctx, flowKeyPrefix+flowID).Err()
}
