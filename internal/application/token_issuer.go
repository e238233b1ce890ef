package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/travelia/travel-backend/internal/domain/entity"
	repo "github.com/travelia/travel-backend/internal/domain/repository"
	"github.com/travelia/travel-backend/pkg/helpers"
)

// TokenIssuer mints signed bearer tokens and keeps the Session bookkeeping
// rows that make logout possible. Validate and Decode are stateless checks
// of signature and embedded expiry; they never consult the session table, so
// a revoked-but-unexpired token still decodes. That trade-off is inherited
// deliberately: revocation bounds exposure to the token TTL.
type TokenIssuer struct {
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewTokenIssuer(jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *TokenIssuer {
	return &TokenIssuer{JWT: jwt, Redis: rdb, Logger: logger}
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Issue signs a token for the user and persists the matching Session row.
// The redis session cache is best-effort; a cache failure never fails the
// issue.
func (i *TokenIssuer) Issue(ctx context.Context, sessions repo.SessionRepository, u *entity.User, meta entity.SessionMeta) (string, time.Time, error) {
	token, exp, err := i.JWT.Generate(u.ID)
	if err != nil {
		if i.Logger != nil {
			i.Logger.WithError(err).WithField("user_id", u.ID).Error("generate token failed")
		}
		return "", time.Time{}, err
	}

	s := &entity.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Token:     token,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		ExpiresAt: exp,
	}
	if err := sessions.Create(ctx, s); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return "", time.Time{}, ErrAlreadyExists
		}
		return "", time.Time{}, storageErr(err)
	}

	if i.Redis != nil {
		fields := map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"sid":        s.ID,
			"logged_in":  true,
			"created_at": nowRFC3339(),
		}
		key := sessionKey(u.ID)
		pipe := i.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, i.JWT.TTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil && i.Logger != nil {
			i.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return token, exp, nil
}

// Validate reports whether the token carries a good signature and unexpired
// claims. It never returns an error and never touches storage.
func (i *TokenIssuer) Validate(token string) bool {
	_, err := i.JWT.Parse(token)
	return err == nil
}

// Decode returns the user id asserted by the token, or ErrInvalidToken on a
// bad signature or expiry.
func (i *TokenIssuer) Decode(token string) (string, error) {
	claims, err := i.JWT.Parse(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// Revoke deletes the Session row for the token. A token with no session is
// success; revoke is idempotent.
func (i *TokenIssuer) Revoke(ctx context.Context, sessions repo.SessionRepository, token string) error {
	if err := sessions.DeleteByToken(ctx, token); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return storageErr(err)
	}
	if i.Redis != nil {
		if uid, err := i.Decode(token); err == nil {
			if dErr := i.Redis.Del(ctx, sessionKey(uid)).Err(); dErr != nil && i.Logger != nil {
				i.Logger.WithError(dErr).WithField("user_id", uid).Warn("redis del failed")
			}
		}
	}
	return nil
}
