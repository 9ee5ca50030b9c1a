// Package scoring содержит бизнес-вычисления API: скоринг и интересы клиентов.
package scoring

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sol1corejz/scoring-api/internal/models"
)

// CacheTTL - время жизни закэшированного скора.
const CacheTTL = time.Hour

// Store - хранилище, которым пользуются вычисления.
type Store interface {
	CacheGet(ctx context.Context, key string) (string, bool)
	CacheSet(ctx context.Context, key, value string, ttl time.Duration)
	Get(ctx context.Context, key string) (string, error)
}

// GetScore считает скор клиента. Результат кэшируется; недоступность кэша
// на результат не влияет.
func GetScore(ctx context.Context, store Store, req *models.OnlineScoreRequest) float64 {
	key := ScoreKey(req)
	if cached, ok := store.CacheGet(ctx, key); ok {
		// нулевой скор в кэше считается промахом
		if score, err := strconv.ParseFloat(cached, 64); err == nil && score != 0 {
			return score
		}
	}

	var score float64
	if req.Phone != "" {
		score += 1.5
	}
	if req.Email != "" {
		score += 1.5
	}
	if req.Birthday != nil && req.Gender != nil && *req.Gender != 0 {
		score += 1.5
	}
	if req.FirstName != "" && req.LastName != "" {
		score += 0.5
	}

	store.CacheSet(ctx, key, strconv.FormatFloat(score, 'f', -1, 64), CacheTTL)
	return score
}

// ScoreKey - ключ кэша для скора: uid:md5(имя + фамилия + телефон + дата рождения).
func ScoreKey(req *models.OnlineScoreRequest) string {
	var birthday string
	if req.Birthday != nil {
		birthday = req.Birthday.Format("20060102")
	}
	sum := md5.Sum([]byte(req.FirstName + req.LastName + req.Phone + birthday))
	return "uid:" + hex.EncodeToString(sum[:])
}

// InterestsKey - ключ интересов клиента.
func InterestsKey(cid int) string {
	return "i:" + strconv.Itoa(cid)
}

// GetInterests читает интересы клиента. Отсутствие данных, недоступность хранилища
// и повреждённое значение - ошибки.
func GetInterests(ctx context.Context, store Store, cid int) ([]string, error) {
	raw, err := store.Get(ctx, InterestsKey(cid))
	if err != nil {
		return nil, err
	}
	interests := []string{}
	if raw == "" {
		return interests, nil
	}
	if err := json.Unmarshal([]byte(raw), &interests); err != nil {
		return nil, fmt.Errorf("decode interests of client %d: %w", cid, err)
	}
	return interests, nil
}
