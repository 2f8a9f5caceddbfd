package videos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/neuropulse/neuropulse-server/internal/cache"
)

const searchURL = "https://www.googleapis.com/youtube/v3/search"

// ErrExhausted means every configured API key was rejected or over quota.
var ErrExhausted = errors.New("all YouTube API keys are invalid or have exhausted their quotas")

// APIError preserves the upstream HTTP status for non-quota failures.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Service lists channel uploads via the YouTube Data API. API keys are
// rotated round-robin through a shared redis counter so multiple workers
// spread quota usage; a 403 (quota/invalid key) advances to the next key.
type Service struct {
	client     *resty.Client
	rdb        *redis.Client
	log        *logrus.Logger
	keys       []string
	channelID  string
	maxResults int
}

func NewService(rdb *redis.Client, log *logrus.Logger, keys []string, channelID string, maxResults int) *Service {
	if maxResults <= 0 {
		maxResults = 12
	}
	return &Service{
		client:     resty.New(),
		rdb:        rdb,
		log:        log,
		keys:       keys,
		channelID:  channelID,
		maxResults: maxResults,
	}
}

func (s *Service) nextKey(ctx context.Context) (string, int, error) {
	used, err := s.rdb.Incr(ctx, cache.YouTubeKeyIndexKey).Result()
	if err != nil {
		return "", 0, fmt.Errorf("fetch next YouTube API key: %w", err)
	}
	idx := int((used - 1) % int64(len(s.keys)))
	if idx < 0 {
		idx += len(s.keys)
	}
	return s.keys[idx], idx, nil
}

// List returns the raw YouTube search response for the channel, newest
// first. Each configured key is tried at most once per call.
func (s *Service) List(ctx context.Context, pageToken string) (json.RawMessage, error) {
	if len(s.keys) == 0 {
		return nil, errors.New("no YouTube API keys configured")
	}

	for attempt := 0; attempt < len(s.keys); attempt++ {
		key, idx, err := s.nextKey(ctx)
		if err != nil {
			return nil, err
		}
		s.log.Infof("videos: attempt %d using YouTube API key index %d", attempt+1, idx)

		resp, err := s.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"key":        key,
				"channelId":  s.channelID,
				"part":       "snippet,id",
				"order":      "date",
				"maxResults": fmt.Sprint(s.maxResults),
				"pageToken":  pageToken,
			}).
			Get(searchURL)
		if err != nil {
			return nil, &APIError{Status: http.StatusServiceUnavailable, Message: "YouTube API is unavailable. Please try again later."}
		}

		if resp.StatusCode() == http.StatusOK {
			return json.RawMessage(resp.Body()), nil
		}
		if resp.StatusCode() == http.StatusForbidden {
			s.log.Warnf("videos: API key index %d invalid or quota-exhausted, retrying with next key", idx)
			continue
		}
		return nil, &APIError{Status: resp.StatusCode(), Message: upstreamMessage(resp.Body())}
	}

	s.log.Error("videos: all YouTube API keys exhausted")
	return nil, ErrExhausted
}

func upstreamMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return "YouTube API error"
}
