// Package assistant answers natural-language questions about the catalog
// using a hosted Workers AI model.
package assistant

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/mrlokans/librarydesk/internal/config"
	"github.com/mrlokans/librarydesk/internal/entities"
	"github.com/mrlokans/librarydesk/internal/logger"
)

// Runner sends a chat to a model. *Client implements it.
type Runner interface {
	Run(ctx context.Context, messages []Message) (string, error)
}

// QuestionRecorder is notified after every question, answered or not.
type QuestionRecorder interface {
	RecordQuestion(ctx context.Context, prompt string, err error)
}

type Service struct {
	runner   Runner
	cache    Cache
	cacheTTL time.Duration
	limiter  *rate.Limiter
	recorder QuestionRecorder
	tracer   trace.Tracer
}

// NewService wires the model runner with a rate limit of requestsPerMinute
// (zero or less disables it). cache may be nil.
func NewService(runner Runner, cache Cache, cacheTTL time.Duration, requestsPerMinute int) *Service {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute)
	}
	return &Service{
		runner:   runner,
		cache:    cache,
		cacheTTL: cacheTTL,
		limiter:  limiter,
		tracer:   otel.Tracer("librarydesk/assistant"),
	}
}

// NewServiceFromConfig builds the client, the answer cache and the service.
func NewServiceFromConfig(aiCfg config.AI, redisCfg config.Redis) *Service {
	return NewService(NewClient(aiCfg), NewCache(redisCfg), aiCfg.CacheTTL, aiCfg.RequestsPerMinute)
}

// NewCache returns a Redis cache when an address is configured and reachable,
// otherwise an in-memory one.
func NewCache(cfg config.Redis) Cache {
	log := logger.WithComponent("assistant")
	if cfg.Addr == "" {
		return NewMemoryCache()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).WithField("addr", cfg.Addr).Warn("Redis unavailable, using in-memory answer cache")
		_ = client.Close()
		return NewMemoryCache()
	}

	log.WithField("addr", cfg.Addr).Info("Using Redis answer cache")
	return NewRedisCache(client)
}

// SetRecorder attaches an audit recorder.
func (s *Service) SetRecorder(r QuestionRecorder) {
	s.recorder = r
}

// Ask answers prompt about books. It never fails: any problem is logged and
// FallbackResponse is returned. Fallback answers are not cached.
func (s *Service) Ask(ctx context.Context, prompt string, books []entities.Book) string {
	ctx, span := s.tracer.Start(ctx, "assistant.ask",
		trace.WithAttributes(
			attribute.Int("catalog.size", len(books)),
			attribute.Int("prompt.length", len(prompt)),
		))
	defer span.End()

	answer, cached, err := s.ask(ctx, prompt, books)
	span.SetAttributes(attribute.Bool("cache.hit", cached))
	if !cached && s.recorder != nil {
		s.recorder.RecordQuestion(ctx, prompt, err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WithComponent("assistant").WithError(err).Error("AI request error")
		return FallbackResponse
	}
	return answer
}

func (s *Service) ask(ctx context.Context, prompt string, books []entities.Book) (string, bool, error) {
	catalogContext := BuildContext(books)
	key := CacheKey(prompt, catalogContext)

	if s.cache != nil {
		answer, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			logger.WithComponent("assistant").WithError(err).Warn("Answer cache read failed")
		} else if ok {
			return answer, true, nil
		}
	}

	if !s.limiter.Allow() {
		return "", false, ErrRateLimited
	}

	answer, err := s.runner.Run(ctx, Messages(catalogContext, prompt))
	if err != nil {
		return "", false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, answer, s.cacheTTL); err != nil {
			logger.WithComponent("assistant").WithError(err).Warn("Answer cache write failed")
		}
	}
	return answer, false, nil
}
