package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"seo-content-ops/internal/logger"
	"seo-content-ops/internal/telemetry"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

type GeminiClient struct {
	apiKey       string
	breaker      *gobreaker.CircuitBreaker
	rateLimiter  *rate.Limiter
	tokenCounter *TokenCounter
	client       *genai.Client
	tier         string
	metrics      *telemetry.Metrics
}

type TokenCounter struct {
	mu              sync.Mutex
	minuteTokens    int
	dailyTokens     int
	minuteRequests  int
	dailyRequests   int
	lastMinuteReset time.Time
	lastDayReset    time.Time
	limits          RateLimits
}

type RateLimits struct {
	RPM int // Requests per minute
	TPM int // Tokens per minute
	RPD int // Requests per day
}

// ExplanationInput carries the facts the model rewrites into prose
type ExplanationInput struct {
	BaseTitle      string
	CandidateTitle string
	Recommendation string
	Score          float64
	MatchCount     int
	SameCategory   bool
}

// NewGeminiClient builds the breaker-protected Gemini client. metrics may
// be nil when telemetry is disabled.
func NewGeminiClient(apiKey string, tier string, metrics *telemetry.Metrics) (*GeminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	// Configure rate limits based on tier
	limits := getRateLimits(tier)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			if metrics != nil {
				metrics.RecordCircuitBreakerState("gemini", to.String())
			}
		},
	})

	// RPM limit with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(float64(limits.RPM)*0.9/60.0), maxInt(limits.RPM/10, 1))

	return &GeminiClient{
		apiKey:       apiKey,
		breaker:      breaker,
		rateLimiter:  rateLimiter,
		tokenCounter: &TokenCounter{limits: limits},
		client:       client,
		tier:         tier,
		metrics:      metrics,
	}, nil
}

func getRateLimits(tier string) RateLimits {
	switch tier {
	case "free":
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	case "tier1":
		return RateLimits{RPM: 1000, TPM: 1000000, RPD: 10000}
	case "tier2":
		return RateLimits{RPM: 2000, TPM: 4000000, RPD: 50000}
	default:
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	}
}

// EnrichExplanation rewrites a rule-based explanation into reader-friendly
// prose. On any upstream failure the fallback text is returned unchanged,
// so callers always get a usable explanation.
func (gc *GeminiClient) EnrichExplanation(ctx context.Context, in ExplanationInput, fallback string) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.enrich_explanation")
	defer span.End()

	prompt := buildExplanationPrompt(in, fallback)
	estimatedTokens := len(prompt) / 4

	span.SetAttributes(
		attribute.Int("gemini.estimated_tokens", estimatedTokens),
		attribute.String("gemini.recommendation", in.Recommendation),
		attribute.String("gemini.model", "gemini-2.0-flash"),
	)

	// Check token limits before making the request
	if !gc.tokenCounter.CanConsume(estimatedTokens, 1) {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return fallback, nil
	}

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return fallback, err
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.GenerativeModel("gemini-2.0-flash")
		model.SetTemperature(0.4)
		model.SetMaxOutputTokens(256)

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			span.SetAttributes(attribute.Bool("gemini.error", true))
			span.SetAttributes(attribute.String("gemini.error_message", err.Error()))
			return nil, err
		}

		actualTokens := extractTokenUsage(resp)
		gc.tokenCounter.RecordUsage(actualTokens, 1)
		if gc.metrics != nil {
			gc.metrics.RecordTokensUsed(int64(actualTokens), "gemini-2.0-flash")
		}
		span.SetAttributes(attribute.Int("gemini.actual_tokens", actualTokens))

		return resp, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			span.SetAttributes(attribute.Bool("gemini.circuit_breaker_open", true))
			return fallback, nil
		}
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return fallback, err
	}

	text := extractResponseText(result.(*genai.GenerateContentResponse))
	if text == "" {
		return fallback, nil
	}

	span.SetAttributes(attribute.Bool("gemini.success", true))
	return text, nil
}

func (tc *TokenCounter) CanConsume(tokens, requests int) bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	now := time.Now()

	// Reset counters if time windows expired
	if now.Sub(tc.lastMinuteReset) >= time.Minute {
		tc.minuteTokens = 0
		tc.minuteRequests = 0
		tc.lastMinuteReset = now
	}

	if now.Sub(tc.lastDayReset) >= 24*time.Hour {
		tc.dailyTokens = 0
		tc.dailyRequests = 0
		tc.lastDayReset = now
	}

	if tc.minuteRequests+requests > tc.limits.RPM {
		return false
	}
	if tc.minuteTokens+tokens > tc.limits.TPM {
		return false
	}
	if tc.dailyRequests+requests > tc.limits.RPD {
		return false
	}

	return true
}

func (tc *TokenCounter) RecordUsage(tokens, requests int) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.minuteTokens += tokens
	tc.minuteRequests += requests
	tc.dailyTokens += tokens
	tc.dailyRequests += requests
}

func buildExplanationPrompt(in ExplanationInput, fallback string) string {
	var sb strings.Builder
	sb.WriteString("You are an SEO content strategist. Rewrite the recommendation below ")
	sb.WriteString("as one or two clear sentences for a content editor. Keep the numbers. ")
	sb.WriteString("Do not add new claims.\n\n")
	fmt.Fprintf(&sb, "Base article: %s\n", in.BaseTitle)
	fmt.Fprintf(&sb, "Similar article: %s\n", in.CandidateTitle)
	fmt.Fprintf(&sb, "Recommendation: %s\n", in.Recommendation)
	fmt.Fprintf(&sb, "Similarity score: %.1f%%\n", in.Score*100)
	fmt.Fprintf(&sb, "Matching sections: %d\n", in.MatchCount)
	fmt.Fprintf(&sb, "Same category: %t\n", in.SameCategory)
	fmt.Fprintf(&sb, "Draft explanation: %s\n", fallback)
	return sb.String()
}

// Extract token usage from Gemini response
func extractTokenUsage(resp *genai.GenerateContentResponse) int {
	if resp.UsageMetadata != nil {
		return int(resp.UsageMetadata.TotalTokenCount)
	}

	// Fallback: estimate from response text at ~4 characters per token
	estimated := len(extractResponseText(resp)) / 4
	if estimated < 1 {
		estimated = 1
	}

	return estimated
}

func extractResponseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					sb.WriteString(string(text))
				}
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Close the client
func (gc *GeminiClient) Close() error {
	if gc.client != nil {
		return gc.client.Close()
	}
	return nil
}
