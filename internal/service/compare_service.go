//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"shopcompare/backend/internal/catalog"
	"shopcompare/backend/internal/model"
	"shopcompare/backend/internal/service/ai"
	"shopcompare/backend/pkg/logger"
	"shopcompare/backend/pkg/sanitizer"
)

const (
	LanguageEnglish    = "en"
	LanguageVietnamese = "vi"

	MinCompareProducts = 2
	MaxCompareProducts = 5

	maxPromptRunes    = 20000
	maxAttributeRunes = 300
)

// ComparisonSystemPrompt is sent as the system message on every comparison.
const ComparisonSystemPrompt = "You are a helpful product comparison assistant. Analyze the products and provide a detailed comparison, highlighting the pros and cons of each product and making a recommendation based on overall value for money."

type CompareRequest struct {
	Subject model.Subject
	// Prompt is used as-is when ProductIDs is empty.
	Prompt     string
	ProductIDs []int64
	Language   string
}

type CompareResult struct {
	Comparison string
	Remaining  int
	Max        int
	ResetAt    time.Time
}

// ComparisonObserver is told about every comparison outcome.
type ComparisonObserver interface {
	ObserveComparison(outcome string)
}

type CompareService interface {
	// Compare validates the request, charges the subject's quota and asks the
	// provider for a comparison.
	Compare(ctx context.Context, req CompareRequest) (*CompareResult, error)
	// Quota reports the subject's remaining allowance without consuming it.
	Quota(ctx context.Context, subject model.Subject) (Decision, error)
}

type compareService struct {
	limiter  RateLimitService
	catalog  CatalogService
	provider ai.Provider
	pacer    *ai.RateLimiter
	observer ComparisonObserver
}

type CompareOption func(*compareService)

func WithComparisonObserver(o ComparisonObserver) CompareOption {
	return func(s *compareService) { s.observer = o }
}

// NewCompareService wires the comparison flow. A nil provider makes every
// comparison fail with ErrProviderUnavailable without charging quota.
func NewCompareService(limiter RateLimitService, catalogService CatalogService, provider ai.Provider, pacer *ai.RateLimiter, opts ...CompareOption) CompareService {
	if pacer == nil {
		pacer = ai.NewRateLimiter(ai.DefaultRateLimit)
	}
	s := &compareService{
		limiter:  limiter,
		catalog:  catalogService,
		provider: provider,
		pacer:    pacer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *compareService) Quota(ctx context.Context, subject model.Subject) (Decision, error) {
	return s.limiter.Peek(ctx, subject)
}

func (s *compareService) Compare(ctx context.Context, req CompareRequest) (*CompareResult, error) {
	result, err := s.compare(ctx, req)
	s.observe(err)
	return result, err
}

func (s *compareService) compare(ctx context.Context, req CompareRequest) (*CompareResult, error) {
	prompt, err := s.buildPrompt(ctx, req)
	if err != nil {
		return nil, err
	}
	if s.provider == nil {
		return nil, fmt.Errorf("%w: no provider configured", ErrProviderUnavailable)
	}

	decision, err := s.limiter.Check(ctx, req.Subject)
	if err != nil {
		return nil, err
	}

	if err := s.pacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	logger.Info("comparison requested", "module", "service", "action", "compare", "resource", "comparison", "subject", req.Subject.String(), "prompt_runes", utf8.RuneCountInString(prompt), "provider", s.provider.Name())
	text, err := s.provider.Complete(ctx, ComparisonSystemPrompt, prompt)
	if err != nil {
		logger.Error("comparison provider failed", "module", "service", "action", "compare", "resource", "comparison", "result", "failed", "error", err)
		return nil, mapProviderError(err)
	}

	return &CompareResult{
		Comparison: text,
		Remaining:  decision.Remaining,
		Max:        decision.Max,
		ResetAt:    decision.ResetAt,
	}, nil
}

func (s *compareService) buildPrompt(ctx context.Context, req CompareRequest) (string, error) {
	language := strings.ToLower(strings.TrimSpace(req.Language))
	switch language {
	case "":
		language = LanguageEnglish
	case LanguageEnglish, LanguageVietnamese:
	default:
		return "", fmt.Errorf("%w: language must be %q or %q", ErrInvalid, LanguageEnglish, LanguageVietnamese)
	}

	if len(req.ProductIDs) == 0 {
		prompt := strings.TrimSpace(req.Prompt)
		if prompt == "" {
			return "", fmt.Errorf("%w: prompt or productIds is required", ErrInvalid)
		}
		if utf8.RuneCountInString(prompt) > maxPromptRunes {
			return "", fmt.Errorf("%w: prompt is longer than %d characters", ErrInvalid, maxPromptRunes)
		}
		return prompt, nil
	}

	ids, err := validateProductIDs(req.ProductIDs)
	if err != nil {
		return "", err
	}

	details := make([]*catalog.ProductDetail, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			detail, err := s.catalog.Product(gctx, id)
			if err != nil {
				return err
			}
			details[i] = detail
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return BuildComparisonPrompt(details, language), nil
}

func validateProductIDs(ids []int64) ([]int64, error) {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, fmt.Errorf("%w: product ids must be positive", ErrInvalid)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) < MinCompareProducts || len(unique) > MaxCompareProducts {
		return nil, fmt.Errorf("%w: between %d and %d distinct products can be compared", ErrInvalid, MinCompareProducts, MaxCompareProducts)
	}
	return unique, nil
}

// BuildComparisonPrompt renders product details into the user message.
func BuildComparisonPrompt(products []*catalog.ProductDetail, language string) string {
	blocks := make([]string, 0, len(products))
	for i, p := range products {
		var b strings.Builder
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Name)
		fmt.Fprintf(&b, "Price: %s VND\n", formatPrice(p.Price))
		brand := strings.TrimSpace(p.BrandName)
		if brand == "" {
			brand = "Unknown"
		}
		fmt.Fprintf(&b, "Brand: %s\n", brand)
		b.WriteString("Specifications:\n")
		b.WriteString(formatSpecifications(p.Specifications))
		blocks = append(blocks, b.String())
	}
	list := strings.Join(blocks, "\n\n")

	if language == LanguageVietnamese {
		return "Đây là các sản phẩm và thông tin của chúng:\n\n" + list +
			"\n\nHãy cho tôi biết ưu điểm và nhược điểm của mỗi sản phẩm và tôi nên mua sản phẩm nào nhất"
	}
	return "Here are the list of products and attributes:\n\n" + list +
		"\n\nHelp me compare these products to find which is the best product. Consider price, specifications, and overall value for money."
}

func formatSpecifications(specs []catalog.Specification) string {
	var lines []string
	for _, spec := range specs {
		for _, attr := range spec.Attributes {
			value := sanitizer.Excerpt(sanitizer.StripTags(string(attr.Value)), maxAttributeRunes)
			lines = append(lines, attr.Name+": "+value)
		}
	}
	if len(lines) == 0 {
		return "No specifications available"
	}
	return strings.Join(lines, "\n")
}

// formatPrice renders a whole number with comma thousands separators.
func formatPrice(price float64) string {
	digits := strconv.FormatInt(int64(math.Round(price)), 10)
	negative := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func mapProviderError(err error) error {
	switch {
	case errors.Is(err, ai.ErrProviderAuth):
		return fmt.Errorf("%w: %v", ErrProviderAuth, err)
	case errors.Is(err, ai.ErrProviderRateLimited):
		return fmt.Errorf("%w: %v", ErrProviderRateLimited, err)
	default:
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
}

func (s *compareService) observe(err error) {
	if s.observer == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrQuotaExceeded):
		outcome = "quota_exceeded"
	case errors.Is(err, ErrInvalid):
		outcome = "invalid"
	case errors.Is(err, ErrStorageUnavailable):
		outcome = "storage_error"
	default:
		outcome = "error"
	}
	s.observer.ObserveComparison(outcome)
}
