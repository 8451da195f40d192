package suggest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/refriproject/refri-backend/internal/inventory"
	"github.com/refriproject/refri-backend/pkg/enums"
	pkgerrors "github.com/refriproject/refri-backend/pkg/errors"
	"github.com/refriproject/refri-backend/pkg/openrouter"
)

const systemPrompt = "You are an expert chef helping a household cook with what they already have on hand."

// Request describes a recipe suggestion query.
type Request struct {
	MealType enums.MealType `json:"mealType" validate:"required"`
	Notes    string         `json:"notes" validate:"max=500"`
}

// Suggestion is the free-form recipe text returned by the model.
type Suggestion struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Cached  bool   `json:"cached"`
}

type inventoryLister interface {
	List(ctx context.Context) ([]inventory.Item, error)
}

type completer interface {
	Complete(ctx context.Context, messages []openrouter.Message) (string, error)
	Model() string
}

type suggestionCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SuggestionCacheKey(fingerprint string) string
}

// ServiceParams groups dependencies for the suggestion service.
type ServiceParams struct {
	Inventory inventoryLister
	Completer completer
	// Cache is optional; nil disables suggestion caching.
	Cache    suggestionCache
	CacheTTL time.Duration
}

// Service turns the current inventory into recipe suggestions.
type Service interface {
	Suggest(ctx context.Context, req Request) (Suggestion, error)
}

type service struct {
	inventory inventoryLister
	completer completer
	cache     suggestionCache
	cacheTTL  time.Duration
}

// NewService builds a suggestion service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Inventory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory lister is required")
	}
	if params.Completer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "completion client is required")
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &service{
		inventory: params.Inventory,
		completer: params.Completer,
		cache:     params.Cache,
		cacheTTL:  ttl,
	}, nil
}

// Suggest builds a prompt from the fresh and expiring items and asks the
// model for recipes. Identical inventories with the same query hit the cache
// instead of the model.
func (s *service) Suggest(ctx context.Context, req Request) (Suggestion, error) {
	if !req.MealType.IsValid() {
		return Suggestion{}, pkgerrors.New(pkgerrors.CodeValidation, "unrecognized meal type")
	}

	items, err := s.inventory.List(ctx)
	if err != nil {
		return Suggestion{}, err
	}
	available := usableItems(items)
	if len(available) == 0 {
		return Suggestion{}, pkgerrors.New(pkgerrors.CodeValidation, "no fresh or expiring items to cook with")
	}

	// A cache miss and a broken cache look the same here; neither blocks the
	// suggestion itself.
	fingerprint := fingerprintFor(available, req)
	if s.cache != nil {
		key := s.cache.SuggestionCacheKey(fingerprint)
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
			return Suggestion{Content: cached, Model: s.completer.Model(), Cached: true}, nil
		}
	}

	content, err := s.completer.Complete(ctx, []openrouter.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(available, req)},
	})
	if err != nil {
		return Suggestion{}, err
	}

	if s.cache != nil {
		key := s.cache.SuggestionCacheKey(fingerprint)
		_ = s.cache.Set(ctx, key, content, s.cacheTTL)
	}

	return Suggestion{Content: content, Model: s.completer.Model()}, nil
}

// usableItems keeps the fresh and expiring subset; expired or consumed items
// never reach the prompt.
func usableItems(items []inventory.Item) []inventory.Item {
	usable := make([]inventory.Item, 0, len(items))
	for _, item := range items {
		if item.Status == enums.FoodStatusFresh || item.Status == enums.FoodStatusExpiring {
			usable = append(usable, item)
		}
	}
	return usable
}

func buildPrompt(items []inventory.Item, req Request) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- %s (%d) [%s]", item.Name, item.Quantity, item.Status))
	}

	var b strings.Builder
	b.WriteString("I have the following ingredients in my kitchen:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString(fmt.Sprintf("\n\nPlease suggest 2 recipe options I could prepare for %s.\n", req.MealType))
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		b.WriteString(fmt.Sprintf("Keep these additional details in mind: %s\n", notes))
	}
	b.WriteString("Use the ingredients available, prioritizing the ones marked '[expiring]' since they are close to their date, though using them is not mandatory.\n")
	b.WriteString("If a common staple is missing (salt, oil, spices), assume I have it but mention it if it is anything specific. Do not assume I have more complex ingredients.\n")
	b.WriteString("If the ingredients are too limited for two recipes, say so; one realistic recipe is fine.\n")
	b.WriteString("Finish with one grocery suggestion that would unlock more recipes with what is already here.\n\n")
	b.WriteString("Format each suggestion as:\n")
	b.WriteString("## [Recipe name]\n")
	b.WriteString("**Ingredients needed:** (list)\n")
	b.WriteString("**Instructions:** (brief steps)\n")
	b.WriteString("**Why this recipe:** (short explanation based on my inventory)\n")
	return b.String()
}

// fingerprintFor hashes the usable inventory plus the query so equivalent
// requests share a cache entry regardless of item order.
func fingerprintFor(items []inventory.Item, req Request) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s|%d|%s", item.Name, item.Quantity, item.Status))
	}
	sort.Strings(lines)
	lines = append(lines, string(req.MealType), strings.TrimSpace(req.Notes))

	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}
