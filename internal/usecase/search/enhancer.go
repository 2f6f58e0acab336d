package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/learnhub-cloud/learnhub/internal/domain"
)

const enhanceSystemPrompt = "You are a helpful Salesforce learning assistant " +
	"who provides clear, practical guidance. Always respond with valid JSON."

// AIEnhancer narrates a result set through the chat completion provider.
// Wrap it in enhcache.CachedEnhancer to avoid paying for repeated queries.
type AIEnhancer struct {
	completer domain.Completer
	model     string
}

// NewAIEnhancer creates an enhancer on top of a completer.
func NewAIEnhancer(completer domain.Completer, model string) *AIEnhancer {
	return &AIEnhancer{completer: completer, model: model}
}

var _ domain.Enhancer = (*AIEnhancer)(nil)

// Enhance implements domain.Enhancer. When the model answers with something
// that is not the requested JSON shape, the raw completion text becomes the
// response rather than failing the enhancement.
func (e *AIEnhancer) Enhance(ctx context.Context, in domain.EnhancementInput) (domain.Enhancement, error) {
	res, err := e.completer.Complete(ctx, domain.CompletionRequest{
		System:      enhanceSystemPrompt,
		Prompt:      e.buildPrompt(in),
		Model:       e.model,
		MaxTokens:   2000,
		Temperature: 0.7,
	})
	if err != nil {
		return domain.Enhancement{}, fmt.Errorf("enhance completion: %w", err)
	}

	data, err := domain.ExtractJSON(res.Content)
	if err != nil {
		return domain.Enhancement{
			Response: res.Content,
			Tokens:   res.TotalTokens,
		}, nil
	}

	var parsed struct {
		EnhancedResponse string   `json:"enhanced_response"`
		Recommendations  []string `json:"recommendations"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return domain.Enhancement{
			Response: res.Content,
			Tokens:   res.TotalTokens,
		}, nil
	}

	return domain.Enhancement{
		Response:        parsed.EnhancedResponse,
		Recommendations: parsed.Recommendations,
		Tokens:          res.TotalTokens,
	}, nil
}

func (e *AIEnhancer) buildPrompt(in domain.EnhancementInput) string {
	type resultView struct {
		ID          string  `json:"id"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		ContentType string  `json:"content_type"`
		Score       float64 `json:"relevance_score"`
	}
	views := make([]resultView, 0, len(in.Results))
	for _, r := range in.Results {
		views = append(views, resultView{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			ContentType: string(r.ContentType),
			Score:       r.Score,
		})
	}
	resultsJSON, _ := json.Marshal(views)

	contextNote := ""
	if in.UserContext != "" {
		contextNote = "User context: " + in.UserContext + "\n\n"
	}

	return fmt.Sprintf(`As a Salesforce learning assistant, enhance these search results for the query %q.

%sSearch Results: %s

Provide:
1. A conversational response that synthesizes the search results
2. Practical recommendations for next steps
3. Connections between different results
4. Learning path suggestions

Respond with JSON:
{
  "enhanced_response": "conversational explanation of results",
  "recommendations": ["specific next step recommendations"]
}`, in.Query, contextNote, resultsJSON)
}
