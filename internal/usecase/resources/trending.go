package resources

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Certification is a certification with its current ecosystem trend score.
type Certification struct {
	Name             string   `json:"name"`
	TrendScore       int      `json:"trend_score"`
	TrendingKeywords []string `json:"trending_keywords"`
}

// TrendingTopic is a topic extracted from live search snippets.
type TrendingTopic struct {
	Topic           string   `json:"topic"`
	TrendScore      int      `json:"trend_score"`
	RelatedSearches []string `json:"related_searches"`
}

// TrendingData feeds the curation prompt with ecosystem context.
type TrendingData struct {
	Certifications []Certification `json:"certifications"`
	Topics         []TrendingTopic `json:"topics"`
}

// trendingQueries drive the live trend lookups.
var trendingQueries = []string{
	"Salesforce Agentforce Specialist certification 2024",
	"Salesforce AI Associate vs Agentforce 2024",
	"trending Salesforce certifications 2024",
	"most in demand Salesforce skills 2024",
}

// topicPattern extracts topic keywords from search snippets.
var topicPattern = regexp.MustCompile(`(?i)(Agentforce|Einstein|Lightning|Flow|Apex|AI|automation|integration)`)

// defaultCertifications is the baseline trend ranking. Agentforce Specialist
// leads; AI Associate scores low because it is being phased out.
func defaultCertifications() []Certification {
	return []Certification{
		{
			Name:             "Agentforce Specialist",
			TrendScore:       95,
			TrendingKeywords: []string{"AI agents", "autonomous systems", "agentforce certification"},
		},
		{
			Name:             "Platform Developer I",
			TrendScore:       88,
			TrendingKeywords: []string{"apex programming", "lightning components", "salesforce development"},
		},
		{
			Name:             "Salesforce Administrator",
			TrendScore:       85,
			TrendingKeywords: []string{"admin certification", "user management", "salesforce setup"},
		},
		{
			Name:             "AI Associate",
			TrendScore:       65,
			TrendingKeywords: []string{"einstein ai", "legacy certification", "ai basics"},
		},
	}
}

// defaultTopics is the topic set used when no live snippets are available.
func defaultTopics() []TrendingTopic {
	return []TrendingTopic{
		{
			Topic:           "Agentforce Implementation",
			TrendScore:      92,
			RelatedSearches: []string{"agentforce setup", "AI agent deployment", "autonomous customer service"},
		},
		{
			Topic:           "Einstein GPT",
			TrendScore:      89,
			RelatedSearches: []string{"generative AI", "einstein features", "AI automation"},
		},
		{
			Topic:           "Lightning Web Components",
			TrendScore:      82,
			RelatedSearches: []string{"LWC development", "component frameworks", "modern salesforce UI"},
		},
	}
}

// trendingData combines the baseline certification ranking with topics mined
// from live search snippets. Lookup failures degrade to the default topics.
func (s *Service) trendingData(ctx context.Context) TrendingData {
	snippets := make([][]string, len(trendingQueries))

	g, gctx := errgroup.WithContext(ctx)
	for i, query := range trendingQueries {
		g.Go(func() error {
			results, err := s.searcher.Search(gctx, query, "web")
			if err != nil {
				s.logger.Warn("Trending lookup failed",
					zap.String("query", query),
					zap.Error(err),
				)
				return nil
			}
			for _, r := range results {
				snippets[i] = append(snippets[i], r.Snippet)
			}
			return nil
		})
	}
	_ = g.Wait()

	var all []string
	for _, batch := range snippets {
		all = append(all, batch...)
	}

	topics := mineTopics(strings.Join(all, " "))
	if len(topics) == 0 {
		topics = defaultTopics()
	}

	return TrendingData{
		Certifications: defaultCertifications(),
		Topics:         topics,
	}
}

// mineTopics counts topic keyword occurrences in snippet text and keeps the
// five most frequent, scored at ten points per mention capped at 100.
func mineTopics(text string) []TrendingTopic {
	matches := topicPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, m := range matches {
		counts[strings.ToLower(m)]++
	}

	type entry struct {
		topic string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for topic, count := range counts {
		entries = append(entries, entry{topic, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].topic < entries[j].topic
	})
	if len(entries) > 5 {
		entries = entries[:5]
	}

	topics := make([]TrendingTopic, 0, len(entries))
	for _, e := range entries {
		score := e.count * 10
		if score > 100 {
			score = 100
		}
		topics = append(topics, TrendingTopic{
			Topic:      capitalize(e.topic),
			TrendScore: score,
			RelatedSearches: []string{
				fmt.Sprintf("%s tutorial", e.topic),
				fmt.Sprintf("%s best practices", e.topic),
				fmt.Sprintf("%s certification", e.topic),
			},
		})
	}
	return topics
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
