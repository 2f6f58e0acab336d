// Package suggest derives related topics and learning suggestions from a
// query and its search results. Pure keyword heuristics, no external calls.
package suggest

import (
	"strings"

	"github.com/learnhub-cloud/learnhub/internal/domain"
	"github.com/learnhub-cloud/learnhub/internal/domain/search/result"
)

const (
	maxRelatedTopics = 8
	maxSuggestions   = 6
)

// RelatedTopics extracts topic names from the result set and appends
// query-driven Salesforce topics.
func RelatedTopics(query string, results []result.Result) []string {
	var topics []string
	seen := make(map[string]bool)
	add := func(topic string) {
		if topic != "" && !seen[topic] {
			seen[topic] = true
			topics = append(topics, topic)
		}
	}

	for i := range results {
		if results[i].ContentType() == domain.ContentFlashcardSet {
			add(strings.TrimSuffix(results[i].Title(), " Flashcards"))
		}
	}

	queryLower := strings.ToLower(query)
	if strings.Contains(queryLower, "admin") {
		add("User Management")
		add("Security")
		add("Reports and Dashboards")
	}
	if strings.Contains(queryLower, "developer") || strings.Contains(queryLower, "apex") {
		add("Lightning Web Components")
		add("Visualforce")
		add("Integration")
	}
	if strings.Contains(queryLower, "sales") {
		add("Opportunities")
		add("Leads")
		add("Campaigns")
	}

	if len(topics) > maxRelatedTopics {
		topics = topics[:maxRelatedTopics]
	}
	return topics
}

// LearningSuggestions builds next-step suggestions for the result set.
func LearningSuggestions(query string, results []result.Result) []string {
	var suggestions []string

	if len(results) > 0 {
		suggestions = append(suggestions,
			"Create a personalized learning path based on these results",
			"Generate flashcards from the most relevant content",
			"Get AI-powered summaries of key resources",
		)
	}

	queryLower := strings.ToLower(query)
	if strings.Contains(queryLower, "certification") || strings.Contains(queryLower, "exam") {
		suggestions = append(suggestions,
			"Focus on hands-on practice with Trailhead Playgrounds",
			"Take practice exams to assess your readiness",
		)
	}
	if strings.Contains(queryLower, "beginner") || strings.Contains(queryLower, "basic") {
		suggestions = append(suggestions,
			"Start with Trailhead fundamentals modules",
			"Join the Trailblazer Community for support",
		)
	}

	suggestions = append(suggestions,
		"Bookmark important resources for future reference",
		"Set up a study schedule with spaced repetition",
	)

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}
