package generate

import "fmt"

const summarizeSystemPrompt = "You are an expert Salesforce learning coach who creates " +
	"clear, actionable summaries focused on practical application and certification " +
	"preparation. Always respond with valid JSON."

const flashcardsSystemPrompt = "You are an expert Salesforce certification instructor " +
	"who creates high-quality, practical flashcards that help students succeed in " +
	"real-world scenarios and certification exams. Always respond with valid JSON."

const learningPathSystemPrompt = "You are an expert Salesforce learning architect with " +
	"deep knowledge of all Salesforce products, certifications, and learning resources. " +
	"You create practical, achievable learning paths that lead to real-world success. " +
	"Always respond with valid JSON and use actual Salesforce URLs where possible."

// lengthInstruction maps a summary length to its prompt phrasing.
func lengthInstruction(length string) string {
	switch length {
	case LengthShort:
		return "in 2-3 concise sentences"
	case LengthLong:
		return "in 3-4 detailed paragraphs with comprehensive coverage"
	default:
		return "in 1-2 paragraphs with key details"
	}
}

func buildSummarizePrompt(content, length, focus string) string {
	focusInstruction := ""
	if focus != "" {
		focusInstruction = fmt.Sprintf("Focus specifically on %s aspects.", focus)
	}

	return fmt.Sprintf(`As an expert Salesforce learning coach, summarize the following content %s.
Extract the most important concepts and learning objectives. %s

Content: %s

Please respond with a JSON object containing:
- summary: the main summary text
- key_concepts: array of 3-7 key concepts/terms covered

Focus on practical application and certification relevance.`,
		lengthInstruction(length), focusInstruction, content)
}

func buildFlashcardsPrompt(content, topic string, numCards int, certification string) string {
	certFocus := ""
	if certification != "" {
		certFocus = fmt.Sprintf("Focus on %s certification requirements.", certification)
	}

	return fmt.Sprintf(`As an expert Salesforce instructor, create %d high-quality flashcards based on the following content for the topic %q.

%s

Content: %s

Create flashcards that:
- Test understanding of key concepts, not just memorization
- Include practical scenarios where applicable
- Cover different difficulty levels
- Are relevant for certification preparation
- Include clear, concise questions and comprehensive answers

Respond with a JSON object containing a "flashcards" array where each flashcard has:
- question: clear, specific question
- answer: comprehensive but concise answer
- explanation: optional additional context (if helpful)
- tags: array of relevant topic tags
- difficulty: "Easy", "Medium", or "Hard"
- certification_relevance: array of certifications this applies to (if applicable)

Ensure variety in question types: definitions, scenarios, best practices, and troubleshooting.`,
		numCards, topic, certFocus, content)
}

func buildLearningPathPrompt(prompt, existingKnowledge, learningStyle, timeCommitment string) string {
	styleNote := ""
	if learningStyle != "" {
		styleNote = fmt.Sprintf("Learning style preference: %s.", learningStyle)
	}
	timeNote := ""
	if timeCommitment != "" {
		timeNote = fmt.Sprintf("Available time commitment: %s.", timeCommitment)
	}

	return fmt.Sprintf(`As an expert Salesforce learning architect, create a comprehensive, personalized learning path based on:

Goal: %q
Current Knowledge: %q
%s
%s

Create a structured learning path that includes:
- Logical progression from fundamentals to advanced concepts
- Integration of Trailhead modules, Developer documentation, and hands-on practice
- Real-world application scenarios
- Certification preparation alignment
- Realistic time estimates

Use actual Trailhead URLs where possible (e.g., https://trailhead.salesforce.com/content/learn/modules/[module-name])
Include Developer documentation links (e.g., https://developer.salesforce.com/docs/[relevant-section])

Respond with a JSON object containing:
{
  "title": "Learning Path Title",
  "description": "Brief overview of what learner will achieve",
  "difficulty_level": "Beginner|Intermediate|Advanced",
  "estimated_total_duration": "X hours/weeks",
  "modules": [
    {
      "title": "Module name",
      "description": "What this module covers",
      "trailhead_link": "actual Trailhead URL if applicable",
      "developer_docs_link": "actual Developer docs URL if applicable",
      "estimated_time": "X hours",
      "difficulty": "Beginner|Intermediate|Advanced",
      "key_concepts": ["concept1", "concept2"],
      "prerequisites": ["prereq1", "prereq2"]
    }
  ],
  "certification_alignment": ["relevant certifications"],
  "next_steps": ["suggestions for after completion"]
}

Ensure the path is practical, achievable, and aligned with current Salesforce best practices.`,
		prompt, existingKnowledge, styleNote, timeNote)
}
