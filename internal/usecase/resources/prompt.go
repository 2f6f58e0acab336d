package resources

import (
	"encoding/json"
	"fmt"

	"github.com/learnhub-cloud/learnhub/internal/domain"
)

const curatorSystemPrompt = "You are a seasoned Salesforce Learning Curator with deep " +
	"knowledge of the current Salesforce ecosystem. Always respond with valid JSON and " +
	"prioritize the most current and relevant resources."

const agentforceNote = "\n\nIMPORTANT: Agentforce Specialist is the top trending AI " +
	"certification and should lead your recommendations. AI Associate is nearing " +
	"retirement. Still relevant for legacy learners, but being phased out."

const outputFormatBlock = "```" + `
### 🔗 Official Resources ⭐
- [Resource Title](https://example.com) (Updated YYYY)

### 🚀 Trailhead Trails & Modules ⭐
- [Trail Name](https://trailhead.salesforce.com)

### 💡 Implementation Tips & Best Practices
- [Blog Post Title](https://blog.com) (YYYY-MM-DD)

### 💬 Community Discussions
- [Discussion Title](https://community.salesforce.com) (YYYY-MM-DD)

### 📺 Video Tutorials
- [Video Title](https://youtube.com) (Published YYYY-MM-DD)
` + "```"

func buildCuratorPrompt(product, purpose string, trending TrendingData, results []domain.WebResult, agentforceRelevant bool) string {
	note := ""
	if agentforceRelevant {
		note = agentforceNote
	}

	if len(results) > 10 {
		results = results[:10]
	}
	trendingJSON, _ := json.MarshalIndent(trending, "", "  ")
	resultsJSON, _ := json.MarshalIndent(results, "", "  ")

	certLine := ""
	if purpose == PurposeCertificationPrep {
		certLine = fmt.Sprintf("\n   - %q (if certification_prep is the selected purpose)", product+" certification guide")
	}

	return fmt.Sprintf(`Act as a seasoned Salesforce Learning Curator. A user is preparing for %q with the goal of %q. Your mission is to find the best learning resources to help them succeed!

Here's how to accomplish this:

1. **Resource Identification:** Focus on these key resource types:
   - **Official Salesforce Documentation:** The definitive source of truth.
   - **Trailhead Learning Paths & Modules:** Hands-on, guided learning experiences.
   - **Certification Exam Guides (if applicable):** Essential for certification prep.
   - **Implementation Guides & Best Practices:** Real-world advice from Salesforce experts.
   - **Active Salesforce Community Discussions:** Insights from fellow Salesforce professionals.
   - **Engaging Video Tutorials:** Visual learning for complex topics.
%s

2. **Current Trending Context:** %s

3. **Live Search Results:** %s

4. **Web Search Strategy:** Conduct focused web searches using these queries:
   - "Salesforce %s %s resources"
   - "%s implementation guide"
   - "%s trailhead learning path"%s
   - "%s best practices"

5. **Output Format (Critical):** Deliver results in this precise format:

%s

6. **Strict Rules:**
   - **Hyperlinked Titles Only:** Provide *only* hyperlinked titles; no descriptions.
   - **Active URLs Only:** Ensure all URLs return a status code of 200 (active).
   - **Salesforce Priority:** Prioritize resources from Salesforce domains (trailhead.salesforce.com, help.salesforce.com, developer.salesforce.com, success.salesforce.com, and salesforce.com).
   - **Maximum Resources:** Limit the total number of resources to a maximum of 10.
   - **Essential Resource Marker:** Mark truly essential resources with a ⭐. Place this next to the category header for the most important resources in that category.
   - **Date Inclusion:** Include publication or last updated dates (YYYY-MM-DD or Updated YYYY) when available.
   - **Category Minimum:** Only include categories with 2 or more relevant resources.

Let's find the best resources for %q and the goal of %q!

Also provide trending insights about why this product/certification is currently relevant in the Salesforce ecosystem.

Respond with JSON:
{
  "resources": "formatted resource list as specified above",
  "trending_insights": "analysis of current trends and relevance"
}`,
		product, purpose,
		note,
		trendingJSON, resultsJSON,
		product, purpose, product, product, certLine, product,
		outputFormatBlock,
		product, purpose,
	)
}

// fallbackResources is the formatted list returned when the model's answer
// cannot be parsed.
func fallbackResources(product string) string {
	return fmt.Sprintf(`### 🔗 Official Resources ⭐
- [Salesforce %s Documentation](https://help.salesforce.com) (Updated 2024)
- [%s Implementation Guide](https://developer.salesforce.com) (Updated 2024)

### 🚀 Trailhead Trails & Modules ⭐
- [%s Learning Path](https://trailhead.salesforce.com)
- [%s Specialist Trail](https://trailhead.salesforce.com)

### 💡 Implementation Tips & Best Practices
- [%s Best Practices Guide](https://success.salesforce.com) (2024-01-15)
- [Expert Tips for %s](https://salesforce.com/blog) (2024-01-10)`,
		product, product, product, product, product, product)
}

// genericFallbackResources covers total pipeline failure, when not even the
// product-specific fallback can be attributed to a model response.
const genericFallbackResources = `### 🔗 Official Resources ⭐
- [Salesforce Help Documentation](https://help.salesforce.com) (Updated 2024)
- [Developer Documentation](https://developer.salesforce.com) (Updated 2024)

### 🚀 Trailhead Trails & Modules ⭐
- [Salesforce Fundamentals](https://trailhead.salesforce.com)
- [Platform Basics](https://trailhead.salesforce.com)

### 💡 Implementation Tips & Best Practices
- [Salesforce Success Community](https://success.salesforce.com) (2024-01-15)
- [Best Practices Guide](https://salesforce.com/resources) (2024-01-10)`
