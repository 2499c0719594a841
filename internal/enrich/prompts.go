package enrich

import (
	"fmt"

	"ai-news-digest/internal/model"
)

// maxPromptRunes bounds the content portion of a prompt to keep the request
// inside the provider's context window.
const maxPromptRunes = 30000

const articlePrompt = `Analyze this article about enterprise AI/tech and provide:

1. SUMMARY: A 3-5 sentence executive summary focused on what matters for enterprise AI investment.

2. ENTITIES: Extract key entities in JSON format:
   - companies: List of company names mentioned
   - people: List of people mentioned with their roles if known
   - funding: Any funding details (amount, stage, investors)
   - technologies: Key technologies or products mentioned

3. CATEGORIES: Classify into one or more categories:
   - funding: Funding announcements
   - product_launch: New product or feature launches
   - m_and_a: Mergers, acquisitions, partnerships
   - regulatory: Policy or regulatory developments
   - talent: Executive hires, departures, team changes
   - technical: Technical breakthroughs, research
   - trend: Emerging market or technology trends

4. INVESTMENT_SIGNALS: Rate investment relevance (1-10) and explain why this matters for enterprise AI investors.

Article Title: %s
Source: %s

Content:
%s

Respond in JSON format:
{
  "summary": "...",
  "entities": {"companies": [], "people": [], "funding": {}, "technologies": []},
  "categories": [],
  "investment_signals": {"relevance_score": 0, "rationale": "..."}
}`

const podcastPrompt = `Analyze this podcast transcript about enterprise AI/tech and provide:

1. SUMMARY: 5-7 bullet points covering the key discussion topics, with guest context.

2. KEY_TIMESTAMPS: Important moments in the conversation (use segment timestamps if available).

3. ENTITIES: Extract in JSON format:
   - companies: Companies discussed
   - people: People mentioned (especially guest details)
   - investors: Investors or VCs mentioned
   - trends: Market trends discussed

4. CATEGORIES: Classify the main themes (funding, product_launch, m_and_a, regulatory, talent, technical, trend)

5. INVESTMENT_SIGNALS: Rate relevance (1-10) for enterprise AI investment and explain key takeaways.

Podcast Title: %s
Source: %s
Duration: %d minutes

Transcript:
%s

Respond in JSON format:
{
  "summary": ["bullet1", "bullet2", ...],
  "key_timestamps": [{"time": "MM:SS", "topic": "..."}],
  "entities": {"companies": [], "people": [], "investors": [], "trends": []},
  "categories": [],
  "investment_signals": {"relevance_score": 0, "rationale": "..."}
}`

const videoPrompt = `Analyze this video transcript about enterprise AI/tech and provide:

1. SUMMARY: 5-7 bullet points with key insights.

2. CONTENT_TYPE: Classify as "interview", "tutorial", "analysis", or "other".

3. KEY_TIMESTAMPS: Important moments worth linking to.

4. ENTITIES: Extract companies, people, technologies discussed.

5. INVESTMENT_SIGNALS: Rate relevance (1-10) for enterprise AI investment.

Video Title: %s
Source: %s
Duration: %d minutes

Transcript:
%s

Respond in JSON format:
{
  "summary": ["bullet1", "bullet2", ...],
  "content_type": "...",
  "key_timestamps": [{"time": "MM:SS", "topic": "..."}],
  "entities": {"companies": [], "people": [], "technologies": []},
  "categories": [],
  "investment_signals": {"relevance_score": 0, "rationale": "..."}
}`

// BuildPrompt renders the per-type analysis prompt for one item. Transcript
// text is preferred over raw content and truncated to the context budget.
func BuildPrompt(item model.ContentItem) string {
	text := item.Text()
	if runes := []rune(text); len(runes) > maxPromptRunes {
		text = string(runes[:maxPromptRunes])
	}
	durationMins := item.DurationSeconds / 60

	switch item.ContentType {
	case model.TypePodcast:
		return fmt.Sprintf(podcastPrompt, item.Title, item.SourceName, durationMins, text)
	case model.TypeVideo:
		return fmt.Sprintf(videoPrompt, item.Title, item.SourceName, durationMins, text)
	default:
		return fmt.Sprintf(articlePrompt, item.Title, item.SourceName, text)
	}
}
