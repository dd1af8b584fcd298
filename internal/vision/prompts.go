package vision

import "fmt"

// Prompts sent alongside page screenshots. Each one demands bare JSON so
// the tolerant parser has a fighting chance with smaller models.

const listingPromptFmt = `This is a screenshot of a %s search results page for the query "%s".
Extract every organic result visible in the screenshot.
Respond with a JSON array only, no prose and no markdown fences. Each element:
{"title": "...", "url": "...", "excerpt": "...", "publisher": "...", "date": "...", "rank": 1}
Rules:
- rank is the 1-based position of the result on the page, top to bottom
- url must be the destination link, not the search engine redirect
- leave a field as an empty string when it is not visible
- skip ads, shopping carousels and "people also ask" boxes`

const summaryPromptFmt = `This is a screenshot of the page at %s.
Describe the page content. Respond with a single JSON object only, no prose
and no markdown fences:
{"url": "...", "title": "...", "author": "...", "date": "...", "publisher": "...", "summary": "...", "has_comments": false}
Rules:
- summary is 2-4 sentences covering the page's main content
- has_comments is true only when a comment or discussion section is visible
- leave a field as an empty string when it is not visible`

const commentsPrompt = `This is a screenshot of the discussion section of a web page.
Extract the visible comments in the order they appear.
Respond with a JSON array of strings only, no prose and no markdown fences:
["first comment text", "second comment text"]
Rules:
- one element per comment, full text as shown
- ignore reply buttons, vote widgets and navigation`

const commentMetaPromptFmt = `This is a screenshot of the discussion section of a web page with %d visible comments.
For each comment, in the same top-to-bottom order, extract its metadata.
Respond with a JSON array only, no prose and no markdown fences. Each element:
{"author": "...", "posted_at": "...", "likes": "..."}
Rules:
- keep exactly one element per comment, in display order
- posted_at and likes are the values as displayed, leave empty when absent`

func listingPrompt(engine, term string) string {
	return fmt.Sprintf(listingPromptFmt, engine, term)
}

func summaryPrompt(pageURL string) string {
	return fmt.Sprintf(summaryPromptFmt, pageURL)
}

func commentMetaPrompt(count int) string {
	return fmt.Sprintf(commentMetaPromptFmt, count)
}
