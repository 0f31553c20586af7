package ingest

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// unknownValue is what a metadata field resolves to when the model
// response lacks the corresponding tag. Extraction degrades instead of
// aborting the ingestion.
const unknownValue = "Unknown"

// promptTemplate instructs the model to answer with exactly two tagged
// fields; everything else in the response is ignored.
const promptTemplate = `You will be given the content of a website. Your task is to identify the name of the product being described and determine its category (e.g., "front-end framework", "programming language", "database system", etc.).

Here is the website content:
<website_content>
{{WEBSITE_CONTENT}}
</website_content>

To complete this task, follow these steps:

1. Carefully read through the website content.

2. Look for prominent mentions of a product name. This is often found in headings, titles, or the first paragraph of the content. The product name is typically a proper noun or a branded term.

3. Analyze the description and features of the product to determine its category. Look for keywords that indicate the type of technology or tool it is.

4. Once you have identified the product name and category, format your response as follows:

   <name>Insert the product name here</name>
   <category>Insert the product category here</category>

Remember:
- The product name should be the specific name of the tool or technology, not a generic description.
- The category should be a brief (1-4 words) description of the type of product, such as "front-end framework", "programming language", or "database system".
- If you cannot confidently determine either the name or the category, use "Unknown" as the value.

Provide only the name and category in the specified format without any additional explanation or commentary.`

var (
	nameTagRe     = regexp.MustCompile(`(?s)<name>(.*?)</name>`)
	categoryTagRe = regexp.MustCompile(`(?s)<category>(.*?)</category>`)
)

// Metadata is the structured result of a metadata extraction.
type Metadata struct {
	Name     string
	Category string
}

// Completer submits a prompt to a language model and returns the raw
// completion text. Implementations must honor the context deadline.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Extractor derives product metadata for a domain: fetch the rendered
// page text, then ask the model to classify it.
type Extractor struct {
	content   *ContentFetcher
	completer Completer
}

// NewExtractor builds an Extractor from its two collaborators.
func NewExtractor(content *ContentFetcher, completer Completer) *Extractor {
	return &Extractor{content: content, completer: completer}
}

// Extract returns the product name and category for the domain. It only
// errors on transport failures of the content fetch or the completion
// call; a well-formed but unhelpful model response yields "Unknown"
// fields instead.
func (e *Extractor) Extract(ctx context.Context, domain string) (Metadata, error) {
	text, err := e.content.Fetch(ctx, domain)
	if err != nil {
		return Metadata{}, err
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{WEBSITE_CONTENT}}", text)
	completion, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrCompletion, err)
	}

	return Metadata{
		Name:     extractTag(nameTagRe, completion),
		Category: extractTag(categoryTagRe, completion),
	}, nil
}

// extractTag returns the trimmed first non-greedy match of the tag pair,
// or "Unknown" when the tag is absent. Tags may span multiple lines.
func extractTag(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return unknownValue
	}
	return strings.TrimSpace(m[1])
}
