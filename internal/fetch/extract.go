package fetch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MinContentLength is the shortest extracted description accepted without
// trying the browser fallback.
const MinContentLength = 500

// Platform is a known applicant tracking system.
type Platform string

// Known platforms. PlatformUnknown uses the generic selectors only.
const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformAshby      Platform = "ashby"
	PlatformUnknown    Platform = "unknown"
)

type platformRules struct {
	hosts   []string
	content []string
	noise   []string
}

var platforms = map[Platform]platformRules{
	PlatformGreenhouse: {
		hosts:   []string{"greenhouse.io"},
		content: []string{".job__description.body", ".job__description", "#content", ".job-post-container"},
		noise:   []string{".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply"},
	},
	PlatformLever: {
		hosts:   []string{"lever.co"},
		content: []string{".posting-page", ".posting-description", ".content"},
		noise:   []string{".apply-section", ".posting-apply"},
	},
	PlatformWorkday: {
		hosts:   []string{"workday.com", "myworkdayjobs.com"},
		content: []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']", ".job-description"},
		noise:   []string{"[data-automation-id='applyButton']"},
	},
	PlatformAshby: {
		hosts:   []string{"ashbyhq.com"},
		content: []string{"[class*='descriptionText']", "main"},
	},
}

// genericContent is tried for unknown platforms.
var genericContent = []string{
	".job-description",
	"#job-description",
	".job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
	"#content",
}

// commonNoise is removed on every page.
var commonNoise = []string{
	"nav", "footer", "header", "script", "style", "noscript", "form",
	".cookie-banner", ".cookie-consent", ".social-share", ".eeo-statement",
	".application-form", "#application-form",
}

// DetectPlatform identifies the tracking system hosting rawURL.
func DetectPlatform(rawURL string) Platform {
	u, err := url.Parse(rawURL)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(u.Hostname())
	for p, rules := range platforms {
		for _, h := range rules.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return p
			}
		}
	}
	return PlatformUnknown
}

// NeedsBrowser reports whether text is too short to be a full description,
// which usually means the page renders client side.
func NeedsBrowser(text string) bool {
	return len(strings.TrimSpace(text)) < MinContentLength
}

// ExtractText removes page chrome from html and returns the description text
// found by the platform's selectors, falling back to the body.
func ExtractText(html string, platform Platform) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	rules := platforms[platform]
	doc.Find(strings.Join(append(append([]string{}, commonNoise...), rules.noise...), ", ")).Remove()

	selectors := append(append([]string{}, rules.content...), genericContent...)
	content := doc.Find("body")
	for _, sel := range selectors {
		if found := doc.Find(sel); found.Length() > 0 {
			content = found.First()
			break
		}
	}

	return cleanLines(blockText(content)), nil
}

// blockText returns the text of sel with a newline after every block element
// so list items and paragraphs do not run together.
func blockText(sel *goquery.Selection) string {
	sel.Find("p, li, br, h1, h2, h3, h4, h5, h6, div, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return sel.Text()
}

func cleanLines(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
