package fetch

import (
	"context"
	"errors"
	"log"
	"strings"
)

// ErrEmptyPosting is returned when a job page yields no readable text.
var ErrEmptyPosting = errors.New("job posting has no readable text")

// JobDescription fetches a job posting and extracts its description text using
// the selectors of the detected job board. When opts.UseBrowser is set and the
// static HTML produces too little text, the page is rendered in headless Chrome
// and extracted again.
func JobDescription(ctx context.Context, urlStr string, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	platform := DetectPlatform(urlStr)
	content := PlatformContentSelectors(platform)
	noise := PlatformNoiseSelectors(platform)

	result, err := URL(ctx, urlStr, opts)
	if err != nil {
		return "", err
	}

	text, err := ExtractMainText(result.HTML, content, noise...)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "failed to extract text", Cause: err}
	}
	if opts.Verbose {
		log.Printf("[FETCH] %s (%s): extracted %d chars", urlStr, platform, len(text))
	}

	if opts.UseBrowser && ShouldUseBrowser(text) {
		if opts.Verbose {
			log.Printf("[FETCH] Content too short, rendering %s in browser", urlStr)
		}
		html, err := WithBrowser(ctx, urlStr, opts.Timeout, opts.Verbose)
		if err != nil {
			log.Printf("[FETCH] Browser fallback failed for %s: %v", urlStr, err)
		} else if rendered, err := ExtractMainText(html, content, noise...); err == nil && len(rendered) > len(text) {
			text = rendered
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", &Error{URL: urlStr, Message: "no job description found", Cause: ErrEmptyPosting}
	}
	return text, nil
}
