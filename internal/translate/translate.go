package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const promptTemplate = "You are a professional translator. Translate the following " +
	"technical documentation from English into %s. Keep terminology accurate, " +
	"technical details intact, and formatting unchanged. Return only the " +
	"translation, with no extra commentary.\n\n%s"

// Translator translates Markdown documents segment by segment, throttling
// API calls and falling back to the original text when a call fails.
type Translator struct {
	completer Completer
	limiter   *rate.Limiter
	language  string
	logger    *log.Logger
}

// NewTranslator builds a Translator targeting the given language.
// requestsPerSecond bounds the API call rate; zero or negative means
// unthrottled.
func NewTranslator(completer Completer, language string, requestsPerSecond float64, logger *log.Logger) *Translator {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Translator{
		completer: completer,
		limiter:   limiter,
		language:  language,
		logger:    logger,
	}
}

// TranslateMarkdown translates the prose and headings of content, keeping
// code blocks and diagrams byte for byte. A failed segment stays in the
// source language rather than failing the whole document.
func (t *Translator) TranslateMarkdown(ctx context.Context, content string) (string, error) {
	var b strings.Builder
	for _, seg := range SegmentMarkdown(content) {
		switch seg.Kind {
		case SegmentText, SegmentHeader:
			translated, err := t.translateText(ctx, seg.Text)
			if err != nil {
				if ctx.Err() != nil {
					return "", ctx.Err()
				}
				t.logger.Warn("segment left untranslated", "err", err)
				translated = seg.Text
			}
			b.WriteString(translated)
		default:
			b.WriteString(seg.Text)
		}
	}

	result := b.String()
	if !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result, nil
}

func (t *Translator) translateText(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, err := t.completer.Complete(ctx, fmt.Sprintf(promptTemplate, t.language, text))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
