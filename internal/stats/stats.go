// Package stats counts dictated words and keeps the running total.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TypingWordsPerMinute is the typing speed the time-saved estimate assumes.
const TypingWordsPerMinute = 40

// CountWords splits on runs of whitespace. Punctuation-only tokens count.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Counter is the persistence side of the running total.
type Counter interface {
	AddWords(context.Context, int64) (int64, error)
	TotalWords(context.Context) (int64, error)
}

// Entry is the outcome of recording one transcript.
type Entry struct {
	Added int64
	Total int64
}

// Accountant applies word counts to a Counter.
type Accountant struct {
	counter Counter
	logger  *slog.Logger
}

func NewAccountant(counter Counter, logger *slog.Logger) *Accountant {
	return &Accountant{counter: counter, logger: logger}
}

// Record adds the words in text to the total. Zero words skip the write.
func (a *Accountant) Record(ctx context.Context, text string) (Entry, error) {
	added := int64(CountWords(text))
	if added == 0 {
		total, err := a.counter.TotalWords(ctx)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Total: total}, nil
	}

	total, err := a.counter.AddWords(ctx, added)
	if err != nil {
		return Entry{}, fmt.Errorf("record %d words: %w", added, err)
	}
	if a.logger != nil {
		a.logger.Debug("word count updated", "added", added, "total", total)
	}
	return Entry{Added: added, Total: total}, nil
}

// Total returns the persisted running total.
func (a *Accountant) Total(ctx context.Context) (int64, error) {
	return a.counter.TotalWords(ctx)
}

// MinutesSaved estimates typing time avoided, rounded to whole minutes.
func MinutesSaved(totalWords int64) int64 {
	if totalWords <= 0 {
		return 0
	}
	return int64(math.Round(float64(totalWords) / TypingWordsPerMinute))
}

// FormatTotal renders n with the locale's digit grouping.
func FormatTotal(n int64, tag language.Tag) string {
	return message.NewPrinter(tag).Sprintf("%d", n)
}

// Summary is the one-line stats text shown in the tray and CLI.
func Summary(totalWords int64, tag language.Tag) string {
	p := message.NewPrinter(tag)
	return p.Sprintf("%d words · %d min saved", totalWords, MinutesSaved(totalWords))
}
