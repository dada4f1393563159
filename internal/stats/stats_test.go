package stats

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{text: "", want: 0},
		{text: "   \n\t ", want: 0},
		{text: "hello world", want: 2},
		{text: "  hello   world  ", want: 2},
		{text: "Hello, world. — ok !", want: 5},
		{text: "one\ntwo\tthree", want: 3},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, CountWords(tc.text), "%q", tc.text)
	}
}

func TestRecordAccumulatesTotal(t *testing.T) {
	counter := &memCounter{}
	accountant := NewAccountant(counter, nil)
	ctx := context.Background()

	entry, err := accountant.Record(ctx, "hello world")
	require.NoError(t, err)
	require.Equal(t, Entry{Added: 2, Total: 2}, entry)

	entry, err = accountant.Record(ctx, "one two three")
	require.NoError(t, err)
	require.Equal(t, Entry{Added: 3, Total: 5}, entry)

	total, err := accountant.Total(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
}

func TestRecordWhitespaceOnlySkipsWrite(t *testing.T) {
	counter := &memCounter{total: 9}
	entry, err := NewAccountant(counter, nil).Record(context.Background(), "  \n ")
	require.NoError(t, err)
	require.Equal(t, Entry{Added: 0, Total: 9}, entry)
	require.Zero(t, counter.adds)
}

func TestRecordTotalNeverDecreases(t *testing.T) {
	counter := &memCounter{}
	accountant := NewAccountant(counter, nil)

	var last int64
	for _, text := range []string{"a", "", "b c", "   ", "d e f g"} {
		entry, err := accountant.Record(context.Background(), text)
		require.NoError(t, err)
		require.GreaterOrEqual(t, entry.Total, last)
		last = entry.Total
	}
	require.Equal(t, int64(7), last)
}

func TestRecordWrapsCounterError(t *testing.T) {
	counter := &memCounter{err: errors.New("disk full")}
	_, err := NewAccountant(counter, nil).Record(context.Background(), "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "record 1 words")
	require.Contains(t, err.Error(), "disk full")
}

func TestMinutesSavedAndFormatting(t *testing.T) {
	require.Equal(t, int64(0), MinutesSaved(0))
	require.Equal(t, int64(1), MinutesSaved(40))
	require.Equal(t, int64(31), MinutesSaved(1234))

	require.Equal(t, "1,234", FormatTotal(1234, language.English))
	require.Equal(t, "1.234", FormatTotal(1234, language.German))
	require.Equal(t, "1,234 words · 31 min saved", Summary(1234, language.English))
}

type memCounter struct {
	mu    sync.Mutex
	total int64
	adds  int
	err   error
}

func (m *memCounter) AddWords(_ context.Context, n int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.adds++
	m.total += n
	return m.total, nil
}

func (m *memCounter) TotalWords(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total, nil
}
