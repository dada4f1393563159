package transcribe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		input string
		want  Provider
	}{
		{input: "", want: Primary},
		{input: "openai", want: Primary},
		{input: "Primary", want: Primary},
		{input: " groq ", want: Alternate},
		{input: "alternate", want: Alternate},
	}
	for _, tc := range tests {
		got, err := ParseProvider(tc.input)
		require.NoError(t, err, tc.input)
		require.Equal(t, tc.want, got, tc.input)
	}

	_, err := ParseProvider("deepgram")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown provider")
}

func TestProviderFixedEndpointAndModel(t *testing.T) {
	require.Equal(t, "https://api.openai.com/v1", Primary.BaseURL())
	require.Equal(t, "whisper-1", Primary.Model())
	require.Equal(t, "https://api.groq.com/openai/v1", Alternate.BaseURL())
	require.Equal(t, "whisper-large-v3", Alternate.Model())
	require.Equal(t, "https://console.groq.com/keys", Alternate.KeyURL())
	require.Equal(t, "GROQ_API_KEY", Alternate.EnvKey())
}

func TestZeroProviderBehavesAsPrimary(t *testing.T) {
	var zero Provider
	require.Equal(t, "openai", zero.Name())
	require.Equal(t, "whisper-1", zero.Model())
	require.True(t, zero.Equal(Primary))
	require.False(t, zero.Equal(Alternate))
	require.Equal(t, []Provider{Primary, Alternate}, Providers())
}
