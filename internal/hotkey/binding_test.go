package hotkey

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCanonicalizes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Option+Space", want: "Option+Space"},
		{in: "alt+space", want: "Option+Space"},
		{in: "shift+ctrl+d", want: "Control+Shift+D"},
		{in: "CommandOrControl+Shift+F5", want: "Shift+Command+F5"},
		{in: " cmd + 7 ", want: "Command+7"},
		{in: "F12", want: "F12"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			b, err := Parse(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, b.String())
		})
	}
}

func TestParseRejectsInvalidDescriptors(t *testing.T) {
	for _, in := range []string{"", "Option+", "Option", "Space+Option", "Option+F13", "Option+Banana", "Option++Space"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
		})
	}
}

func TestBindingHas(t *testing.T) {
	b, err := Parse("Control+Option+R")
	require.NoError(t, err)
	require.True(t, b.Has(ModControl))
	require.True(t, b.Has(ModOption))
	require.False(t, b.Has(ModCommand))
}
