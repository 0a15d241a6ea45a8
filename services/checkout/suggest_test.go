package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestEmailCompletions(t *testing.T) {
	testCases := []struct {
		value    string
		expected []string
	}{
		{"a@gm", []string{"a@gmail.com"}},
		{"a@x", nil},
		{"maria", nil},
		{"maria@", []string{"maria@gmail.com", "maria@hotmail.com", "maria@icloud.com", "maria@yahoo.com", "maria@outlook.com"}},
		{"maria@GM", []string{"maria@gmail.com"}},
		{"maria@h", []string{"maria@hotmail.com"}},
		{"maria@gmail.com", nil},
		{"maria@out", []string{"maria@outlook.com"}},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			assert.Equal(t, tc.expected, suggestEmailCompletions(tc.value))
		})
	}
}
