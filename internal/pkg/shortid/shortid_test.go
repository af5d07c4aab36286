//go:build unit

package shortid_test

import (
	"testing"

	"devhours-api/internal/pkg/shortid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		id, err := shortid.New()
		require.NoError(t, err)
		assert.Len(t, id, shortid.Length)
		assert.True(t, shortid.IsValid(id), "generated ID must satisfy its own format: %s", id)

		_, dup := seen[id]
		assert.False(t, dup, "generated duplicate ID: %s", id)
		seen[id] = struct{}{}
	}
}

func TestIsValid(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "nanoid shape", input: "V1StGXR8_Z5jdHi6B-myT", want: true},
		{name: "all underscores and hyphens", input: "_____----________----", want: true},
		{name: "too short", input: "V1StGXR8_Z5jdHi6B-my", want: false},
		{name: "too long", input: "V1StGXR8_Z5jdHi6B-myTT", want: false},
		{name: "free text", input: "fix the login page", want: false},
		{name: "ipfs uri", input: "ipfs://QmWorkSpecHash", want: false},
		{name: "empty", input: "", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, shortid.IsValid(tc.input))
		})
	}
}
