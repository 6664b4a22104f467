package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	t.Run("valid array", func(t *testing.T) {
		var got []string
		require.NoError(t, ParseJSON(`["a", "b"]`, &got))
		assert.Equal(t, []string{"a", "b"}, got)
	})

	t.Run("trailing data rejected", func(t *testing.T) {
		var got []string
		assert.Error(t, ParseJSON(`["a"] extra`, &got))
	})

	t.Run("strict rejects unknown fields", func(t *testing.T) {
		var got struct {
			Name string `json:"name"`
		}
		assert.Error(t, ParseJSONStrict(`{"name": "x", "other": 1}`, &got))
		assert.NoError(t, ParseJSON(`{"name": "x", "other": 1}`, &got))
	})
}

func TestQuoteJSONKeys(t *testing.T) {
	assert.Equal(t, `{"name": "x", "qty": 2}`, QuoteJSONKeys(`{name: "x", qty: 2}`))
	assert.Equal(t, `{"name": "x"}`, QuoteJSONKeys(`{"name": "x"}`))
}

func TestExtractJSONArray(t *testing.T) {
	t.Run("prose around array", func(t *testing.T) {
		assert.Equal(t, `["a", "b"]`, ExtractJSONArray("Sure!\n[\"a\", \"b\"]\nEnjoy."))
	})

	t.Run("plain array untouched", func(t *testing.T) {
		assert.Equal(t, `["a"]`, ExtractJSONArray(`["a"]`))
	})

	t.Run("no array returns input", func(t *testing.T) {
		assert.Equal(t, "nothing here", ExtractJSONArray("nothing here"))
	})
}
