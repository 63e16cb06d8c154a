package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReferenceType(t *testing.T) {
	t.Run("Parse all known types", func(t *testing.T) {
		for _, s := range []string{"setting", "mention", "transit"} {
			ref, err := ParseReferenceType(s)

			require.NoError(t, err, "Expected %q to parse", s)
			assert.Equal(t, ReferenceType(s), ref)
			assert.True(t, ref.Valid())
		}
	})

	t.Run("Unknown type fails", func(t *testing.T) {
		_, err := ParseReferenceType("visited")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid reference type")
	})

	t.Run("Empty type fails", func(t *testing.T) {
		_, err := ParseReferenceType("")

		require.Error(t, err)
	})

	t.Run("Case matters", func(t *testing.T) {
		_, err := ParseReferenceType("Setting")

		require.Error(t, err, "Expected types to be lower case only")
	})
}

func TestOneSetting(t *testing.T) {
	t.Run("No references is fine", func(t *testing.T) {
		err := OneSetting(nil)

		assert.NoError(t, err)
	})

	t.Run("Single setting is fine", func(t *testing.T) {
		refs := []PlaceChunkReference{
			{ChunkID: 1, PlaceID: 10, Type: ReferenceSetting},
			{ChunkID: 1, PlaceID: 11, Type: ReferenceMention},
			{ChunkID: 1, PlaceID: 12, Type: ReferenceTransit},
		}

		err := OneSetting(refs)
		assert.NoError(t, err)
	})

	t.Run("Two settings fail", func(t *testing.T) {
		refs := []PlaceChunkReference{
			{ChunkID: 1, PlaceID: 10, Type: ReferenceSetting},
			{ChunkID: 1, PlaceID: 11, Type: ReferenceSetting},
		}

		err := OneSetting(refs)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "more than one setting")
	})
}
