package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogPlaceByID(t *testing.T) {
	catalog := testCatalog()

	t.Run("Find an existing place", func(t *testing.T) {
		place, ok := catalog.PlaceByID(11)

		require.True(t, ok, "Expected place 11 to be found")
		assert.Equal(t, "Lizzie's", place.Name)
	})

	t.Run("Miss an unknown id", func(t *testing.T) {
		place, ok := catalog.PlaceByID(999)

		assert.False(t, ok, "Expected an unknown id to miss")
		assert.Nil(t, place)
	})

	t.Run("Returned pointer aliases the catalog entry", func(t *testing.T) {
		place, ok := catalog.PlaceByID(10)
		require.True(t, ok)

		place.Summary = "Mercenary bar."

		again, _ := catalog.PlaceByID(10)
		assert.Equal(t, "Mercenary bar.", again.Summary, "Expected the catalog entry itself to change")
	})
}

func TestCatalogZoneByName(t *testing.T) {
	catalog := testCatalog()

	t.Run("Find an existing zone", func(t *testing.T) {
		zone, ok := catalog.ZoneByName("Badlands")

		require.True(t, ok)
		assert.Equal(t, 2, zone.ID)
	})

	t.Run("Name matching is case sensitive", func(t *testing.T) {
		_, ok := catalog.ZoneByName("badlands")

		assert.False(t, ok)
	})
}

func TestCatalogPlacesInZone(t *testing.T) {
	catalog := testCatalog()

	t.Run("Places keep catalog order within their zone", func(t *testing.T) {
		places := catalog.PlacesInZone(1)

		require.Len(t, places, 2)
		assert.Equal(t, int64(10), places[0].ID)
		assert.Equal(t, int64(11), places[1].ID)
	})

	t.Run("Zone without places yields nothing", func(t *testing.T) {
		assert.Empty(t, catalog.PlacesInZone(3))
	})
}
