package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
)

func TestInitialState(t *testing.T) {
	s := NewState()

	assert.Equal(t, DefaultLatitude, s.Center.Lat)
	assert.Equal(t, DefaultLongitude, s.Center.Lng)
	assert.Equal(t, DefaultZoom, s.Zoom)
	assert.Equal(t, ModeIdle, s.Mode)
	assert.False(t, s.FilterActive())
	assert.False(t, s.FormVisible())
}

func TestPlacementFlow(t *testing.T) {
	t.Run("AddThenClickOpensFormAtClickedCoords", func(t *testing.T) {
		s := NewState()

		s = Apply(s, AddLocationStarted{})
		assert.Equal(t, ModePlacing, s.Mode)
		assert.False(t, s.FormVisible())

		s = Apply(s, MapClicked{Coords: models.Coordinates{Lat: 43.9, Lng: 19.8}})
		assert.Equal(t, ModePendingPlacement, s.Mode)
		assert.True(t, s.FormVisible())
		assert.NotNil(t, s.PendingCoords)
		assert.Equal(t, 43.9, s.PendingCoords.Lat)
		assert.Equal(t, 19.8, s.PendingCoords.Lng)
	})

	t.Run("ClickIgnoredOutsidePlacing", func(t *testing.T) {
		s := NewState()

		s = Apply(s, MapClicked{Coords: models.Coordinates{Lat: 1, Lng: 2}})

		assert.Equal(t, ModeIdle, s.Mode)
		assert.Nil(t, s.PendingCoords)
	})

	t.Run("MarkerDragMovesPendingCoords", func(t *testing.T) {
		s := NewState()
		s = Apply(s, AddLocationStarted{})
		s = Apply(s, MapClicked{Coords: models.Coordinates{Lat: 43.9, Lng: 19.8}})

		s = Apply(s, MarkerDragged{Coords: models.Coordinates{Lat: 43.91, Lng: 19.81}})

		assert.Equal(t, ModePendingPlacement, s.Mode)
		assert.Equal(t, 43.91, s.PendingCoords.Lat)
		assert.Equal(t, 19.81, s.PendingCoords.Lng)
	})

	t.Run("CancelReturnsToIdle", func(t *testing.T) {
		s := NewState()
		s = Apply(s, AddLocationStarted{})
		s = Apply(s, MapClicked{Coords: models.Coordinates{Lat: 43.9, Lng: 19.8}})

		s = Apply(s, FlowCancelled{})

		assert.Equal(t, ModeIdle, s.Mode)
		assert.Nil(t, s.PendingCoords)
		assert.False(t, s.FormVisible())
	})

	t.Run("SubmitEndsFlow", func(t *testing.T) {
		s := NewState()
		s = Apply(s, AddLocationStarted{})
		s = Apply(s, MapClicked{Coords: models.Coordinates{Lat: 43.9, Lng: 19.8}})

		s = Apply(s, SubmitSucceeded{})

		assert.Equal(t, ModeIdle, s.Mode)
		assert.Nil(t, s.PendingCoords)
	})
}

// Entering the edit flow while a placement is pending must clear the
// pending coordinates, so the form never opens with mismatched data.
func TestEditClearsPendingPlacement(t *testing.T) {
	s := NewState()
	s = Apply(s, AddLocationStarted{})
	s = Apply(s, MapClicked{Coords: models.Coordinates{Lat: 43.9, Lng: 19.8}})
	assert.NotNil(t, s.PendingCoords)

	existing := models.Location{ID: "loc-1", Name: "Old bridge", Latitude: 43.85, Longitude: 19.84}
	s = Apply(s, EditStarted{Location: existing})

	assert.Equal(t, ModeEditing, s.Mode)
	assert.Nil(t, s.PendingCoords)
	assert.NotNil(t, s.Selected)
	assert.Equal(t, "loc-1", s.Selected.ID)
	assert.True(t, s.FormVisible())
}

func TestAddClearsSelection(t *testing.T) {
	s := NewState()
	loc := models.Location{ID: "loc-1", Name: "Old bridge", Latitude: 43.85, Longitude: 19.84}
	s = Apply(s, LocationSelected{Location: &loc})
	assert.NotNil(t, s.Selected)

	s = Apply(s, AddLocationStarted{})

	assert.Equal(t, ModePlacing, s.Mode)
	assert.Nil(t, s.Selected)
}

func TestSelectionCentersMap(t *testing.T) {
	s := NewState()
	loc := models.Location{ID: "loc-1", Latitude: 44.1, Longitude: 20.2}

	s = Apply(s, LocationSelected{Location: &loc})

	assert.Equal(t, 44.1, s.Center.Lat)
	assert.Equal(t, 20.2, s.Center.Lng)
	assert.GreaterOrEqual(t, s.Zoom, 15)

	s = Apply(s, LocationSelected{Location: nil})
	assert.Nil(t, s.Selected)
}

func TestFilter(t *testing.T) {
	locations := []models.Location{
		{ID: "loc-1", Name: "Old bridge"},
		{ID: "loc-2", Name: "Viewpoint"},
		{ID: "loc-3", Name: "Spring"},
	}

	t.Run("NilFilterShowsEverything", func(t *testing.T) {
		s := NewState()
		s = Apply(s, LocationsLoaded{Locations: locations})

		assert.False(t, s.FilterActive())
		assert.Len(t, s.VisibleLocations(), 3)
	})

	t.Run("AppliedFilterHidesNonMatches", func(t *testing.T) {
		s := NewState()
		s = Apply(s, LocationsLoaded{Locations: locations})
		s = Apply(s, FilterApplied{IDs: []string{"loc-2"}})

		assert.True(t, s.FilterActive())
		visible := s.VisibleLocations()
		assert.Len(t, visible, 1)
		assert.Equal(t, "loc-2", visible[0].ID)
	})

	t.Run("EmptyFilterHidesEverything", func(t *testing.T) {
		s := NewState()
		s = Apply(s, LocationsLoaded{Locations: locations})
		s = Apply(s, FilterApplied{IDs: nil})

		// An active zero-match filter is not the same as no filter.
		assert.True(t, s.FilterActive())
		assert.Empty(t, s.VisibleLocations())
	})

	t.Run("ClearedFilterShowsEverythingAgain", func(t *testing.T) {
		s := NewState()
		s = Apply(s, LocationsLoaded{Locations: locations})
		s = Apply(s, FilterApplied{IDs: []string{"loc-1"}})
		s = Apply(s, FilterCleared{})

		assert.False(t, s.FilterActive())
		assert.Len(t, s.VisibleLocations(), 3)
	})
}

func TestHover(t *testing.T) {
	s := NewState()
	id := "loc-1"

	s = Apply(s, LocationHovered{ID: &id})
	assert.Equal(t, &id, s.HoveredID)

	s = Apply(s, LocationHovered{ID: nil})
	assert.Nil(t, s.HoveredID)
}
