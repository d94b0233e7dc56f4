// Package session models one interactive map session: the viewport, the
// mirrored location set, selection and hover, the search filter, and the
// add/edit placement flow. Every transition is a pure function of the
// previous state and an event.
package session

import (
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
)

// Defaults center the map on Uzice, Serbia.
const (
	DefaultLatitude  = 43.8587
	DefaultLongitude = 19.8456
	DefaultZoom      = 13
)

// Mode is the placement/edit micro-flow state.
type Mode int

const (
	// ModeIdle means no placement or edit flow is running.
	ModeIdle Mode = iota
	// ModePlacing means "add location" was requested and a map click is
	// awaited.
	ModePlacing
	// ModePendingPlacement means coordinates were chosen; the draggable
	// marker is shown and the form is open in create mode.
	ModePendingPlacement
	// ModeEditing means an existing location is selected for edit and the
	// form is open pre-filled.
	ModeEditing
)

// State is the full serializable session state.
type State struct {
	Center    models.Coordinates
	Zoom      int
	Locations []models.Location
	Selected  *models.Location
	HoveredID *string
	// Filter is the search filter set: nil means no filter is active, an
	// empty non-nil map means the filter matched nothing.
	Filter        map[string]bool
	Mode          Mode
	PendingCoords *models.Coordinates
}

// NewState returns the initial session state.
func NewState() State {
	return State{
		Center: models.Coordinates{Lat: DefaultLatitude, Lng: DefaultLongitude},
		Zoom:   DefaultZoom,
	}
}

// FilterActive reports whether a search filter is applied. A zero-match
// filter is still active; only a nil filter means "show everything".
func (s State) FilterActive() bool {
	return s.Filter != nil
}

// FormVisible reports whether the location form should be shown. It derives
// from the flow mode alone, never from a render-time side effect.
func (s State) FormVisible() bool {
	return s.Mode == ModePendingPlacement || s.Mode == ModeEditing
}

// VisibleLocations applies the filter set to the location mirror.
func (s State) VisibleLocations() []models.Location {
	if s.Filter == nil {
		return s.Locations
	}
	visible := make([]models.Location, 0, len(s.Filter))
	for _, l := range s.Locations {
		if s.Filter[l.ID] {
			visible = append(visible, l)
		}
	}
	return visible
}

// Event is a session state transition trigger.
type Event interface {
	isEvent()
}

// LocationsLoaded replaces the mirrored location set.
type LocationsLoaded struct {
	Locations []models.Location
}

// LocationSelected sets (or clears, with nil) the selected location.
type LocationSelected struct {
	Location *models.Location
}

// LocationHovered sets (or clears, with nil) the hovered location id.
type LocationHovered struct {
	ID *string
}

// FilterApplied activates the search filter with the matched ids. An empty
// slice filters everything out.
type FilterApplied struct {
	IDs []string
}

// FilterCleared removes the filter entirely.
type FilterCleared struct{}

// ViewportMoved re-centers the map.
type ViewportMoved struct {
	Center models.Coordinates
	Zoom   int
}

// AddLocationStarted begins the placement flow.
type AddLocationStarted struct{}

// MapClicked carries the clicked coordinates while placing.
type MapClicked struct {
	Coords models.Coordinates
}

// MarkerDragged moves the pending placement marker.
type MarkerDragged struct {
	Coords models.Coordinates
}

// EditStarted opens the form pre-filled for an existing location. Whether
// the actor may actually edit is the caller's concern.
type EditStarted struct {
	Location models.Location
}

// FlowCancelled aborts the running placement or edit flow.
type FlowCancelled struct{}

// SubmitSucceeded ends the running flow after a successful form submit.
type SubmitSucceeded struct{}

func (LocationsLoaded) isEvent()    {}
func (LocationSelected) isEvent()   {}
func (LocationHovered) isEvent()    {}
func (FilterApplied) isEvent()      {}
func (FilterCleared) isEvent()      {}
func (ViewportMoved) isEvent()      {}
func (AddLocationStarted) isEvent() {}
func (MapClicked) isEvent()         {}
func (MarkerDragged) isEvent()      {}
func (EditStarted) isEvent()        {}
func (FlowCancelled) isEvent()      {}
func (SubmitSucceeded) isEvent()    {}

// Apply computes the next state. At most one of pending coordinates and
// edit selection is ever set: entering one flow clears the other's driving
// state so the form never opens with mismatched initial data.
func Apply(s State, e Event) State {
	switch ev := e.(type) {
	case LocationsLoaded:
		s.Locations = ev.Locations

	case LocationSelected:
		s.Selected = ev.Location
		if ev.Location != nil {
			s.Center = models.Coordinates{Lat: ev.Location.Latitude, Lng: ev.Location.Longitude}
			if s.Zoom < 15 {
				s.Zoom = 15
			}
		}

	case LocationHovered:
		s.HoveredID = ev.ID

	case FilterApplied:
		filter := make(map[string]bool, len(ev.IDs))
		for _, id := range ev.IDs {
			filter[id] = true
		}
		s.Filter = filter

	case FilterCleared:
		s.Filter = nil

	case ViewportMoved:
		s.Center = ev.Center
		s.Zoom = ev.Zoom

	case AddLocationStarted:
		s.Mode = ModePlacing
		s.Selected = nil
		s.PendingCoords = nil

	case MapClicked:
		if s.Mode != ModePlacing {
			break
		}
		coords := ev.Coords
		s.PendingCoords = &coords
		s.Mode = ModePendingPlacement

	case MarkerDragged:
		if s.Mode != ModePendingPlacement {
			break
		}
		coords := ev.Coords
		s.PendingCoords = &coords

	case EditStarted:
		loc := ev.Location
		s.Mode = ModeEditing
		s.Selected = &loc
		s.PendingCoords = nil

	case FlowCancelled, SubmitSucceeded:
		s.Mode = ModeIdle
		s.Selected = nil
		s.PendingCoords = nil
	}

	return s
}
