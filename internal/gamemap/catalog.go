package gamemap

// HidingSpot is a rectangle a hider can occupy. X/Y is the top-left corner.
// IsOccupied/OccupiedBy are per-room state: every room gets its own copy of
// the map, never a shared pointer into the catalog.
type HidingSpot struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	IsOccupied bool    `json:"isOccupied"`
	OccupiedBy string  `json:"occupiedBy,omitempty"`
}

type Map struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	HidingSpots []HidingSpot `json:"hidingSpots"`
}

// Clone returns a deep copy safe to hand to a room.
func (m Map) Clone() Map {
	spots := make([]HidingSpot, len(m.HidingSpots))
	copy(spots, m.HidingSpots)
	m.HidingSpots = spots
	return m
}

// Catalog is the static map lookup. Definitions are loaded once and never
// mutated; ByID always returns a fresh copy.
type Catalog struct {
	maps []Map
}

func NewCatalog() *Catalog {
	return &Catalog{maps: builtinMaps}
}

func (c *Catalog) ByID(id string) (Map, bool) {
	for _, m := range c.maps {
		if m.ID == id {
			return m.Clone(), true
		}
	}
	return Map{}, false
}

func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.maps))
	for _, m := range c.maps {
		ids = append(ids, m.ID)
	}
	return ids
}

var builtinMaps = []Map{
	{
		ID:   "chattatamer",
		Name: "Chatta-Tamer",
		HidingSpots: []HidingSpot{
			{ID: "1", Name: "Hiding Spot 1", X: 100, Y: 100, Width: 100, Height: 100},
			{ID: "2", Name: "Hiding Spot 2", X: 300, Y: 150, Width: 100, Height: 100},
			{ID: "3", Name: "Hiding Spot 3", X: 500, Y: 200, Width: 100, Height: 100},
		},
	},
	{
		ID:   "clown-city",
		Name: "Clown City",
		HidingSpots: []HidingSpot{
			{ID: "1", Name: "Hiding Spot 1", X: 150, Y: 120, Width: 100, Height: 100},
			{ID: "2", Name: "Hiding Spot 2", X: 350, Y: 180, Width: 100, Height: 100},
			{ID: "3", Name: "Hiding Spot 3", X: 450, Y: 250, Width: 100, Height: 100},
		},
	},
	{
		ID:   "pleasant-park",
		Name: "Pleasant Park",
		HidingSpots: []HidingSpot{
			{ID: "1", Name: "Hiding Spot 1", X: 200, Y: 100, Width: 100, Height: 100},
			{ID: "2", Name: "Hiding Spot 2", X: 400, Y: 200, Width: 100, Height: 100},
			{ID: "3", Name: "Hiding Spot 3", X: 600, Y: 300, Width: 100, Height: 100},
		},
	},
}
