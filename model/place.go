package model

import "time"

// Place represents a known location in the knowledge base.
// IDs are assigned by the operator and never generated.
type Place struct {
	ID        int64     `json:"id"`
	ZoneID    int       `json:"zone_id"`
	ZoneName  string    `json:"zone_name,omitempty"` // joined on read
	Name      string    `json:"name"`
	Summary   string    `json:"summary"`
	Embedding []float32 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Results
	Similarity float64 `json:"similarity,omitempty"`
}

// Catalog is a snapshot of all zones and places known at one point in time.
// It is reloaded before every chunk so new places are visible immediately.
type Catalog struct {
	Zones  []Zone  `json:"zones"`
	Places []Place `json:"places"`
}

// PlaceByID returns the place with the given id.
func (c *Catalog) PlaceByID(id int64) (*Place, bool) {
	for i := range c.Places {
		if c.Places[i].ID == id {
			return &c.Places[i], true
		}
	}
	return nil, false
}

// ZoneByName returns the zone with the given name (case sensitive).
func (c *Catalog) ZoneByName(name string) (*Zone, bool) {
	for i := range c.Zones {
		if c.Zones[i].Name == name {
			return &c.Zones[i], true
		}
	}
	return nil, false
}

// PlacesInZone returns all places assigned to the given zone in catalog order.
func (c *Catalog) PlacesInZone(zoneID int) []Place {
	var places []Place
	for _, p := range c.Places {
		if p.ZoneID == zoneID {
			places = append(places, p)
		}
	}
	return places
}
