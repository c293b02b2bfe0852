// Package materialdb manages workpiece material records and applies their
// recommended cutting data to operation parameters the caller left unset.
package materialdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chickenmcniggels/intuicam/internal/toolpath"
)

// Material is one workpiece material record.
type Material struct {
	ID                      string  `json:"id"`
	Name                    string  `json:"name"`
	RecommendedSurfaceSpeed float64 `json:"recommended_surface_speed"` // m/min
	RecommendedFeedRate     float64 `json:"recommended_feed_rate"`     // mm/rev
	MaxDepthOfCut           float64 `json:"max_depth_of_cut"`          // mm
	MachinabilityRating     float64 `json:"machinability_rating"`      // 1.0 = free machining
}

// Built-in materials with conservative cutting data.
var BuiltinMaterials = []Material{
	{
		ID:                      "aluminum-6061",
		Name:                    "Aluminum 6061",
		RecommendedSurfaceSpeed: 300.0,
		RecommendedFeedRate:     0.15,
		MaxDepthOfCut:           3.0,
		MachinabilityRating:     0.9,
	},
	{
		ID:                      "steel-1045",
		Name:                    "Steel 1045",
		RecommendedSurfaceSpeed: 180.0,
		RecommendedFeedRate:     0.10,
		MaxDepthOfCut:           2.0,
		MachinabilityRating:     0.55,
	},
	{
		ID:                      "stainless-304",
		Name:                    "Stainless 304",
		RecommendedSurfaceSpeed: 120.0,
		RecommendedFeedRate:     0.08,
		MaxDepthOfCut:           1.5,
		MachinabilityRating:     0.45,
	},
	{
		ID:                      "brass-360",
		Name:                    "Brass 360",
		RecommendedSurfaceSpeed: 350.0,
		RecommendedFeedRate:     0.18,
		MaxDepthOfCut:           3.5,
		MachinabilityRating:     1.0,
	},
	{
		ID:                      "delrin",
		Name:                    "Delrin (POM)",
		RecommendedSurfaceSpeed: 400.0,
		RecommendedFeedRate:     0.20,
		MaxDepthOfCut:           4.0,
		MachinabilityRating:     1.0,
	},
}

// Database is an in-memory material library seeded with the built-ins.
type Database struct {
	Materials []Material `json:"materials"`
}

// NewDatabase returns a library containing the built-in materials.
func NewDatabase() *Database {
	db := &Database{Materials: make([]Material, len(BuiltinMaterials))}
	copy(db.Materials, BuiltinMaterials)
	return db
}

// Get returns the material with the given ID.
func (db *Database) Get(id string) (Material, error) {
	for _, m := range db.Materials {
		if m.ID == id {
			return m, nil
		}
	}
	return Material{}, fmt.Errorf("material %q not found", id)
}

// Add appends a custom material to the library.
func (db *Database) Add(m Material) {
	db.Materials = append(db.Materials, m)
}

// Snapshot returns a copy of the material list for a pipeline run.
func (db *Database) Snapshot() []Material {
	out := make([]Material, len(db.Materials))
	copy(out, db.Materials)
	return out
}

// AdaptRoughing fills zero-valued roughing parameters from the material's
// recommended cutting data. Set values are never overridden.
func (m Material) AdaptRoughing(p *toolpath.RoughingParams) {
	if p.FeedRate <= 0 {
		p.FeedRate = m.RecommendedFeedRate * 1000 // mm/rev -> mm/min at ~1000 RPM
	}
	if p.DepthOfCut <= 0 {
		p.DepthOfCut = m.MaxDepthOfCut
	}
	if p.DepthOfCut > m.MaxDepthOfCut && m.MaxDepthOfCut > 0 {
		p.DepthOfCut = m.MaxDepthOfCut
	}
}

// AdaptFinishing fills zero-valued finishing parameters from the
// material's recommended cutting data.
func (m Material) AdaptFinishing(p *toolpath.FinishingParams) {
	if p.SurfaceSpeed <= 0 {
		p.SurfaceSpeed = m.RecommendedSurfaceSpeed
	}
	if p.FeedRate <= 0 {
		p.FeedRate = m.RecommendedFeedRate
	}
}

// AdaptFacing fills zero-valued facing parameters from the material's
// recommended cutting data.
func (m Material) AdaptFacing(p *toolpath.FacingParams) {
	if p.DepthOfCut <= 0 {
		p.DepthOfCut = m.MaxDepthOfCut / 4
	}
	if p.FeedRate <= 0 {
		p.FeedRate = m.RecommendedFeedRate * 1000
	}
}

// DefaultPath returns the default material library file location.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "intuicam", "materials.json"), nil
}

// Save writes the library to a JSON file, creating directories as needed.
func Save(path string, db *Database) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a library from a JSON file. A missing file yields the
// built-in library rather than an error.
func Load(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDatabase(), nil
		}
		return nil, err
	}
	var db Database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, err
	}
	return &db, nil
}
