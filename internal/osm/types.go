// Package osm holds turn restriction records extracted from OpenStreetMap
// imports and the YAML file format used to ship them without a database.
package osm

// RestrictionRecord is one turn restriction as extracted from an OSM import,
// with its ways already resolved to routing graph edges.
type RestrictionRecord struct {
	RelationID  int64    `yaml:"relation" validate:"required"`
	Restriction string   `yaml:"restriction" validate:"required,startswith=no_|startswith=only_"` // e.g. no_left_turn
	FromEdge    int64    `yaml:"from" validate:"gte=0"`
	ToEdge      int64    `yaml:"to" validate:"gte=0"`
	Modes       string   `yaml:"modes"`  // ';' separated; empty means car and bicycle
	Except      string   `yaml:"except"` // modes exempt from the restriction
	TimeDomains []string `yaml:"time_domains" validate:"dive,required"`
	// ZoneOffsetMinutes overrides the loader-wide offset when set.
	ZoneOffsetMinutes *int `yaml:"zone_offset_minutes" validate:"omitempty,gte=-1080,lte=1080"`
}
