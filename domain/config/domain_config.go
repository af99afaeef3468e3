package config

import "time"

// DomainConfig holds all configurable business rules and constraints
// for the canvas core.
type DomainConfig struct {
	// Canvas constraints
	MaxNodesPerCanvas int
	MaxParentsPerNode int
	DefaultTitle      string

	// Geometry
	ChildPlacementGap float64 // horizontal gap between a parent and an auto-placed child
	PasteOffset       float64 // offset applied to pasted/duplicated nodes

	// Viewport constraints
	MinZoom float64
	MaxZoom float64

	// Gesture tuning
	ConnectorClickThreshold time.Duration // release faster than this with no hover target counts as a click

	// History
	MaxHistoryDepth int

	// Generation
	GenerationStatusTTL   time.Duration // how long terminal statuses stay queryable
	StatusSweepInterval   time.Duration
	MaxConcurrentRequests int

	// Validation settings
	AllowSelfConnections bool
	AllowDuplicateEdges  bool
	AllowCycles          bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxNodesPerCanvas: 10000,
		MaxParentsPerNode: 50,
		DefaultTitle:      "Untitled Workflow",

		ChildPlacementGap: 60,
		PasteOffset:       40,

		MinZoom: 0.1,
		MaxZoom: 2.0,

		ConnectorClickThreshold: 200 * time.Millisecond,

		MaxHistoryDepth: 50,

		GenerationStatusTTL:   5 * time.Minute,
		StatusSweepInterval:   30 * time.Second,
		MaxConcurrentRequests: 0, // unbounded

		AllowSelfConnections: false,
		AllowDuplicateEdges:  false,
		AllowCycles:          false,
	}
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	cfg := DefaultDomainConfig()
	if environment == "development" {
		cfg.MaxNodesPerCanvas = 100000
	}
	return cfg
}
