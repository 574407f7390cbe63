package domain

import "time"

// RunSummary describes a finished generation run. It is also the body of the
// manifest written next to the output.
type RunSummary struct {
	RunID      string    `json:"run_id" yaml:"runId"`
	RunKey     string    `json:"run_key" yaml:"runKey"`
	Generator  string    `json:"generator" yaml:"generator"`
	Reader     string    `json:"reader" yaml:"reader"`
	Writer     string    `json:"writer" yaml:"writer"`
	OutputPath string    `json:"output_path" yaml:"outputPath"`
	Times      TimeRange `json:"times" yaml:"times"`
	Steps      int       `json:"steps" yaml:"steps"`
	Skipped    int       `json:"skipped" yaml:"skipped"`
	Points     int       `json:"points" yaml:"points"`
	RowsInside int       `json:"rows_inside" yaml:"rowsInsideBoundaryLayer"`
	Gamma      float64   `json:"gamma" yaml:"gamma"`
	StartedAt  time.Time `json:"started_at" yaml:"startedAt"`
	FinishedAt time.Time `json:"finished_at" yaml:"finishedAt"`
}

// ConvertSummary describes a finished database conversion.
type ConvertSummary struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Samples int    `json:"samples"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

// StructuredOptions adjusts how raw face centres and the velocity sampled on
// them are arranged into a grid. Nil pointers leave the grid untouched.
type StructuredOptions struct {
	// AddValBot prepends a row of points at this y, e.g. the wall.
	AddValBot *float64 `json:"addValBot" yaml:"addValBot"`
	// AddValTop appends a row of points at this y.
	AddValTop *float64 `json:"addValTop" yaml:"addValTop"`
	// ExcludeBot drops this many rows from the bottom.
	ExcludeBot int `json:"excludeBot" yaml:"excludeBot"`
	// ExcludeTop drops this many rows from the top.
	ExcludeTop int `json:"excludeTop" yaml:"excludeTop"`
	// ExchangeValBot overwrites the y of the first remaining row.
	ExchangeValBot *float64 `json:"exchangeValBot" yaml:"exchangeValBot"`
	// ExchangeValTop overwrites the y of the last remaining row.
	ExchangeValTop *float64 `json:"exchangeValTop" yaml:"exchangeValTop"`

	// VelocityBot is the velocity of the row added by AddValBot. Zero when unset.
	VelocityBot *Vector `json:"velocityBot" yaml:"velocityBot"`
	// VelocityTop is the velocity of the row added by AddValTop. Zero when unset.
	VelocityTop *Vector `json:"velocityTop" yaml:"velocityTop"`
	// InterpValBot replaces the new bottom row by the mean of it and the
	// excluded row below. Only applies with ExcludeBot > 0.
	InterpValBot bool `json:"interpValBot" yaml:"interpValBot"`
	// InterpValTop replaces the new top row by the mean of it and the
	// excluded row above. Only applies with ExcludeTop > 0.
	InterpValTop bool `json:"interpValTop" yaml:"interpValTop"`
}
