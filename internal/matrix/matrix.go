// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Lumagrid authors
//
// Package matrix implements the grid layout engine: it turns a replication
// spec (rows, cols, excluded cells, border) into the ordered list of live
// instance slots and their stage geometry. Layout is a pure function so the
// replication arithmetic stays independently testable.
package matrix

import (
	"context"
	"fmt"
	"math"

	"github.com/lumagrid/lumagrid/internal/ctxlog"
	"github.com/lumagrid/lumagrid/internal/surface"
)

// Spec is the grid replication specification for one placement.
type Spec struct {
	Rows     int
	Cols     int
	Excluded map[string]struct{}
	Border   bool
}

// Default is the spec used for placements that never declare a matrix call:
// a single full-stage cell.
func Default() Spec {
	return Spec{Rows: 1, Cols: 1}
}

// CellKey is the canonical "row-col" key (1-based) used for exclusions.
func CellKey(row, col int) string {
	return fmt.Sprintf("%d-%d", row, col)
}

// Cells reports how many live slots the spec retains.
func (s Spec) Cells() int {
	n := 0
	for row := 1; row <= s.Rows; row++ {
		for col := 1; col <= s.Cols; col++ {
			if _, skip := s.Excluded[CellKey(row, col)]; !skip {
				n++
			}
		}
	}
	return n
}

// Cell is one retained grid slot with its computed geometry.
type Cell struct {
	Row      int
	Col      int
	Geometry surface.Geometry
}

// Layout computes the retained cells of a spec, rows outer and columns
// inner, skipping excluded keys. zIndex is the owning placement's 1-based
// position in its track and is identical across all cells.
func Layout(spec Spec, zIndex int) []Cell {
	width := 100.0 / float64(spec.Cols)
	height := 100.0 / float64(spec.Rows)

	cells := make([]Cell, 0, spec.Rows*spec.Cols)
	for row := 1; row <= spec.Rows; row++ {
		for col := 1; col <= spec.Cols; col++ {
			if _, skip := spec.Excluded[CellKey(row, col)]; skip {
				continue
			}
			cells = append(cells, Cell{
				Row: row,
				Col: col,
				Geometry: surface.Geometry{
					WidthPct:  width,
					HeightPct: height,
					TopPct:    float64(row-1) * height,
					LeftPct:   float64(col-1) * width,
					ZIndex:    zIndex,
					Border:    spec.Border,
				},
			})
		}
	}
	return cells
}

// FromOptions builds a Spec from a resolved "matrix" option bag. Malformed
// shapes are corrected with a logged warning rather than failing: rows and
// cols below one are clamped to one, non-string exclusion entries are
// dropped.
func FromOptions(ctx context.Context, opts map[string]any) Spec {
	logger := ctxlog.FromContext(ctx)

	spec := Default()
	spec.Rows = clampDimension(ctx, "rows", opts["rows"])
	spec.Cols = clampDimension(ctx, "cols", opts["cols"])
	spec.Border, _ = opts["border"].(bool)

	if raw, ok := opts["excluded"]; ok && raw != nil {
		spec.Excluded = make(map[string]struct{})
		entries, ok := raw.([]any)
		if !ok {
			if strs, sok := raw.([]string); sok {
				for _, s := range strs {
					entries = append(entries, s)
				}
			} else {
				logger.Warn("Matrix exclusion list has unexpected shape, ignoring.", "value", raw)
			}
		}
		for _, entry := range entries {
			key, ok := entry.(string)
			if !ok {
				logger.Warn("Dropping non-string matrix exclusion entry.", "entry", entry)
				continue
			}
			spec.Excluded[key] = struct{}{}
		}
	}
	return spec
}

// clampDimension coerces a rows/cols option to an int >= 1.
func clampDimension(ctx context.Context, name string, raw any) int {
	logger := ctxlog.FromContext(ctx)
	if raw == nil {
		return 1
	}

	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	default:
		logger.Warn("Matrix dimension is not numeric, defaulting to 1.", "option", name, "value", raw)
		return 1
	}

	dim := int(math.Round(v))
	if dim < 1 {
		logger.Warn("Matrix dimension below 1, clamping.", "option", name, "value", v)
		return 1
	}
	return dim
}
