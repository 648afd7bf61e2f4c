// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Lumagrid authors
//
// This file defines the format-agnostic model of a performance
// configuration: sets of tracks, placements within a track, and the method
// calls bound to constructors and trigger channels. The model is read-only
// to the engine for the lifetime of a session; only the loader (and the
// out-of-scope editor) ever produces it.
package config

// Model is the unified representation of everything loaded from show files.
type Model struct {
	Sets []*Set
}

// Set returns the set with the given id, or nil.
func (m *Model) Set(id string) *Set {
	for _, s := range m.Sets {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Set is a named, ordered collection of tracks.
type Set struct {
	ID     string
	Tracks []*Track
}

// Track returns the track with the given name, or nil.
func (s *Set) Track(name string) *Track {
	for _, t := range s.Tracks {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Track is one performable scene: an ordered list of placements plus the
// per-placement method data. Placement order determines z-order on screen.
type Track struct {
	Name       string
	Placements []*Placement
	Data       map[string]*PlacementData
}

// Placement declares one use of a module type within a track. A single
// placement may expand into many live instances through grid replication.
type Placement struct {
	ID         string
	ModuleType string
}

// PlacementData carries the method calls configured for one placement.
type PlacementData struct {
	// Constructors run once when the placement is materialized.
	Constructors []*MethodCall
	// ChannelMethods maps a trigger channel (decimal numeric string) to the
	// calls dispatched when that channel fires.
	ChannelMethods map[string][]*MethodCall
}

// MethodCall is one named invocation with its declared option values.
type MethodCall struct {
	Name    string
	Options []*OptionValue
}

// OptionValue is a declared option: a static value, optionally overridden
// per dispatch by sampling Random.
type OptionValue struct {
	Name  string
	Value any
	// Random, when present, is resolved fresh on every invocation; Value is
	// the fallback if the range is malformed.
	Random *RandomRange
}

// RandomRange holds the declared bounds of a randomized option. Bounds are
// kept as `any` because they may arrive from untyped control messages; the
// resolver validates them at dispatch time.
type RandomRange struct {
	Min any
	Max any
}
