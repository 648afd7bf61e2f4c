// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Lumagrid authors
//
// This file implements the HCL show-file loader: it discovers .hcl files
// under the configured paths and translates set/track/placement blocks into
// the format-agnostic config model the engine consumes.
package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/lumagrid/lumagrid/internal/config"
	"github.com/lumagrid/lumagrid/internal/ctxlog"
)

// DefaultSetID is the set that top-level track blocks are collected into.
const DefaultSetID = "default"

// Loader loads show configuration from HCL files.
type Loader struct{}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// hclShowFile is the top-level structure of one show file.
type hclShowFile struct {
	Sets   []*hclSet   `hcl:"set,block"`
	Tracks []*hclTrack `hcl:"track,block"`
}

type hclSet struct {
	ID     string      `hcl:"id,label"`
	Tracks []*hclTrack `hcl:"track,block"`
}

type hclTrack struct {
	Name       string          `hcl:"name,label"`
	Placements []*hclPlacement `hcl:"placement,block"`
}

type hclPlacement struct {
	ID         string        `hcl:"id,label"`
	Module     string        `hcl:"module"`
	Constructs []*hclCall    `hcl:"construct,block"`
	Channels   []*hclChannel `hcl:"channel,block"`
}

type hclChannel struct {
	Number string     `hcl:"number,label"`
	Calls  []*hclCall `hcl:"call,block"`
}

type hclCall struct {
	Name    string       `hcl:"name,label"`
	Options []*hclOption `hcl:"option,block"`
}

type hclOption struct {
	Name   string    `hcl:"name,label"`
	Value  cty.Value `hcl:"value,optional"`
	Random cty.Value `hcl:"random,optional"`
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := findShowFiles(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to find show files: %w", err)
	}
	if len(files) == 0 {
		logger.Warn("No .hcl show files found, returning empty model.", "paths", paths)
		return &config.Model{}, nil
	}
	logger.Debug("Found show files to load.", "files", files)

	model := &config.Model{}
	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse show file %s: %w", file, diags)
		}

		var parsed hclShowFile
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsed); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode show file %s: %w", file, diags)
		}

		for _, set := range parsed.Sets {
			if err := mergeSet(model, set.ID, set.Tracks); err != nil {
				return nil, fmt.Errorf("in show file %s: %w", file, err)
			}
		}
		if len(parsed.Tracks) > 0 {
			if err := mergeSet(model, DefaultSetID, parsed.Tracks); err != nil {
				return nil, fmt.Errorf("in show file %s: %w", file, err)
			}
		}
	}

	logger.Info("Show configuration loaded.", "sets", len(model.Sets))
	return model, nil
}

// mergeSet appends tracks to the named set, creating it on first use.
func mergeSet(model *config.Model, id string, tracks []*hclTrack) error {
	set := model.Set(id)
	if set == nil {
		set = &config.Set{ID: id}
		model.Sets = append(model.Sets, set)
	}
	for _, raw := range tracks {
		if set.Track(raw.Name) != nil {
			return fmt.Errorf("duplicate track '%s' in set '%s'", raw.Name, id)
		}
		track, err := translateTrack(raw)
		if err != nil {
			return err
		}
		set.Tracks = append(set.Tracks, track)
	}
	return nil
}

func translateTrack(raw *hclTrack) (*config.Track, error) {
	track := &config.Track{
		Name: raw.Name,
		Data: make(map[string]*config.PlacementData, len(raw.Placements)),
	}
	for _, p := range raw.Placements {
		if _, dup := track.Data[p.ID]; dup {
			return nil, fmt.Errorf("duplicate placement '%s' in track '%s'", p.ID, raw.Name)
		}
		track.Placements = append(track.Placements, &config.Placement{
			ID:         p.ID,
			ModuleType: p.Module,
		})

		data := &config.PlacementData{
			ChannelMethods: make(map[string][]*config.MethodCall, len(p.Channels)),
		}
		for _, call := range p.Constructs {
			data.Constructors = append(data.Constructors, translateCall(call))
		}
		for _, ch := range p.Channels {
			for _, call := range ch.Calls {
				data.ChannelMethods[ch.Number] = append(data.ChannelMethods[ch.Number], translateCall(call))
			}
		}
		track.Data[p.ID] = data
	}
	return track, nil
}

func translateCall(raw *hclCall) *config.MethodCall {
	call := &config.MethodCall{Name: raw.Name}
	for _, opt := range raw.Options {
		value := ctyToGo(opt.Value)
		ov := &config.OptionValue{Name: opt.Name, Value: value}
		if !opt.Random.IsNull() && opt.Random.CanIterateElements() {
			var bounds []any
			for it := opt.Random.ElementIterator(); it.Next(); {
				_, v := it.Element()
				bounds = append(bounds, ctyToGo(v))
			}
			if len(bounds) == 2 {
				ov.Random = &config.RandomRange{Min: bounds[0], Max: bounds[1]}
			}
		}
		call.Options = append(call.Options, ov)
	}
	return call
}
