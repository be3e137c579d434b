// Package voxel holds the brightness buffer shared by the refresh engine and
// the animation code.
//
// Every cell is a single aligned 32-bit word read and written atomically, so
// the refresh goroutine never needs a lock. A frame may show a mix of old and
// new cells while an animation is halfway through a Fill; that tearing lasts
// one tick and is accepted.
package voxel

import (
	"fmt"
	"sync/atomic"
)

const (
	Layers  = 4
	Columns = 16
	Cells   = Layers * Columns

	// MaxBrightness lights a voxel on every sub-step of its layer.
	MaxBrightness = 16
)

// Grid is the 4x16 brightness buffer. The zero value is an all-dark cube.
type Grid struct {
	cells [Layers][Columns]atomic.Uint32
}

func New() *Grid { return &Grid{} }

// Set writes one cell. Brightness above MaxBrightness is stored as
// MaxBrightness, which the refresh engine displays identically.
func (g *Grid) Set(layer, column, brightness int) {
	checkCell(layer, column)
	g.cells[layer][column].Store(level(brightness))
}

// Get returns the brightness of one cell.
func (g *Grid) Get(layer, column int) uint8 {
	checkCell(layer, column)
	return uint8(g.cells[layer][column].Load())
}

// On lights a cell at full brightness.
func (g *Grid) On(layer, column int) { g.Set(layer, column, MaxBrightness) }

// Off darkens a cell.
func (g *Grid) Off(layer, column int) { g.Set(layer, column, 0) }

// Fill writes brightness to all 64 cells.
func (g *Grid) Fill(brightness int) {
	v := level(brightness)
	for l := range g.cells {
		for c := range g.cells[l] {
			g.cells[l][c].Store(v)
		}
	}
}

// FillLayer writes brightness to the 16 cells of one layer.
func (g *Grid) FillLayer(layer, brightness int) {
	checkLayer(layer)
	v := level(brightness)
	for c := range g.cells[layer] {
		g.cells[layer][c].Store(v)
	}
}

// Snapshot copies the grid cell by cell. It is not a consistent point in
// time if a writer is active.
func (g *Grid) Snapshot() [Layers][Columns]uint8 {
	var out [Layers][Columns]uint8
	for l := range g.cells {
		for c := range g.cells[l] {
			out[l][c] = uint8(g.cells[l][c].Load())
		}
	}
	return out
}

func level(brightness int) uint32 {
	if brightness < 0 {
		panic(fmt.Sprintf("voxel: negative brightness %d", brightness))
	}
	if brightness > MaxBrightness {
		return MaxBrightness
	}
	return uint32(brightness)
}

func checkLayer(layer int) {
	if layer < 0 || layer >= Layers {
		panic(fmt.Sprintf("voxel: layer %d out of range [0,%d)", layer, Layers))
	}
}

func checkCell(layer, column int) {
	checkLayer(layer)
	if column < 0 || column >= Columns {
		panic(fmt.Sprintf("voxel: column %d out of range [0,%d)", column, Columns))
	}
}
