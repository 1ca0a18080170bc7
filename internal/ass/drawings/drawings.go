/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package drawings parses the drawing-command strings carried by drawing
// spans and vector clips. Parsing is tolerant in the same spirit as the
// override-tag engine: unknown letters and incomplete coordinate groups are
// dropped rather than failing the whole string.
package drawings

import (
	"strconv"
	"strings"

	"gosubstudio/internal/ass"
)

// Op identifies one drawing command.
type Op uint8

const (
	// MoveTo closes the open shape and starts a new one (`m`).
	MoveTo Op = iota
	// MoveToNoClose starts a new shape without closing the previous (`n`).
	MoveToNoClose
	// LineTo extends the shape with a straight segment (`l`).
	LineTo
	// CubicTo extends the shape with a cubic bezier (`b`, two control
	// points and an endpoint).
	CubicTo
	// SplineTo starts a cubic b-spline through at least three points (`s`).
	SplineTo
	// ExtendSpline appends points to the open b-spline (`p`).
	ExtendSpline
	// CloseSpline closes the open b-spline (`c`).
	CloseSpline
)

// Command is one drawing command with its points. MoveTo, MoveToNoClose and
// LineTo carry one point, CubicTo three, SplineTo at least three,
// ExtendSpline at least one and CloseSpline none.
type Command struct {
	Op     Op
	Points []ass.Position
}

// Path is a parsed drawing.
type Path struct {
	Commands []Command
}

// Rect is the axis-aligned bounding box of a path.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// arity returns the points consumed per repetition of the op, or 0 for ops
// that consume every following point.
func arity(op Op) int {
	switch op {
	case MoveTo, MoveToNoClose, LineTo:
		return 1
	case CubicTo:
		return 3
	default:
		return 0
	}
}

func opLetter(op Op) byte {
	switch op {
	case MoveTo:
		return 'm'
	case MoveToNoClose:
		return 'n'
	case LineTo:
		return 'l'
	case CubicTo:
		return 'b'
	case SplineTo:
		return 's'
	case ExtendSpline:
		return 'p'
	default:
		return 'c'
	}
}

// Parse reads a drawing-command string. Coordinates left over when the
// string or the next command letter arrives early are discarded, as are
// letters outside the command alphabet.
func Parse(commands string) Path {
	var path Path
	var op Op
	haveOp := false
	var points []ass.Position
	var pending []float64

	flush := func() {
		if !haveOp {
			points, pending = nil, pending[:0]
			return
		}
		for len(pending) >= 2 {
			points = append(points, ass.Position{X: pending[0], Y: pending[1]})
			pending = pending[2:]
		}
		switch {
		case op == CloseSpline:
			path.Commands = append(path.Commands, Command{Op: CloseSpline})
		case arity(op) > 0:
			for len(points) >= arity(op) {
				path.Commands = append(path.Commands, Command{Op: op, Points: points[:arity(op)]})
				points = points[arity(op):]
			}
		case op == SplineTo && len(points) >= 3, op == ExtendSpline && len(points) >= 1:
			path.Commands = append(path.Commands, Command{Op: op, Points: points})
		}
		points, pending = nil, pending[:0]
	}

	for _, tok := range strings.Fields(commands) {
		next, ok := opFromToken(tok)
		if ok {
			flush()
			op, haveOp = next, true
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}
		pending = append(pending, v)
	}
	flush()
	return path
}

func opFromToken(tok string) (Op, bool) {
	if len(tok) != 1 {
		return 0, false
	}
	switch tok[0] {
	case 'm':
		return MoveTo, true
	case 'n':
		return MoveToNoClose, true
	case 'l':
		return LineTo, true
	case 'b':
		return CubicTo, true
	case 's':
		return SplineTo, true
	case 'p':
		return ExtendSpline, true
	case 'c':
		return CloseSpline, true
	default:
		return 0, false
	}
}

// IsEmpty reports whether the path holds no commands.
func (p Path) IsEmpty() bool { return len(p.Commands) == 0 }

// Bounds approximates the bounding box by ranging over every point,
// including bezier and spline control points. That over-covers curved
// segments slightly, which is fine for layout and inspection.
func (p Path) Bounds() (Rect, bool) {
	var r Rect
	found := false
	for _, c := range p.Commands {
		for _, pt := range c.Points {
			if !found {
				r = Rect{MinX: pt.X, MinY: pt.Y, MaxX: pt.X, MaxY: pt.Y}
				found = true
				continue
			}
			if pt.X < r.MinX {
				r.MinX = pt.X
			}
			if pt.Y < r.MinY {
				r.MinY = pt.Y
			}
			if pt.X > r.MaxX {
				r.MaxX = pt.X
			}
			if pt.Y > r.MaxY {
				r.MaxY = pt.Y
			}
		}
	}
	return r, found
}

// AtScale maps drawing coordinates to script pixels for a drawing declared
// at the given scale: each level above one halves the coordinates.
func (p Path) AtScale(scale int32) Path {
	if scale <= 1 {
		return p
	}
	div := float64(int64(1) << (scale - 1))
	out := Path{Commands: make([]Command, len(p.Commands))}
	for i, c := range p.Commands {
		nc := Command{Op: c.Op, Points: make([]ass.Position, len(c.Points))}
		for j, pt := range c.Points {
			nc.Points[j] = ass.Position{X: pt.X / div, Y: pt.Y / div}
		}
		out.Commands[i] = nc
	}
	return out
}

// String renders the canonical form: lowercase letters, single spaces, and
// consecutive m/n/l/b groups sharing one letter.
func (p Path) String() string {
	var tokens []string
	var prev Op
	for i, c := range p.Commands {
		if i == 0 || prev != c.Op || arity(c.Op) == 0 {
			tokens = append(tokens, string(opLetter(c.Op)))
		}
		for _, pt := range c.Points {
			tokens = append(tokens, formatCoord(pt.X), formatCoord(pt.Y))
		}
		prev = c.Op
	}
	return strings.Join(tokens, " ")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
