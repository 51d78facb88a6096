// Package engine is the pointer-gesture state machine that turns raw
// pointer events into committed drawings, and runs the eraser with its
// bounded undo/redo history. It holds no persisted state of its own: every
// durable mutation goes through the store, which owns the page caches.
package engine

import (
	"context"
	"log"
	"math"

	"github.com/planmark/review-backend/internal/review/domain"
	"github.com/planmark/review-backend/internal/review/geometry"
	"github.com/planmark/review-backend/internal/review/store"
)

// Tool selects what pointer gestures mean.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolFreehand  Tool = "freehand"
	ToolRectangle Tool = "rectangle"
	ToolLine      Tool = "line"
	ToolArrow     Tool = "arrow"
	ToolCircle    Tool = "circle"
	ToolEraser    Tool = "eraser"
)

func (t Tool) draws() bool {
	switch t {
	case ToolFreehand, ToolRectangle, ToolLine, ToolArrow, ToolCircle:
		return true
	}
	return false
}

// gesture states
type state int

const (
	stateIdle state = iota
	stateBuilding
)

// Minimum-size gates per tool. They suppress accidental single-click
// "shapes" from noisy pointer input.
const (
	minFreehandPoints = 3
	minRectExtent     = 1.0
	minSegmentLength  = 2.0
	minCircleRadius   = 1.0
)

// historyDepth bounds the eraser undo and redo stacks.
const historyDepth = 3

// Engine serializes gesture state for one page surface: at most one shape
// is building at a time, and a pointer-down while building is ignored
// until the prior gesture resolves.
type Engine struct {
	store  *store.Store
	author store.Author

	versionID string
	page      int
	transform geometry.Transform

	tool        Tool
	color       string
	strokeWidth float64
	threshold   float64

	state  state
	anchor geometry.Point
	draft  domain.ShapeData

	undo []domain.Drawing
	redo []domain.Drawing
}

// New creates an engine drawing onto the given version page through st.
func New(st *store.Store, author store.Author, versionID string, page int, tr geometry.Transform) *Engine {
	return &Engine{
		store:       st,
		author:      author,
		versionID:   versionID,
		page:        page,
		transform:   tr,
		tool:        ToolSelect,
		color:       "#ff0000",
		strokeWidth: 2,
		threshold:   geometry.DefaultHitThreshold,
	}
}

// SetTool switches the active tool. Switching mid-gesture cancels the
// in-progress shape without persisting anything.
func (e *Engine) SetTool(t Tool) {
	if e.state == stateBuilding {
		e.Cancel()
	}
	e.tool = t
}

// Tool returns the active tool.
func (e *Engine) Tool() Tool { return e.tool }

// SetStyle sets color and stroke width for subsequently committed shapes.
func (e *Engine) SetStyle(color string, strokeWidth float64) {
	e.color = color
	e.strokeWidth = strokeWidth
}

// SetPage moves the engine to another page of the same version, cancelling
// any in-progress gesture.
func (e *Engine) SetPage(page int) {
	if e.state == stateBuilding {
		e.Cancel()
	}
	e.page = page
}

// SetTransform updates the pixel↔percent transform when the host rezooms
// or resizes. Stored geometry is unaffected.
func (e *Engine) SetTransform(tr geometry.Transform) { e.transform = tr }

// Building reports whether a shape is currently in progress.
func (e *Engine) Building() bool { return e.state == stateBuilding }

// Preview returns the in-progress shape for overlay rendering, or false
// when idle. The preview is never persisted.
func (e *Engine) Preview() (domain.ShapeData, bool) {
	if e.state != stateBuilding {
		return domain.ShapeData{}, false
	}
	return e.draft, true
}

// PointerDown starts a gesture at the given device-pixel position. With a
// drawing tool it enters the building state; with the eraser it runs a
// hit-test immediately and returns the erased drawing, if any. Pressure is
// the device pressure sample, 0 when unreported.
func (e *Engine) PointerDown(ctx context.Context, px, py, pressure float64) (*domain.Drawing, error) {
	p := e.transform.ToPercent(px, py)

	if e.tool == ToolEraser {
		return e.erase(ctx, p)
	}
	if !e.tool.draws() || e.state == stateBuilding {
		return nil, nil
	}

	e.state = stateBuilding
	e.anchor = p
	switch e.tool {
	case ToolFreehand:
		e.draft = domain.ShapeData{Points: []domain.PathPoint{pathPoint(p, pressure)}}
	case ToolRectangle:
		e.draft = domain.ShapeData{X: p.X, Y: p.Y}
	case ToolLine, ToolArrow:
		e.draft = domain.ShapeData{X1: p.X, Y1: p.Y, X2: p.X, Y2: p.Y}
	case ToolCircle:
		e.draft = domain.ShapeData{CX: p.X, CY: p.Y}
	}
	return nil, nil
}

// PointerMove extends the in-progress shape: freehand appends a sampled
// point, the other tools recompute their bound or endpoint from the anchor.
func (e *Engine) PointerMove(px, py, pressure float64) {
	if e.state != stateBuilding {
		return
	}
	p := e.transform.ToPercent(px, py)
	if !geometry.OnPage(p) {
		// Leaving the drawing surface cancels the gesture; no partial
		// shape is ever persisted.
		e.Cancel()
		return
	}

	switch e.tool {
	case ToolFreehand:
		e.draft.Points = append(e.draft.Points, pathPoint(p, pressure))
	case ToolRectangle:
		e.draft.X = math.Min(e.anchor.X, p.X)
		e.draft.Y = math.Min(e.anchor.Y, p.Y)
		e.draft.W = math.Abs(p.X - e.anchor.X)
		e.draft.H = math.Abs(p.Y - e.anchor.Y)
	case ToolLine, ToolArrow:
		e.draft.X2 = p.X
		e.draft.Y2 = p.Y
	case ToolCircle:
		e.draft.R = geometry.Distance(e.anchor, p)
	}
}

// PointerUp resolves the gesture: if the shape passes its tool's
// minimum-size gate it is committed through the store, otherwise it is
// discarded. Either way the engine returns to idle; on a commit failure the
// error is surfaced and nothing enters the cache.
func (e *Engine) PointerUp(ctx context.Context) (*domain.Drawing, error) {
	if e.state != stateBuilding {
		return nil, nil
	}
	tool := e.tool
	draft := e.draft
	e.state = stateIdle
	e.draft = domain.ShapeData{}

	if !passesGate(tool, draft) {
		return nil, nil
	}
	d, err := e.store.CreateDrawing(ctx, e.versionID, e.page, string(tool), draft, e.color, e.strokeWidth, e.author)
	if err != nil {
		log.Printf("[engine] commit %s failed: %v", tool, err)
		return nil, err
	}
	return d, nil
}

// Cancel discards the in-progress shape, if any.
func (e *Engine) Cancel() {
	e.state = stateIdle
	e.draft = domain.ShapeData{}
}

func pathPoint(p geometry.Point, pressure float64) domain.PathPoint {
	if pressure <= 0 || pressure > 1 {
		pressure = domain.DefaultPressure
	}
	return domain.PathPoint{X: p.X, Y: p.Y, Pressure: pressure}
}

func passesGate(tool Tool, s domain.ShapeData) bool {
	switch tool {
	case ToolFreehand:
		return len(s.Points) >= minFreehandPoints
	case ToolRectangle:
		return s.W > minRectExtent && s.H > minRectExtent
	case ToolLine, ToolArrow:
		return geometry.Distance(geometry.Point{X: s.X1, Y: s.Y1}, geometry.Point{X: s.X2, Y: s.Y2}) > minSegmentLength
	case ToolCircle:
		return s.R > minCircleRadius
	}
	return false
}

// erase scans the page's drawings newest-first so the topmost shape wins on
// overlap, deletes the first hit, records it for undo and clears redo.
func (e *Engine) erase(ctx context.Context, p geometry.Point) (*domain.Drawing, error) {
	drawings, err := e.store.ListDrawings(ctx, e.versionID, e.page)
	if err != nil {
		return nil, err
	}
	for i := len(drawings) - 1; i >= 0; i-- {
		d := drawings[i]
		if !geometry.ClassifyHit(&d, p, e.threshold) {
			continue
		}
		deleted, err := e.store.DeleteDrawing(ctx, d.ID)
		if err != nil {
			// failed delete leaves the stacks untouched
			log.Printf("[engine] erase %s failed: %v", d.ID, err)
			return nil, err
		}
		if deleted == nil {
			// already gone underneath us; nothing to undo
			return nil, nil
		}
		e.pushUndo(*deleted)
		e.redo = e.redo[:0]
		return deleted, nil
	}
	return nil, nil
}

// Undo restores the most recently erased drawing. The restored record gets
// a new identity and becomes the newest item on its page.
func (e *Engine) Undo(ctx context.Context) (*domain.Drawing, error) {
	if len(e.undo) == 0 {
		return nil, nil
	}
	last := e.undo[len(e.undo)-1]
	restored, err := e.store.RestoreDrawing(ctx, &last)
	if err != nil {
		return nil, err
	}
	e.undo = e.undo[:len(e.undo)-1]
	e.pushRedo(*restored)
	return restored, nil
}

// Redo re-erases the drawing restored by the last undo.
func (e *Engine) Redo(ctx context.Context) (*domain.Drawing, error) {
	if len(e.redo) == 0 {
		return nil, nil
	}
	last := e.redo[len(e.redo)-1]
	deleted, err := e.store.DeleteDrawing(ctx, last.ID)
	if err != nil {
		return nil, err
	}
	e.redo = e.redo[:len(e.redo)-1]
	if deleted != nil {
		e.pushUndo(*deleted)
	}
	return deleted, nil
}

// UndoDepth returns how many erases can currently be undone.
func (e *Engine) UndoDepth() int { return len(e.undo) }

// RedoDepth returns how many undos can currently be redone.
func (e *Engine) RedoDepth() int { return len(e.redo) }

func (e *Engine) pushUndo(d domain.Drawing) {
	e.undo = append(e.undo, d)
	if len(e.undo) > historyDepth {
		e.undo = e.undo[1:]
	}
}

func (e *Engine) pushRedo(d domain.Drawing) {
	e.redo = append(e.redo, d)
	if len(e.redo) > historyDepth {
		e.redo = e.redo[1:]
	}
}
