// Package textlayer keeps the ordered set of text labels placed on the
// canvas, their selection state and the pending text-entry buffer.
package textlayer

import (
	"image/color"
	"math"
	"strings"

	"inkframe/pkg/graphics"
)

// Defaults for new text.
const (
	DefaultFontSize = 24
	// SelectionPadding is the margin around a label's measured box that
	// still counts as a hit and is outlined when selected.
	SelectionPadding = 4
)

// DefaultColor is the initial text color.
var DefaultColor = color.NRGBA{0, 0, 0, 255}

// ID identifies an element for the lifetime of its store.
type ID uint64

// Element is one text label.
type Element struct {
	ID   ID
	Text string
	// Position is the label center in container space, before the canvas
	// scale and pan.
	Position graphics.Point
	// Rotation is the label's own rotation in degrees, added to the canvas
	// rotation when drawn.
	Rotation float64
	// Scale is the label's own scale, independent of the canvas scale.
	Scale    float64
	Color    color.NRGBA
	FontSize float64
	// Size is the last measured unscaled box. It is derived from Text and
	// FontSize and refreshed by the renderer.
	Size       graphics.Size
	IsSelected bool
	IsEditing  bool
}

// Entry is the pending text-entry buffer.
type Entry struct {
	Text string
	// Adding is true while the entry field is open.
	Adding bool
	// EditingID is the element being edited, or zero for a new label.
	EditingID ID
	Color     color.NRGBA
	FontSize  float64
}

// Store is the ordered collection of text elements. Order is render order:
// later elements draw on top. At most one element is selected.
type Store struct {
	elements []Element
	nextID   ID
	entry    Entry

	// editing holds an element detached by BeginEdit until it is committed
	// or cancelled; editIndex is where it goes back.
	editing   *Element
	editIndex int
}

// NewStore returns an empty store with the default entry color and size.
func NewStore() *Store {
	return &Store{
		entry: Entry{Color: DefaultColor, FontSize: DefaultFontSize},
	}
}

func (s *Store) index(id ID) int {
	for i := range s.elements {
		if s.elements[i].ID == id {
			return i
		}
	}
	return -1
}

// Add appends a new element centered in the container and clears the entry
// buffer. An edit in progress is cancelled first. Blank text adds nothing.
func (s *Store) Add(text string, col color.NRGBA, fontSize float64, container graphics.Size) (ID, bool) {
	if s.editing != nil {
		s.CancelEdit()
	}
	s.clearEntryText()
	if strings.TrimSpace(text) == "" {
		return 0, false
	}
	if !(fontSize > 0) {
		fontSize = DefaultFontSize
	}

	s.nextID++
	s.elements = append(s.elements, Element{
		ID:       s.nextID,
		Text:     text,
		Position: container.Center(),
		Scale:    1,
		Color:    col,
		FontSize: fontSize,
	})
	return s.nextID, true
}

// UpdatePosition moves an element. Unknown ids are ignored.
func (s *Store) UpdatePosition(id ID, p graphics.Point) {
	if i := s.index(id); i >= 0 {
		s.elements[i].Position = p
	}
}

// UpdateScale sets an element's own scale. Unknown ids and non-positive
// scales are ignored.
func (s *Store) UpdateScale(id ID, scale float64) {
	if !(scale > 0) {
		return
	}
	if i := s.index(id); i >= 0 {
		s.elements[i].Scale = scale
	}
}

// UpdateRotation sets an element's own rotation in degrees.
func (s *Store) UpdateRotation(id ID, degrees float64) {
	if i := s.index(id); i >= 0 {
		s.elements[i].Rotation = degrees
	}
}

// UpdateMeasuredSize records the rendered size of an element.
func (s *Store) UpdateMeasuredSize(id ID, size graphics.Size) {
	if i := s.index(id); i >= 0 {
		s.elements[i].Size = size
	}
}

// Select marks id as the only selected element. An unknown id leaves
// nothing selected.
func (s *Store) Select(id ID) {
	for i := range s.elements {
		s.elements[i].IsSelected = s.elements[i].ID == id
	}
}

// DeselectAll clears the selection.
func (s *Store) DeselectAll() {
	for i := range s.elements {
		s.elements[i].IsSelected = false
	}
}

// BeginEdit detaches an element for editing and seeds the entry buffer with
// its text, color and size. The element is kept aside, not discarded, so
// CancelEdit can put it back. An edit already in progress is cancelled
// first.
func (s *Store) BeginEdit(id ID) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	if s.editing != nil {
		s.CancelEdit()
		i = s.index(id)
	}

	e := s.elements[i]
	e.IsEditing = true
	e.IsSelected = false
	s.editing = &e
	s.editIndex = i
	s.elements = append(s.elements[:i], s.elements[i+1:]...)

	s.entry = Entry{
		Text:      e.Text,
		Adding:    true,
		EditingID: e.ID,
		Color:     e.Color,
		FontSize:  e.FontSize,
	}
	return true
}

// Editing returns the element detached by BeginEdit.
func (s *Store) Editing() (Element, bool) {
	if s.editing == nil {
		return Element{}, false
	}
	return *s.editing, true
}

// IsEditing reports whether an edit is in progress.
func (s *Store) IsEditing() bool {
	return s.editing != nil
}

// CommitEdit puts the edited element back in its original slot with the new
// text and the entry buffer's color and font size. Committing blank text
// deletes the element. It reports the element id and whether the element
// survived.
func (s *Store) CommitEdit(text string) (ID, bool) {
	if s.editing == nil {
		return 0, false
	}
	e := *s.editing
	s.editing = nil
	col, size := s.entry.Color, s.entry.FontSize
	s.clearEntryText()

	if strings.TrimSpace(text) == "" {
		return e.ID, false
	}
	if e.Text != text || e.FontSize != size {
		e.Size = graphics.Size{}
	}
	e.Text = text
	e.Color = col
	if size > 0 {
		e.FontSize = size
	}
	e.IsEditing = false
	s.insert(s.editIndex, e)
	return e.ID, true
}

// CancelEdit restores the element detached by BeginEdit unchanged.
func (s *Store) CancelEdit() bool {
	if s.editing == nil {
		return false
	}
	e := *s.editing
	s.editing = nil
	e.IsEditing = false
	s.insert(s.editIndex, e)
	s.clearEntryText()
	return true
}

func (s *Store) insert(i int, e Element) {
	if i < 0 || i > len(s.elements) {
		i = len(s.elements)
	}
	s.elements = append(s.elements, Element{})
	copy(s.elements[i+1:], s.elements[i:])
	s.elements[i] = e
}

// Remove deletes an element.
func (s *Store) Remove(id ID) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.elements = append(s.elements[:i], s.elements[i+1:]...)
	return true
}

// Clear removes every element, including one held for editing, and closes
// the entry buffer.
func (s *Store) Clear() {
	s.elements = nil
	s.editing = nil
	s.clearEntryText()
}

// RotateAround turns every element position, including one held for
// editing, by radians around center. Element rotations are untouched; the
// canvas rotation is added to them when drawing.
func (s *Store) RotateAround(center graphics.Point, radians float64) {
	for i := range s.elements {
		s.elements[i].Position = graphics.RotatePoint(s.elements[i].Position, center, radians)
	}
	if s.editing != nil {
		s.editing.Position = graphics.RotatePoint(s.editing.Position, center, radians)
	}
}

// Elements returns a copy of the elements in render order.
func (s *Store) Elements() []Element {
	out := make([]Element, len(s.elements))
	copy(out, s.elements)
	return out
}

// Get returns the element with the given id.
func (s *Store) Get(id ID) (Element, bool) {
	if i := s.index(id); i >= 0 {
		return s.elements[i], true
	}
	return Element{}, false
}

// Selected returns the selected element, if any.
func (s *Store) Selected() (Element, bool) {
	for _, e := range s.elements {
		if e.IsSelected {
			return e, true
		}
	}
	return Element{}, false
}

// Len returns the number of placed elements.
func (s *Store) Len() int {
	return len(s.elements)
}

// Entry returns the entry buffer.
func (s *Store) Entry() Entry {
	return s.entry
}

// BeginAdd opens the entry buffer for a new label.
func (s *Store) BeginAdd() {
	if s.editing != nil {
		s.CancelEdit()
	}
	s.entry.Text = ""
	s.entry.Adding = true
	s.entry.EditingID = 0
}

// SetEntryText replaces the pending text.
func (s *Store) SetEntryText(text string) {
	s.entry.Text = text
}

// SetEntryColor sets the color used for the next commit.
func (s *Store) SetEntryColor(c color.NRGBA) {
	s.entry.Color = c
}

// SetEntryFontSize sets the font size used for the next commit.
func (s *Store) SetEntryFontSize(size float64) {
	if size > 0 {
		s.entry.FontSize = size
	}
}

// CloseEntry abandons the entry buffer without adding anything. An edit
// in progress is cancelled.
func (s *Store) CloseEntry() {
	if s.editing != nil {
		s.CancelEdit()
		return
	}
	s.clearEntryText()
}

// clearEntryText empties and closes the entry buffer, keeping the chosen
// color and size for the next label.
func (s *Store) clearEntryText() {
	s.entry.Text = ""
	s.entry.Adding = false
	s.entry.EditingID = 0
}

// Placement maps an element to its on-screen center and total rotation in
// degrees.
type Placement func(e Element) (center graphics.Point, degrees float64)

// HitTest returns the topmost element whose padded, rotated and scaled box
// contains p.
func (s *Store) HitTest(p graphics.Point, place Placement) (ID, bool) {
	for i := len(s.elements) - 1; i >= 0; i-- {
		e := s.elements[i]
		if e.Size.IsEmpty() {
			continue
		}
		center, deg := place(e)
		local := graphics.RotatePoint(p, center, -graphics.Radians(deg)).Sub(center)
		scale := e.Scale
		if !(scale > 0) {
			scale = 1
		}
		hw := (e.Size.Width/2 + SelectionPadding) * scale
		hh := (e.Size.Height/2 + SelectionPadding) * scale
		if math.Abs(local.X) <= hw && math.Abs(local.Y) <= hh {
			return e.ID, true
		}
	}
	return 0, false
}
