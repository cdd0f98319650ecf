package api

import (
	"image/color"

	"inkframe/pkg/graphics"
	"inkframe/pkg/textlayer"
)

// Texts returns the placed text elements in drawing order.
func (s *Session) Texts() []textlayer.Element {
	return s.texts.Elements()
}

// Text returns one element.
func (s *Session) Text(id textlayer.ID) (textlayer.Element, bool) {
	return s.texts.Get(id)
}

// Selected returns the selected element, if any.
func (s *Session) Selected() (textlayer.Element, bool) {
	return s.texts.Selected()
}

// TextEntry returns the text entry state.
func (s *Session) TextEntry() textlayer.Entry {
	return s.texts.Entry()
}

// BeginAddText opens the text entry for a new element.
func (s *Session) BeginAddText() {
	s.texts.BeginAdd()
}

// SetTextColor sets the color of the next committed text.
func (s *Session) SetTextColor(c color.NRGBA) {
	s.texts.SetEntryColor(c)
}

// SetFontSize sets the size of the next committed text.
func (s *Session) SetFontSize(size float64) {
	s.texts.SetEntryFontSize(size)
}

// AddText places text at the center of the container using the entry's
// color and size. Blank text is ignored.
func (s *Session) AddText(text string) (textlayer.ID, bool) {
	if s.image == nil {
		return 0, false
	}
	e := s.texts.Entry()
	id, ok := s.texts.Add(text, e.Color, e.FontSize, s.ContainerSize())
	if ok {
		s.measure(id)
	}
	return id, ok
}

// CommitText finishes the text entry: it completes an edit in progress or
// adds a new element.
func (s *Session) CommitText(text string) (textlayer.ID, bool) {
	if s.texts.IsEditing() {
		id, ok := s.texts.CommitEdit(text)
		if ok {
			s.measure(id)
		}
		return id, ok
	}
	return s.AddText(text)
}

// CancelText abandons the text entry. An element being edited is put back
// unchanged.
func (s *Session) CancelText() {
	s.texts.CloseEntry()
}

// BeginEditText moves an element into the entry for editing.
func (s *Session) BeginEditText(id textlayer.ID) bool {
	return s.texts.BeginEdit(id)
}

// SelectText selects one element.
func (s *Session) SelectText(id textlayer.ID) {
	s.texts.Select(id)
}

// DeselectText clears the selection.
func (s *Session) DeselectText() {
	s.texts.DeselectAll()
}

// MoveText sets an element's anchor in container space.
func (s *Session) MoveText(id textlayer.ID, p graphics.Point) {
	s.texts.UpdatePosition(id, p)
}

// ScaleText sets an element's own scale.
func (s *Session) ScaleText(id textlayer.ID, scale float64) {
	s.texts.UpdateScale(id, scale)
}

// RotateText sets an element's own rotation in degrees.
func (s *Session) RotateText(id textlayer.ID, degrees float64) {
	s.texts.UpdateRotation(id, degrees)
}

// RemoveText deletes an element.
func (s *Session) RemoveText(id textlayer.ID) bool {
	return s.texts.Remove(id)
}

// TextPlacement is where an element is drawn on screen: its remapped
// center and total rotation in degrees.
func (s *Session) TextPlacement(e textlayer.Element) (graphics.Point, float64) {
	return s.transform.MapTextPosition(e.Position, s.ContainerSize()), s.transform.Rotation + e.Rotation
}

// TextAt returns the topmost element drawn under screen point p.
func (s *Session) TextAt(p graphics.Point) (textlayer.ID, bool) {
	return s.texts.HitTest(p, s.TextPlacement)
}

func (s *Session) measure(id textlayer.ID) {
	e, ok := s.texts.Get(id)
	if !ok {
		return
	}
	s.texts.UpdateMeasuredSize(id, s.opts.Font.Measure(e.Text, e.FontSize))
}
