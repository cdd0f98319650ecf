package graphics

// MatrixStack is a save/restore stack of transformation matrices, the
// equivalent of a graphics context's saveGState/restoreGState pair.
type MatrixStack struct {
	states []Matrix
}

// NewMatrixStack creates a stack whose current matrix is the identity.
func NewMatrixStack() *MatrixStack {
	return &MatrixStack{
		states: []Matrix{Identity()},
	}
}

// Current returns the topmost matrix.
func (s *MatrixStack) Current() Matrix {
	if len(s.states) == 0 {
		s.states = append(s.states, Identity())
	}
	return s.states[len(s.states)-1]
}

// Push saves the current matrix.
func (s *MatrixStack) Push() {
	s.states = append(s.states, s.Current())
}

// Pop restores the previously saved matrix. The bottom entry is never removed.
func (s *MatrixStack) Pop() {
	if len(s.states) > 1 {
		s.states = s.states[:len(s.states)-1]
	}
}

// Concat applies m before the current transform, the way a graphics
// context's translate/rotate/scale calls do.
func (s *MatrixStack) Concat(m Matrix) {
	top := len(s.states) - 1
	if top < 0 {
		s.states = append(s.states, Identity())
		top = 0
	}
	s.states[top].Concat(m)
}

// Translate concatenates a translation.
func (s *MatrixStack) Translate(tx, ty float64) {
	s.Concat(Translate(tx, ty))
}

// Rotate concatenates a rotation in radians.
func (s *MatrixStack) Rotate(angle float64) {
	s.Concat(Rotate(angle))
}

// Scale concatenates a scale.
func (s *MatrixStack) Scale(sx, sy float64) {
	s.Concat(Scale(sx, sy))
}

// Depth returns the current stack depth.
func (s *MatrixStack) Depth() int {
	return len(s.states)
}
