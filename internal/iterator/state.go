package iterator

// State is the iteration state of a StringIterator: Active or Exhausted
type State interface {
	isState()
}

// Active is a live iterator positioned at Cursor, in UTF-16 code units
type Active struct {
	Cursor int
}

// Exhausted is the terminal state. Once reached it is never left.
type Exhausted struct{}

func (Active) isState()    {}
func (Exhausted) isState() {}
