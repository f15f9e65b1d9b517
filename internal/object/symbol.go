package object

// Symbol is a unique property key. Two symbols are equal only if they are
// the same pointer.
type Symbol struct {
	Description string
}

// Well-known symbols shared by every realm
var (
	SymbolIterator    = &Symbol{Description: "Symbol.iterator"}
	SymbolToStringTag = &Symbol{Description: "Symbol.toStringTag"}
)

// NewSymbol creates a fresh symbol
func NewSymbol(description string) *Symbol {
	return &Symbol{Description: description}
}

func (s *Symbol) String() string {
	return "Symbol(" + s.Description + ")"
}
