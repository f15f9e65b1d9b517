package object

// PropertyKey identifies a property by name or by symbol
type PropertyKey struct {
	name   string
	symbol *Symbol
}

// Key returns the property key for a string name
func Key(name string) PropertyKey {
	return PropertyKey{name: name}
}

// SymbolKey returns the property key for a symbol
func SymbolKey(s *Symbol) PropertyKey {
	return PropertyKey{symbol: s}
}

// IsSymbol reports whether the key is a symbol
func (k PropertyKey) IsSymbol() bool {
	return k.symbol != nil
}

func (k PropertyKey) String() string {
	if k.symbol != nil {
		return "[" + k.symbol.Description + "]"
	}
	return k.name
}

// PropertyDescriptor describes a data property
type PropertyDescriptor struct {
	Value        Value
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// MethodProperty returns the descriptor used for built-in methods:
// writable, non-enumerable and configurable.
func MethodProperty(v Value) PropertyDescriptor {
	return PropertyDescriptor{Value: v, Writable: true, Configurable: true}
}

// ReadOnlyProperty returns a non-writable, non-enumerable, configurable descriptor
func ReadOnlyProperty(v Value) PropertyDescriptor {
	return PropertyDescriptor{Value: v, Configurable: true}
}
