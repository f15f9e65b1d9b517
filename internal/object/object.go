package object

// Object is an ordinary host object: a prototype link, own data properties
// and an optional internal data slot used by built-ins to attach state.
type Object struct {
	proto *Object
	props map[PropertyKey]*PropertyDescriptor
	keys  []PropertyKey
	data  any
	call  NativeFunction
}

// New creates an object inheriting from proto (nil for a null prototype)
// and carrying data in its internal slot
func New(proto *Object, data any) *Object {
	return &Object{
		proto: proto,
		props: make(map[PropertyKey]*PropertyDescriptor),
		data:  data,
	}
}

// Prototype returns the object's prototype, or nil
func (o *Object) Prototype() *Object {
	return o.proto
}

// Data returns the internal data slot
func (o *Object) Data() any {
	return o.data
}

// Callable reports whether the object is a function
func (o *Object) Callable() bool {
	return o.call != nil
}

// DefineOwnProperty creates or replaces an own property.
// Replacing a non-configurable property is a TypeError.
func (o *Object) DefineOwnProperty(key PropertyKey, desc PropertyDescriptor) error {
	if existing, ok := o.props[key]; ok {
		if !existing.Configurable {
			return NewTypeError("Cannot redefine property: %s", key)
		}
		*existing = desc
		return nil
	}

	d := desc
	o.props[key] = &d
	o.keys = append(o.keys, key)
	return nil
}

// GetOwnProperty returns a copy of the own property descriptor for key
func (o *Object) GetOwnProperty(key PropertyKey) (PropertyDescriptor, bool) {
	desc, ok := o.props[key]
	if !ok {
		return PropertyDescriptor{}, false
	}
	return *desc, true
}

// HasOwnProperty reports whether key is an own property
func (o *Object) HasOwnProperty(key PropertyKey) bool {
	_, ok := o.props[key]
	return ok
}

// OwnKeys returns own property keys in definition order
func (o *Object) OwnKeys() []PropertyKey {
	keys := make([]PropertyKey, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Get looks key up along the prototype chain. Missing properties are Undefined.
func (o *Object) Get(key PropertyKey) Value {
	for obj := o; obj != nil; obj = obj.proto {
		if desc, ok := obj.props[key]; ok {
			return desc.Value
		}
	}
	return Undefined
}

// Set assigns an own data property. Assigning over a non-writable own or
// inherited property is a TypeError.
func (o *Object) Set(key PropertyKey, v Value) error {
	for obj := o; obj != nil; obj = obj.proto {
		desc, ok := obj.props[key]
		if !ok {
			continue
		}
		if !desc.Writable {
			return NewTypeError("Cannot assign to read only property '%s' of object", key)
		}
		if obj == o {
			desc.Value = v
			return nil
		}
		break
	}

	return o.DefineOwnProperty(key, PropertyDescriptor{
		Value:        v,
		Writable:     true,
		Enumerable:   true,
		Configurable: true,
	})
}

// Tag returns the "[object Tag]" form used by generic inspection, read from
// the Symbol.toStringTag property
func Tag(o *Object) string {
	if tag, ok := o.Get(SymbolKey(SymbolToStringTag)).(interface{ String() string }); ok {
		if _, isSymbol := tag.(*Symbol); !isSymbol {
			return "[object " + tag.String() + "]"
		}
	}
	if o.Callable() {
		return "[object Function]"
	}
	return "[object Object]"
}
