package object

var (
	keyValue = Key("value")
	keyDone  = Key("done")
)

// CreateIterResultObject wraps a step outcome into the {value, done} object
// every iteration consumer understands. The object has a null prototype.
func CreateIterResultObject(value Value, done bool) *Object {
	if value == nil {
		value = Undefined
	}
	result := New(nil, nil)
	_ = result.DefineOwnProperty(keyValue, PropertyDescriptor{Value: value, Writable: true, Enumerable: true, Configurable: true})
	_ = result.DefineOwnProperty(keyDone, PropertyDescriptor{Value: done, Writable: true, Enumerable: true, Configurable: true})
	return result
}

// IterResult reads value and done back out of an iteration result.
// A non-object result is a TypeError.
func IterResult(result Value) (Value, bool, error) {
	obj, ok := result.(*Object)
	if !ok {
		return nil, false, NewTypeError("Iterator result %s is not an object", TypeOf(result))
	}
	done := ToBoolean(obj.Get(keyDone))
	return obj.Get(keyValue), done, nil
}
