package capture

import "reflect"

// FieldValue is one public field of a described object, in field order.
type FieldValue struct {
	Name  string
	Value any
}

// FieldDescriber exposes the public fields of an arbitrary object. The
// Capturer depends only on this capability, never on a particular
// reflection facility, so callers can plug in registered serializers or
// accessor-based views for types where raw fields are wrong.
type FieldDescriber interface {
	// DescribeFields returns the object's public fields in a stable
	// order, or ok=false when the value is not an object this describer
	// understands.
	DescribeFields(v any) (fields []FieldValue, ok bool)
}

// ReflectDescriber is the default FieldDescriber: exported, non-func
// struct fields in declaration order.
type ReflectDescriber struct{}

// DescribeFields implements FieldDescriber for structs and pointers to
// structs. Unexported fields and function-typed fields are skipped, the
// Go analogue of "non-private, non-callable attributes".
func (ReflectDescriber) DescribeFields(v any) ([]FieldValue, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}

	rt := rv.Type()
	fields := make([]FieldValue, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv := rv.Field(i)
		if isCallable(fv) {
			continue
		}
		fields = append(fields, FieldValue{Name: sf.Name, Value: fv.Interface()})
	}
	return fields, true
}

func isCallable(rv reflect.Value) bool {
	if rv.Kind() == reflect.Func {
		return true
	}
	if rv.Kind() == reflect.Interface && !rv.IsNil() {
		return rv.Elem().Kind() == reflect.Func
	}
	return false
}
