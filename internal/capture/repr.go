package capture

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var opaqueAddrRE = regexp.MustCompile(`0x[0-9a-fA-F]+`)

// reprDepth bounds the fallback renderer. Nesting past it, including
// any cycle, degrades to "..." instead of recursing.
const reprDepth = 4

// fallbackString renders a value that will not be traversed (depth limit
// reached or unrepresentable kind) as stable text. When the default
// formatting leaks a memory address, the value is summarized as a
// "<type>" placeholder instead, so repeated captures stay comparable.
func fallbackString(v any) string {
	r := safeFormat(v)
	if r == "" || opaqueAddrRE.MatchString(r) {
		return fmt.Sprintf("<%T>", v)
	}
	return r
}

// sortKey is the deterministic textual form used to order set elements
// and map pairs before they are captured. Sorting before capture (rather
// than after, on the captured nodes) keeps anchor numbering deterministic
// even though Go randomizes map iteration order.
func sortKey(v any) string {
	return safeFormat(v)
}

// safeFormat renders v in the style of fmt's %v, but depth-bounded.
// fmt itself recurses forever on a self-referential slice or map, and
// the resulting stack overflow is a fatal runtime error rather than a
// recoverable panic, so composites are walked by hand.
func safeFormat(v any) (s string) {
	defer func() {
		if recover() != nil {
			s = fmt.Sprintf("<%T>", v)
		}
	}()
	var b strings.Builder
	writeValue(&b, reflect.ValueOf(v), reprDepth)
	return b.String()
}

func writeValue(b *strings.Builder, rv reflect.Value, depth int) {
	for rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			b.WriteString("<nil>")
			return
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		b.WriteString("<nil>")
		return
	}
	if s, ok := stringerOf(rv); ok {
		b.WriteString(s)
		return
	}

	switch rv.Kind() {
	case reflect.Bool:
		b.WriteString(strconv.FormatBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32:
		b.WriteString(strconv.FormatFloat(rv.Float(), 'g', -1, 32))
	case reflect.Float64:
		b.WriteString(strconv.FormatFloat(rv.Float(), 'g', -1, 64))
	case reflect.String:
		b.WriteString(rv.String())

	case reflect.Slice, reflect.Array:
		if depth <= 0 {
			b.WriteString("[...]")
			return
		}
		b.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeValue(b, rv.Index(i), depth-1)
		}
		b.WriteByte(']')

	case reflect.Map:
		if depth <= 0 {
			b.WriteString("map[...]")
			return
		}
		entries := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			var e strings.Builder
			writeValue(&e, iter.Key(), depth-1)
			e.WriteByte(':')
			writeValue(&e, iter.Value(), depth-1)
			entries = append(entries, e.String())
		}
		sort.Strings(entries)
		b.WriteString("map[")
		b.WriteString(strings.Join(entries, " "))
		b.WriteByte(']')

	case reflect.Struct:
		if depth <= 0 {
			b.WriteString("{...}")
			return
		}
		b.WriteByte('{')
		for i := 0; i < rv.NumField(); i++ {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeValue(b, rv.Field(i), depth-1)
		}
		b.WriteByte('}')

	case reflect.Pointer:
		if rv.IsNil() {
			b.WriteString("<nil>")
			return
		}
		switch rv.Elem().Kind() {
		case reflect.Struct, reflect.Array, reflect.Slice, reflect.Map:
			if depth <= 0 {
				b.WriteString("&...")
				return
			}
			b.WriteByte('&')
			writeValue(b, rv.Elem(), depth-1)
		default:
			// Pointers to scalars print as addresses, like fmt; the
			// caller then replaces them with a type placeholder.
			fmt.Fprintf(b, "%v", interfaceOf(rv))
		}

	default:
		// func, chan, unsafe pointers: addresses, handled as above.
		fmt.Fprintf(b, "%v", interfaceOf(rv))
	}
}

// stringerOf honors a value's own String or Error method the way fmt
// does. The method runs under safeFormat's recover.
func stringerOf(rv reflect.Value) (string, bool) {
	if !rv.CanInterface() {
		return "", false
	}
	switch v := rv.Interface().(type) {
	case fmt.Stringer:
		return v.String(), true
	case error:
		return v.Error(), true
	}
	return "", false
}
