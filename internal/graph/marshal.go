package graph

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// MarshalNode serializes a graph to JSON using the reserved keys
// (id, ref, list, tuple, set, frozen, map). Unanchored lists and records
// serialize as native arrays and objects, so rendered graphs come out in
// their natural JSON shape.
//
// Floats must be finite; run Sanitize first if the graph may carry NaN
// or infinities.
func MarshalNode(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalNode(&buf, n, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalCanonical serializes a graph to canonical JSON text: NFC
// normalized strings with minimal escaping and no HTML escaping. This is
// the only serialization the store should persist, so that byte
// comparison of stored graphs is meaningful.
func MarshalCanonical(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalNode(&buf, n, true); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalNode(buf *bytes.Buffer, n Node, canonical bool) error {
	switch v := n.(type) {
	case nil, Null:
		buf.WriteString("null")
	case Bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Int:
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case Float:
		return marshalFloat(buf, float64(v))
	case Str:
		return marshalString(buf, string(v), canonical)
	case Bytes:
		return marshalString(buf, base64.StdEncoding.EncodeToString(v), canonical)
	case *Ref:
		fmt.Fprintf(buf, `{"ref":%d}`, v.Target)
	case *Record:
		return marshalRecord(buf, v, canonical)
	case *List:
		if v.ID > 0 {
			fmt.Fprintf(buf, `{"id":%d,"list":`, v.ID)
			if err := marshalElems(buf, v.Elems, canonical); err != nil {
				return err
			}
			buf.WriteByte('}')
			return nil
		}
		return marshalElems(buf, v.Elems, canonical)
	case *Tuple:
		buf.WriteByte('{')
		if v.ID > 0 {
			fmt.Fprintf(buf, `"id":%d,`, v.ID)
		}
		buf.WriteString(`"tuple":`)
		if err := marshalElems(buf, v.Elems, canonical); err != nil {
			return err
		}
		buf.WriteByte('}')
	case *Set:
		buf.WriteByte('{')
		if v.ID > 0 {
			fmt.Fprintf(buf, `"id":%d,`, v.ID)
		}
		buf.WriteString(`"set":`)
		if err := marshalElems(buf, v.Elems, canonical); err != nil {
			return err
		}
		fmt.Fprintf(buf, `,"frozen":%t}`, v.Frozen)
	case *Map:
		buf.WriteByte('{')
		if v.ID > 0 {
			fmt.Fprintf(buf, `"id":%d,`, v.ID)
		}
		buf.WriteString(`"map":[`)
		for i, p := range v.Pairs {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('[')
			if err := marshalNode(buf, p.Key, canonical); err != nil {
				return err
			}
			buf.WriteByte(',')
			if err := marshalNode(buf, p.Value, canonical); err != nil {
				return err
			}
			buf.WriteByte(']')
		}
		buf.WriteString("]}")
	default:
		return fmt.Errorf("unknown node type: %T", n)
	}
	return nil
}

func marshalRecord(buf *bytes.Buffer, r *Record, canonical bool) error {
	buf.WriteByte('{')
	first := true
	if r.ID > 0 {
		fmt.Fprintf(buf, `"id":%d`, r.ID)
		first = false
	}
	for _, f := range r.Fields {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := marshalString(buf, f.Name, canonical); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		buf.WriteByte(':')
		if err := marshalNode(buf, f.Value, canonical); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func marshalElems(buf *bytes.Buffer, elems []Node, canonical bool) error {
	buf.WriteByte('[')
	for i, e := range elems {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalNode(buf, e, canonical); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func marshalFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("non-finite float %v is not serializable; sanitize the graph first", f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Keep integral floats distinguishable from ints on the wire.
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	buf.WriteString(s)
	return nil
}

func marshalString(buf *bytes.Buffer, s string, canonical bool) error {
	if canonical {
		buf.WriteString(canonicalString(s))
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

// UnmarshalNode parses JSON produced by MarshalNode or MarshalCanonical
// back into a graph. Object shapes are recognized by their reserved keys;
// everything else decodes as a Record with field order preserved from the
// document.
func UnmarshalNode(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	n, err := decodeNode(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after graph document")
	}
	return n, nil
}

func decodeNode(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (Node, error) {
	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case string:
		return Str(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", t.String())
		}
		return Float(f), nil
	case json.Delim:
		switch t {
		case '[':
			elems, err := decodeArray(dec)
			if err != nil {
				return nil, err
			}
			return &List{Elems: elems}, nil
		case '{':
			return decodeObject(dec)
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func decodeArray(dec *json.Decoder) ([]Node, error) {
	var elems []Node
	for dec.More() {
		e, err := decodeNode(dec)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", len(elems), err)
		}
		elems = append(elems, e)
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return nil, err
	}
	return elems, nil
}

func decodeObject(dec *json.Decoder) (Node, error) {
	var fields []Field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", keyTok)
		}
		val, err := decodeNode(dec)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		fields = append(fields, Field{Name: key, Value: val})
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, err
	}
	return interpretObject(fields)
}

// interpretObject maps a decoded JSON object onto the node vocabulary by
// inspecting its reserved keys. The key set must match a wrapper shape
// exactly; anything else is a plain record.
func interpretObject(fields []Field) (Node, error) {
	byName := make(map[string]Node, len(fields))
	for _, f := range fields {
		byName[f.Name] = f.Value
	}

	id := 0
	if v, ok := byName["id"]; ok {
		n, ok := v.(Int)
		if !ok {
			// A field that happens to be named "id" but is not an anchor.
			return &Record{Fields: fields}, nil
		}
		id = int(n)
	}
	rest := len(fields)
	if id > 0 {
		rest--
	}

	if rest == 1 && id == 0 {
		if ref, ok := byName["ref"].(Int); ok && len(byName) == 1 {
			return &Ref{Target: int(ref)}, nil
		}
	}
	if rest == 1 {
		if wrapped, ok := byName["list"].(*List); ok {
			return &List{ID: id, Elems: wrapped.Elems}, nil
		}
		if wrapped, ok := byName["tuple"].(*List); ok {
			return &Tuple{ID: id, Elems: wrapped.Elems}, nil
		}
		if wrapped, ok := byName["map"].(*List); ok {
			return decodeMapPairs(id, wrapped.Elems)
		}
	}
	if wrapped, ok := byName["set"].(*List); ok && (rest == 1 || rest == 2) {
		frozen, hasFrozen := byName["frozen"].(Bool)
		if rest == 1 || hasFrozen {
			return &Set{ID: id, Elems: wrapped.Elems, Frozen: bool(frozen)}, nil
		}
	}

	out := make([]Field, 0, rest)
	for _, f := range fields {
		if f.Name == "id" && id > 0 {
			continue
		}
		out = append(out, f)
	}
	return &Record{ID: id, Fields: out}, nil
}

func decodeMapPairs(id int, elems []Node) (Node, error) {
	pairs := make([]Pair, 0, len(elems))
	for i, e := range elems {
		pair, ok := e.(*List)
		if !ok || len(pair.Elems) != 2 {
			return nil, fmt.Errorf("map[%d]: expected a [key, value] pair", i)
		}
		pairs = append(pairs, Pair{Key: pair.Elems[0], Value: pair.Elems[1]})
	}
	return &Map{ID: id, Pairs: pairs}, nil
}
