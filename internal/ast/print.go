package ast

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Print produces a deterministic JSON representation of an AST node for
// golden snapshot testing. Spans are omitted (byte offsets and line/col
// numbers are not part of a node's semantic identity) and the dynamic Go
// type name is attached as a "type" discriminator field.
func Print(node Node) string {
	data, err := json.MarshalIndent(simplify(reflect.ValueOf(node)), "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

// PrintProgram is Print specialized for a *Program root.
func PrintProgram(prog *Program) string {
	if prog == nil {
		return "null"
	}
	return Print(prog)
}

// simplify walks an AST value with reflection and produces a plain
// JSON-serializable tree: struct fields become a map (with a "type" key
// for named struct types), slices become arrays, and the embedded `base`
// field (which only carries a Span) is dropped.
func simplify(v reflect.Value) interface{} {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		m := make(map[string]interface{}, t.NumField()+1)
		if t.Name() != "" {
			m["type"] = t.Name()
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Name == "base" || f.Name == "Sp" {
				continue
			}
			if !f.IsExported() {
				continue
			}
			m[f.Name] = simplify(v.Field(i))
		}
		return m
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return []interface{}{}
		}
		out := make([]interface{}, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = simplify(v.Index(i))
		}
		return out
	case reflect.Invalid:
		return nil
	default:
		return v.Interface()
	}
}
