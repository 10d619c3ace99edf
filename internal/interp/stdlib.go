package interp

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// registerStdlib installs every std.* builtin into globals under three
// names: its fully-qualified dotted key (`std.io.println`), its bare last
// segment, and as a member of a nested ModuleValue chain rooted at "std"
// so that evalExpr's FieldAccess case can walk a real `std.io.println(...)`
// expression the same way source code written against imports does. The
// dotted/bare keys exist for code that already resolved a call through the
// checker's own alias binding rather than a literal FieldAccess chain.
// std.io and std.fs builtins check the host's capability grant before
// touching any stream or the filesystem. A denied capability is returned
// as a Go error (CapabilityError) that aborts the call, whereas a host I/O
// failure in a Result-typed builtin becomes an Err(string) value.
func registerStdlib(globals *Env, host HostServices) {
	submodules := map[string]*Env{}
	submodule := func(path string) *Env {
		if e, ok := submodules[path]; ok {
			return e
		}
		e := NewEnv()
		submodules[path] = e
		return e
	}

	reg := func(qualified string, fn func([]Value) (Value, error)) {
		b := &BuiltinValue{Name: qualified, Fn: fn}
		globals.Define(qualified, b, false)
		i := strings.LastIndex(qualified, ".")
		bare := qualified
		if i >= 0 {
			bare = qualified[i+1:]
		}
		globals.Define(bare, b, false)
		if i >= 0 {
			submodule(qualified[:i]).Define(bare, b, false)
		}
	}

	// std.io
	reg("std.io.print", func(a []Value) (Value, error) {
		if err := host.RequireCap(CapIO); err != nil {
			return nil, err
		}
		s, err := arg1String(a, "print")
		if err != nil {
			return nil, err
		}
		host.Print(s)
		return Unit, nil
	})
	reg("std.io.println", func(a []Value) (Value, error) {
		if err := host.RequireCap(CapIO); err != nil {
			return nil, err
		}
		s, err := arg1String(a, "println")
		if err != nil {
			return nil, err
		}
		host.Println(s)
		return Unit, nil
	})
	reg("std.io.eprintln", func(a []Value) (Value, error) {
		if err := host.RequireCap(CapIO); err != nil {
			return nil, err
		}
		s, err := arg1String(a, "eprintln")
		if err != nil {
			return nil, err
		}
		host.Eprintln(s)
		return Unit, nil
	})
	reg("std.io.read_line", func(a []Value) (Value, error) {
		if err := host.RequireCap(CapIO); err != nil {
			return nil, err
		}
		line, ok := host.ReadLine()
		if !ok {
			return noneV(), nil
		}
		return someV(&StringValue{Val: line}), nil
	})

	// std.fs
	reg("std.fs.read_file", func(a []Value) (Value, error) {
		if err := host.RequireCap(CapFS); err != nil {
			return nil, err
		}
		path, err := arg1String(a, "read_file")
		if err != nil {
			return nil, err
		}
		data, rerr := host.ReadFile(path)
		if rerr != nil {
			return errV(&StringValue{Val: rerr.Error()}), nil
		}
		return okV(&StringValue{Val: data}), nil
	})
	reg("std.fs.write_file", func(a []Value) (Value, error) {
		if err := host.RequireCap(CapFS); err != nil {
			return nil, err
		}
		if len(a) != 2 {
			return nil, rtErrf("write_file: expected 2 arguments")
		}
		path, ok1 := a[0].(*StringValue)
		content, ok2 := a[1].(*StringValue)
		if !ok1 || !ok2 {
			return nil, rtErrf("write_file: expected (string, string)")
		}
		if err := host.WriteFile(path.Val, content.Val); err != nil {
			return errV(&StringValue{Val: err.Error()}), nil
		}
		return okV(Unit), nil
	})
	reg("std.fs.append_file", func(a []Value) (Value, error) {
		if err := host.RequireCap(CapFS); err != nil {
			return nil, err
		}
		if len(a) != 2 {
			return nil, rtErrf("append_file: expected 2 arguments")
		}
		path, ok1 := a[0].(*StringValue)
		content, ok2 := a[1].(*StringValue)
		if !ok1 || !ok2 {
			return nil, rtErrf("append_file: expected (string, string)")
		}
		if err := host.AppendFile(path.Val, content.Val); err != nil {
			return errV(&StringValue{Val: err.Error()}), nil
		}
		return okV(Unit), nil
	})
	reg("std.fs.exists", func(a []Value) (Value, error) {
		if err := host.RequireCap(CapFS); err != nil {
			return nil, err
		}
		path, err := arg1String(a, "exists")
		if err != nil {
			return nil, err
		}
		return &BoolValue{Val: host.Exists(path)}, nil
	})
	reg("std.fs.remove", func(a []Value) (Value, error) {
		if err := host.RequireCap(CapFS); err != nil {
			return nil, err
		}
		path, err := arg1String(a, "remove")
		if err != nil {
			return nil, err
		}
		if err := host.Remove(path); err != nil {
			return errV(&StringValue{Val: err.Error()}), nil
		}
		return okV(Unit), nil
	})
	reg("std.fs.is_file", func(a []Value) (Value, error) {
		if err := host.RequireCap(CapFS); err != nil {
			return nil, err
		}
		path, err := arg1String(a, "is_file")
		if err != nil {
			return nil, err
		}
		return &BoolValue{Val: host.IsFile(path)}, nil
	})
	reg("std.fs.is_dir", func(a []Value) (Value, error) {
		if err := host.RequireCap(CapFS); err != nil {
			return nil, err
		}
		path, err := arg1String(a, "is_dir")
		if err != nil {
			return nil, err
		}
		return &BoolValue{Val: host.IsDir(path)}, nil
	})
	reg("std.fs.create_dir", func(a []Value) (Value, error) {
		if err := host.RequireCap(CapFS); err != nil {
			return nil, err
		}
		path, err := arg1String(a, "create_dir")
		if err != nil {
			return nil, err
		}
		if err := host.CreateDir(path); err != nil {
			return errV(&StringValue{Val: err.Error()}), nil
		}
		return okV(Unit), nil
	})
	reg("std.fs.read_dir", func(a []Value) (Value, error) {
		if err := host.RequireCap(CapFS); err != nil {
			return nil, err
		}
		path, err := arg1String(a, "read_dir")
		if err != nil {
			return nil, err
		}
		names, rerr := host.ReadDir(path)
		if rerr != nil {
			return errV(&StringValue{Val: rerr.Error()}), nil
		}
		elems := make([]Value, len(names))
		for i, n := range names {
			elems[i] = &StringValue{Val: n}
		}
		return okV(sliceToList(elems)), nil
	})

	// std.string
	reg("std.string.length", func(a []Value) (Value, error) {
		s, err := arg1String(a, "length")
		if err != nil {
			return nil, err
		}
		return NewInt(int64(len([]rune(s))), "i64"), nil
	})
	reg("std.string.substring", func(a []Value) (Value, error) {
		if len(a) != 3 {
			return nil, rtErrf("substring: expected 3 arguments")
		}
		s, ok := a[0].(*StringValue)
		if !ok {
			return nil, rtErrf("substring: expected a string")
		}
		lo, loOk := a[1].(*IntValue)
		hi, hiOk := a[2].(*IntValue)
		if !loOk || !hiOk {
			return nil, rtErrf("substring: expected integer bounds")
		}
		runes := []rune(s.Val)
		i, j := int(lo.Val.Int64()), int(hi.Val.Int64())
		if i < 0 || j > len(runes) || i > j {
			return nil, rtErrf("substring: index out of range")
		}
		return &StringValue{Val: string(runes[i:j])}, nil
	})
	reg("std.string.parse_int", func(a []Value) (Value, error) {
		s, err := arg1String(a, "parse_int")
		if err != nil {
			return nil, err
		}
		n, perr := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if perr != nil {
			return noneV(), nil
		}
		return someV(NewInt(n, "i64")), nil
	})
	reg("std.string.parse_float", func(a []Value) (Value, error) {
		s, err := arg1String(a, "parse_float")
		if err != nil {
			return nil, err
		}
		f, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if perr != nil {
			return noneV(), nil
		}
		return someV(&FloatValue{Val: f, Width: "f64"}), nil
	})
	reg("std.string.starts_with", func(a []Value) (Value, error) {
		s, p, err := arg2String(a, "starts_with")
		if err != nil {
			return nil, err
		}
		return &BoolValue{Val: strings.HasPrefix(s, p)}, nil
	})
	reg("std.string.ends_with", func(a []Value) (Value, error) {
		s, p, err := arg2String(a, "ends_with")
		if err != nil {
			return nil, err
		}
		return &BoolValue{Val: strings.HasSuffix(s, p)}, nil
	})
	reg("std.string.contains", func(a []Value) (Value, error) {
		s, p, err := arg2String(a, "contains")
		if err != nil {
			return nil, err
		}
		return &BoolValue{Val: strings.Contains(s, p)}, nil
	})
	reg("std.string.index_of", func(a []Value) (Value, error) {
		s, p, err := arg2String(a, "index_of")
		if err != nil {
			return nil, err
		}
		idx := strings.Index(s, p)
		if idx < 0 {
			return noneV(), nil
		}
		return someV(NewInt(int64(len([]rune(s[:idx]))), "i64")), nil
	})
	reg("std.string.chars", func(a []Value) (Value, error) {
		s, err := arg1String(a, "chars")
		if err != nil {
			return nil, err
		}
		runes := []rune(s)
		elems := make([]Value, len(runes))
		for i, r := range runes {
			elems[i] = &CharValue{Val: r}
		}
		return sliceToList(elems), nil
	})
	reg("std.string.to_upper", func(a []Value) (Value, error) {
		s, err := arg1String(a, "to_upper")
		if err != nil {
			return nil, err
		}
		return &StringValue{Val: cases.Upper(language.Und).String(s)}, nil
	})
	reg("std.string.to_lower", func(a []Value) (Value, error) {
		s, err := arg1String(a, "to_lower")
		if err != nil {
			return nil, err
		}
		return &StringValue{Val: cases.Lower(language.Und).String(s)}, nil
	})
	reg("std.string.trim", func(a []Value) (Value, error) {
		s, err := arg1String(a, "trim")
		if err != nil {
			return nil, err
		}
		return &StringValue{Val: strings.TrimSpace(s)}, nil
	})
	reg("std.string.split", func(a []Value) (Value, error) {
		s, sep, err := arg2String(a, "split")
		if err != nil {
			return nil, err
		}
		parts := strings.Split(s, sep)
		elems := make([]Value, len(parts))
		for i, p := range parts {
			elems[i] = &StringValue{Val: p}
		}
		return sliceToList(elems), nil
	})
	reg("std.string.join", func(a []Value) (Value, error) {
		if len(a) != 2 {
			return nil, rtErrf("join: expected 2 arguments")
		}
		sep, ok := a[1].(*StringValue)
		if !ok {
			return nil, rtErrf("join: expected a string separator")
		}
		elems, err := toSlice(a[0])
		if err != nil {
			return nil, err
		}
		parts := make([]string, len(elems))
		for i, e := range elems {
			sv, ok := e.(*StringValue)
			if !ok {
				return nil, rtErrf("join: expected a list of strings")
			}
			parts[i] = sv.Val
		}
		return &StringValue{Val: strings.Join(parts, sep.Val)}, nil
	})

	// std.char
	reg("std.char.to_i32", func(a []Value) (Value, error) {
		if len(a) != 1 {
			return nil, rtErrf("to_i32: expected 1 argument")
		}
		cv, ok := a[0].(*CharValue)
		if !ok {
			return nil, rtErrf("to_i32: expected a char")
		}
		return NewInt(int64(cv.Val), "i32"), nil
	})
	reg("std.char.from_i32", func(a []Value) (Value, error) {
		if len(a) != 1 {
			return nil, rtErrf("from_i32: expected 1 argument")
		}
		iv, ok := a[0].(*IntValue)
		if !ok {
			return nil, rtErrf("from_i32: expected an integer")
		}
		return &CharValue{Val: rune(iv.Val.Int64())}, nil
	})
	reg("std.char.is_digit", func(a []Value) (Value, error) {
		cv, err := arg1Char(a, "is_digit")
		if err != nil {
			return nil, err
		}
		return &BoolValue{Val: cv >= '0' && cv <= '9'}, nil
	})
	reg("std.char.is_alpha", func(a []Value) (Value, error) {
		cv, err := arg1Char(a, "is_alpha")
		if err != nil {
			return nil, err
		}
		return &BoolValue{Val: (cv >= 'a' && cv <= 'z') || (cv >= 'A' && cv <= 'Z')}, nil
	})

	// std.list
	reg("std.list.length", func(a []Value) (Value, error) {
		elems, err := arg1List(a, "length")
		if err != nil {
			return nil, err
		}
		return NewInt(int64(len(elems)), "i64"), nil
	})
	reg("std.list.push", func(a []Value) (Value, error) {
		if len(a) != 2 {
			return nil, rtErrf("push: expected 2 arguments")
		}
		elems, err := toSlice(a[0])
		if err != nil {
			return nil, err
		}
		return sliceToList(append(append([]Value{}, elems...), a[1])), nil
	})
	reg("std.list.reverse", func(a []Value) (Value, error) {
		elems, err := arg1List(a, "reverse")
		if err != nil {
			return nil, err
		}
		out := make([]Value, len(elems))
		for i, e := range elems {
			out[len(elems)-1-i] = e
		}
		return sliceToList(out), nil
	})
	reg("std.list.head", func(a []Value) (Value, error) {
		elems, err := arg1List(a, "head")
		if err != nil {
			return nil, err
		}
		if len(elems) == 0 {
			return noneV(), nil
		}
		return someV(elems[0]), nil
	})
	reg("std.list.tail", func(a []Value) (Value, error) {
		elems, err := arg1List(a, "tail")
		if err != nil {
			return nil, err
		}
		if len(elems) == 0 {
			return noneV(), nil
		}
		return someV(sliceToList(elems[1:])), nil
	})
	reg("std.list.is_empty", func(a []Value) (Value, error) {
		elems, err := arg1List(a, "is_empty")
		if err != nil {
			return nil, err
		}
		return &BoolValue{Val: len(elems) == 0}, nil
	})
	reg("std.list.concat", func(a []Value) (Value, error) {
		if len(a) != 2 {
			return nil, rtErrf("concat: expected 2 arguments")
		}
		l, err := toSlice(a[0])
		if err != nil {
			return nil, err
		}
		r, err := toSlice(a[1])
		if err != nil {
			return nil, err
		}
		return sliceToList(append(append([]Value{}, l...), r...)), nil
	})
	reg("std.list.sort", func(a []Value) (Value, error) {
		elems, err := arg1List(a, "sort")
		if err != nil {
			return nil, err
		}
		out := append([]Value{}, elems...)
		sort.SliceStable(out, func(i, j int) bool {
			v, err := compare("<", out[i], out[j])
			return err == nil && v.(*BoolValue).Val
		})
		return sliceToList(out), nil
	})

	// std.option
	reg("std.option.is_some", func(a []Value) (Value, error) {
		vv, err := arg1Variant(a, "is_some")
		if err != nil {
			return nil, err
		}
		return &BoolValue{Val: vv.Ctor == "Some"}, nil
	})
	reg("std.option.is_none", func(a []Value) (Value, error) {
		vv, err := arg1Variant(a, "is_none")
		if err != nil {
			return nil, err
		}
		return &BoolValue{Val: vv.Ctor == "None"}, nil
	})
	reg("std.option.unwrap_or", func(a []Value) (Value, error) {
		if len(a) != 2 {
			return nil, rtErrf("unwrap_or: expected 2 arguments")
		}
		vv, ok := a[0].(*VariantValue)
		if !ok {
			return nil, rtErrf("unwrap_or: expected an Option")
		}
		if vv.Ctor == "Some" {
			return vv.Fields[0], nil
		}
		return a[1], nil
	})

	// std.result
	reg("std.result.is_ok", func(a []Value) (Value, error) {
		vv, err := arg1Variant(a, "is_ok")
		if err != nil {
			return nil, err
		}
		return &BoolValue{Val: vv.Ctor == "Ok"}, nil
	})
	reg("std.result.is_err", func(a []Value) (Value, error) {
		vv, err := arg1Variant(a, "is_err")
		if err != nil {
			return nil, err
		}
		return &BoolValue{Val: vv.Ctor == "Err"}, nil
	})
	reg("std.result.unwrap_or", func(a []Value) (Value, error) {
		if len(a) != 2 {
			return nil, rtErrf("unwrap_or: expected 2 arguments")
		}
		vv, ok := a[0].(*VariantValue)
		if !ok {
			return nil, rtErrf("unwrap_or: expected a Result")
		}
		if vv.Ctor == "Ok" {
			return vv.Fields[0], nil
		}
		return a[1], nil
	})

	// std.map: an association list keyed by equality, exposed as a list of
	// (key, value) tuples since Kira has no dedicated runtime map value.
	reg("std.map.get", func(a []Value) (Value, error) {
		if len(a) != 2 {
			return nil, rtErrf("get: expected 2 arguments")
		}
		elems, err := toSlice(a[0])
		if err != nil {
			return nil, err
		}
		for _, e := range elems {
			pair, ok := e.(*TupleValue)
			if !ok || len(pair.Elems) != 2 {
				continue
			}
			if valuesEqual(pair.Elems[0], a[1]) {
				return someV(pair.Elems[1]), nil
			}
		}
		return noneV(), nil
	})
	reg("std.map.insert", func(a []Value) (Value, error) {
		if len(a) != 3 {
			return nil, rtErrf("insert: expected 3 arguments")
		}
		elems, err := toSlice(a[0])
		if err != nil {
			return nil, err
		}
		out := make([]Value, 0, len(elems)+1)
		replaced := false
		for _, e := range elems {
			pair, ok := e.(*TupleValue)
			if ok && len(pair.Elems) == 2 && valuesEqual(pair.Elems[0], a[1]) {
				out = append(out, &TupleValue{Elems: []Value{a[1], a[2]}})
				replaced = true
				continue
			}
			out = append(out, e)
		}
		if !replaced {
			out = append(out, &TupleValue{Elems: []Value{a[1], a[2]}})
		}
		return sliceToList(out), nil
	})

	stdEnv := NewEnv()
	for path, env := range submodules {
		i := strings.LastIndex(path, ".")
		if i < 0 || path[:i] != "std" {
			continue
		}
		stdEnv.Define(path[i+1:], &ModuleValue{Path: path, Env: env}, false)
	}
	globals.Define("std", &ModuleValue{Path: "std", Env: stdEnv}, false)
}

func arg1String(a []Value, name string) (string, error) {
	if len(a) != 1 {
		return "", rtErrf("%s: expected 1 argument", name)
	}
	sv, ok := a[0].(*StringValue)
	if !ok {
		return "", rtErrf("%s: expected a string", name)
	}
	return sv.Val, nil
}

func arg2String(a []Value, name string) (string, string, error) {
	if len(a) != 2 {
		return "", "", rtErrf("%s: expected 2 arguments", name)
	}
	sv, ok1 := a[0].(*StringValue)
	pv, ok2 := a[1].(*StringValue)
	if !ok1 || !ok2 {
		return "", "", rtErrf("%s: expected two strings", name)
	}
	return sv.Val, pv.Val, nil
}

func arg1Char(a []Value, name string) (rune, error) {
	if len(a) != 1 {
		return 0, rtErrf("%s: expected 1 argument", name)
	}
	cv, ok := a[0].(*CharValue)
	if !ok {
		return 0, rtErrf("%s: expected a char", name)
	}
	return cv.Val, nil
}

func arg1List(a []Value, name string) ([]Value, error) {
	if len(a) != 1 {
		return nil, rtErrf("%s: expected 1 argument", name)
	}
	return toSlice(a[0])
}

func arg1Variant(a []Value, name string) (*VariantValue, error) {
	if len(a) != 1 {
		return nil, rtErrf("%s: expected 1 argument", name)
	}
	vv, ok := a[0].(*VariantValue)
	if !ok {
		return nil, rtErrf("%s: expected a variant value", name)
	}
	return vv, nil
}

func someV(v Value) Value { return &VariantValue{TypeName: "Option", Ctor: "Some", Fields: []Value{v}} }
func noneV() Value        { return &VariantValue{TypeName: "Option", Ctor: "None"} }
func okV(v Value) Value   { return &VariantValue{TypeName: "Result", Ctor: "Ok", Fields: []Value{v}} }
func errV(v Value) Value  { return &VariantValue{TypeName: "Result", Ctor: "Err", Fields: []Value{v}} }
