package dispatch

import (
	"fmt"
	"math"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Reflect returns a receiver for an arbitrary Go function. names gives the
// parameter name of each fixed argument of fn, in order; a variadic fn
// receives surplus positional arguments in its final parameter.
//
// fn may return nothing, a value, an error, or a value and an error. Bound
// arguments are assigned to the parameter types directly. Numeric values are
// converted between numeric kinds only when the value survives; a truncated
// or overflowing number is a *BindError. Reflect panics if fn is not a
// function or names does not match its arity.
func Reflect(fn any, names ...string) *Receiver {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		panic(fmt.Sprintf("dispatch: Reflect requires a function, got %T", fn))
	}
	t := v.Type()
	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
	}
	if len(names) != fixed {
		panic(fmt.Sprintf("dispatch: %s takes %d fixed parameters but %d names were given", t, fixed, len(names)))
	}
	switch {
	case t.NumOut() > 2:
		panic(fmt.Sprintf("dispatch: %s returns more than two values", t))
	case t.NumOut() == 2 && t.Out(1) != errorType:
		panic(fmt.Sprintf("dispatch: second result of %s must be error", t))
	}

	name := funcName(v.Pointer())
	opts := []ReceiverOption{Params(names...), Name(name)}
	if t.IsVariadic() {
		opts = append(opts, Variadic())
	}

	return Func(func(call *Call) (any, error) {
		in := make([]reflect.Value, 0, t.NumIn()+len(call.Args))
		for i, n := range names {
			arg, err := convertArg(call.Named[n], t.In(i))
			if err != nil {
				return nil, &BindError{Receiver: name, Reason: fmt.Sprintf("argument %q: %v", n, err)}
			}
			in = append(in, arg)
		}
		if t.IsVariadic() {
			elem := t.In(fixed).Elem()
			for i, a := range call.Args {
				arg, err := convertArg(a, elem)
				if err != nil {
					return nil, &BindError{Receiver: name, Reason: fmt.Sprintf("variadic argument %d: %v", i, err)}
				}
				in = append(in, arg)
			}
		}
		return splitResults(v.Call(in))
	}, opts...)
}

func convertArg(val any, typ reflect.Type) (reflect.Value, error) {
	if val == nil {
		switch typ.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(typ), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %s", typ)
	}
	rv := reflect.ValueOf(val)
	if rv.Type().AssignableTo(typ) {
		return rv, nil
	}
	if isNumeric(rv.Kind()) && isNumeric(typ.Kind()) {
		return convertNumber(rv, typ)
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", val, typ)
}

// convertNumber converts between numeric kinds, refusing any conversion that
// would change the value other than by float rounding.
func convertNumber(rv reflect.Value, typ reflect.Type) (reflect.Value, error) {
	out := reflect.New(typ).Elem()
	fail := func(reason string) (reflect.Value, error) {
		return reflect.Value{}, fmt.Errorf("cannot use %v as %s: %s", rv.Interface(), typ, reason)
	}

	switch {
	case isInt(typ.Kind()):
		var i int64
		switch {
		case isInt(rv.Kind()):
			i = rv.Int()
		case isUint(rv.Kind()):
			u := rv.Uint()
			if u > math.MaxInt64 {
				return fail("out of range")
			}
			i = int64(u)
		default:
			f := rv.Float()
			if math.Trunc(f) != f {
				return fail("not a whole number")
			}
			if f < math.MinInt64 || f >= math.MaxInt64 {
				return fail("out of range")
			}
			i = int64(f)
		}
		if out.OverflowInt(i) {
			return fail("out of range")
		}
		out.SetInt(i)

	case isUint(typ.Kind()):
		var u uint64
		switch {
		case isInt(rv.Kind()):
			i := rv.Int()
			if i < 0 {
				return fail("out of range")
			}
			u = uint64(i)
		case isUint(rv.Kind()):
			u = rv.Uint()
		default:
			f := rv.Float()
			if math.Trunc(f) != f {
				return fail("not a whole number")
			}
			if f < 0 || f >= math.MaxUint64 {
				return fail("out of range")
			}
			u = uint64(f)
		}
		if out.OverflowUint(u) {
			return fail("out of range")
		}
		out.SetUint(u)

	default:
		f := rv.Convert(reflect.TypeFor[float64]()).Float()
		if out.OverflowFloat(f) {
			return fail("out of range")
		}
		out.SetFloat(f)
	}
	return out, nil
}

func isNumeric(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || k == reflect.Float32 || k == reflect.Float64
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func splitResults(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type() == errorType {
			err, _ := out[0].Interface().(error)
			return nil, err
		}
		return out[0].Interface(), nil
	default:
		err, _ := out[1].Interface().(error)
		return out[0].Interface(), err
	}
}
