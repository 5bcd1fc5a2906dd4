package hcl

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/dispatchgo/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// newEvalContext returns the context every playbook expression is evaluated in.
func newEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"all":       cty.StringVal(config.AllSignal),
			"any":       cty.StringVal(config.AnySender),
			"anonymous": cty.StringVal(config.AnonymousSender),
		},
		Functions: map[string]function.Function{
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
			"format": stdlib.FormatFunc,
		},
	}
}

// exprValue evaluates expr and converts the result to a Go value. An omitted
// optional attribute evaluates to nil.
func exprValue(expr hcl.Expression, evalCtx *hcl.EvalContext) (any, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	return ctyValueToInterface(val)
}

func exprList(expr hcl.Expression, evalCtx *hcl.EvalContext, attr string) ([]any, error) {
	v, err := exprValue(expr, evalCtx)
	if err != nil || v == nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a list, got %T", attr, v)
	}
	return list, nil
}

func exprMap(expr hcl.Expression, evalCtx *hcl.EvalContext, attr string) (map[string]any, error) {
	v, err := exprValue(expr, evalCtx)
	if err != nil || v == nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an object, got %T", attr, v)
	}
	return m, nil
}

// ctyValueToInterface converts a cty.Value to a Go value. Whole numbers that
// fit an int become int, other numbers float64.
func ctyValueToInterface(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			return numberToInterface(val.AsBigFloat()), nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", ty.FriendlyName())
		}
	}
	if ty.IsObjectType() || ty.IsMapType() {
		out := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			converted, err := ctyValueToInterface(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = converted
		}
		return out, nil
	}
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			converted, err := ctyValueToInterface(v)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
}

func numberToInterface(f *big.Float) any {
	if f.IsInt() {
		if i, acc := f.Int64(); acc == big.Exact && int64(int(i)) == i {
			return int(i)
		}
	}
	v, _ := f.Float64()
	return v
}
