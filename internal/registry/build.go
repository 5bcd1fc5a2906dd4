package registry

import (
	"fmt"

	"github.com/specialistvlad/dispatchgo/dispatch"
	"github.com/specialistvlad/dispatchgo/internal/config"
)

// Build turns a receiver definition into a dispatch receiver named after the
// definition, with the declared signature.
func (r *Registry) Build(def *config.ReceiverDefinition, env Env) (*dispatch.Receiver, error) {
	kind, ok := r.kinds[def.Kind]
	if !ok {
		return nil, fmt.Errorf("%s: receiver %q: unknown kind %q%s", def.Source, def.Name, def.Kind, config.Suggest(def.Kind, r.Kinds()))
	}
	fn, err := kind.New(def, env)
	if err != nil {
		return nil, fmt.Errorf("%s: receiver %q: %w", def.Source, def.Name, err)
	}
	return dispatch.Func(fn, dispatch.Name(def.Name), dispatch.WithSignature(Signature(def))), nil
}

// Signature returns the dispatch signature a definition declares.
func Signature(def *config.ReceiverDefinition) dispatch.Signature {
	sig := dispatch.Signature{Variadic: def.Variadic, Keywords: def.Keywords}
	for _, name := range def.Params {
		sig.Params = append(sig.Params, dispatch.Param{Name: name})
	}
	for _, name := range def.Optional {
		sig.Params = append(sig.Params, dispatch.Param{Name: name, Optional: true})
	}
	return sig
}

// StringSetting returns the string setting key of def, or fallback when it is
// not set.
func StringSetting(def *config.ReceiverDefinition, key, fallback string) (string, error) {
	v, ok := def.Settings[key]
	if !ok || v == nil {
		return fallback, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("setting %q must be a string, got %T", key, v)
	}
	return s, nil
}
