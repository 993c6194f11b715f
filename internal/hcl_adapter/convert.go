package hcl_adapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// configToStrings evaluates a node's config expression and flattens it into
// the string map carried on node.Node. Strings are taken as-is, numbers and
// bools are rendered in their canonical text form, nulls are dropped.
func configToStrings(ctx context.Context, expr hcl.Expression) (map[string]string, error) {
	out := map[string]string{}
	if !isExprDefined(ctx, expr, "config") {
		return out, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return out, nil
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("config must be an object, got %s", ty.FriendlyName())
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("config must not reference unknown values")
	}

	it := val.ElementIterator()
	for it.Next() {
		key, elem := it.Element()
		name := key.AsString()
		s, ok, err := scalarToString(elem)
		if err != nil {
			return nil, fmt.Errorf("config.%s: %w", name, err)
		}
		if ok {
			out[name] = s
		}
	}
	return out, nil
}

func scalarToString(v cty.Value) (string, bool, error) {
	if v.IsNull() {
		return "", false, nil
	}
	switch ty := v.Type(); ty {
	case cty.String:
		return v.AsString(), true, nil
	case cty.Number:
		return v.AsBigFloat().Text('f', -1), true, nil
	case cty.Bool:
		if v.True() {
			return "true", true, nil
		}
		return "false", true, nil
	default:
		return "", false, fmt.Errorf("must be a string, number or bool, got %s", ty.FriendlyName())
	}
}

// sortedKeys is used for deterministic diagnostics.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
