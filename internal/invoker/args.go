// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package invoker

import (
	"fmt"
	"strconv"
)

// NormalizeArgs flattens extra arguments into one ordered token list.
// Each value is either a scalar or a sequence ([]string or []any, nested sequences included),
// so Exec(ctx, "ls", nil, "-l", "-a") and Exec(ctx, "ls", nil, []string{"-l", "-a"}) are the same call.
// Nil values are rejected.
func NormalizeArgs(values ...any) ([]string, error) {
	tokens := make([]string, 0, len(values))

	for i, v := range values {
		var err error

		tokens, err = appendToken(tokens, v)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
	}

	return tokens, nil
}

func appendToken(tokens []string, v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrInvalidArgument)
	case string:
		return append(tokens, t), nil
	case []string:
		return append(tokens, t...), nil
	case []any:
		for _, e := range t {
			var err error

			tokens, err = appendToken(tokens, e)
			if err != nil {
				return nil, err
			}
		}

		return tokens, nil
	case bool:
		return append(tokens, strconv.FormatBool(t)), nil
	case int:
		return append(tokens, strconv.Itoa(t)), nil
	case int64:
		return append(tokens, strconv.FormatInt(t, 10)), nil
	case float64:
		return append(tokens, strconv.FormatFloat(t, 'f', -1, 64)), nil
	case fmt.Stringer:
		return append(tokens, t.String()), nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidArgument, v)
	}
}
