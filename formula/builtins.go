package formula

import (
	"math"
	"sort"
	"unicode/utf8"
)

type builtin struct {
	params []Kind
	call   func(args []Value, r Resolver) Result
}

var builtins = map[string]builtin{
	"pow": {
		params: []Kind{KindDouble, KindDouble},
		call: func(args []Value, _ Resolver) Result {
			return Success(NewDouble(math.Pow(args[0].Double(), args[1].Double())))
		},
	},
	"abs": {
		params: []Kind{KindDouble},
		call: func(args []Value, _ Resolver) Result {
			return Success(NewDouble(math.Abs(args[0].Double())))
		},
	},
	"length": {
		params: []Kind{KindString},
		call: func(args []Value, _ Resolver) Result {
			return Success(NewDouble(float64(utf8.RuneCountInString(args[0].Str()))))
		},
	},
	"concat": {
		params: []Kind{KindString, KindString},
		call: func(args []Value, _ Resolver) Result {
			return Success(NewString(args[0].Str() + args[1].Str()))
		},
	},
	"sum": {
		params: []Kind{KindRange},
		call: func(args []Value, r Resolver) Result {
			return foldRange(args[0].Range(), r, 0, func(acc, v float64) float64 { return acc + v })
		},
	},
	"min": {
		params: []Kind{KindRange},
		call: func(args []Value, r Resolver) Result {
			return foldRange(args[0].Range(), r, math.Inf(1), math.Min)
		},
	},
	"max": {
		params: []Kind{KindRange},
		call: func(args []Value, r Resolver) Result {
			return foldRange(args[0].Range(), r, math.Inf(-1), math.Max)
		},
	},
	"average": {
		params: []Kind{KindRange},
		call: func(args []Value, r Resolver) Result {
			rng := args[0].Range()
			n := float64(rng.Size())
			return foldRange(rng, r, 0, func(acc, v float64) float64 { return acc + v }).
				Map(func(total Value) Value { return NewDouble(total.Double() / n) })
		},
	},
	"count": {
		params: []Kind{KindRange},
		call: func(args []Value, r Resolver) Result {
			n := 0
			for cell := range args[0].Range().All() {
				if res := r.ResultAt(cell); res.IsSuccess() && res.Value().Kind() == KindDouble {
					n++
				}
			}
			return Success(NewDouble(float64(n)))
		},
	},
}

func lookupBuiltin(name string) (builtin, bool) {
	fn, ok := builtins[name]
	return fn, ok
}

// BuiltinNames lists the callable function names in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// foldRange reduces the DOUBLE results of a range in row-major order. The
// first cell that fails or is not a DOUBLE aborts the fold with its message.
func foldRange(rng RangeValue, r Resolver, initial float64, step func(acc, v float64) float64) Result {
	acc := initial
	for cell := range rng.All() {
		res := r.ResultAt(cell).Typecheck(KindDouble)
		if !res.IsSuccess() {
			return res
		}
		acc = step(acc, res.Value().Double())
	}
	return Success(NewDouble(acc))
}
