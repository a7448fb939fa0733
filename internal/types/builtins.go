package types

// Built-in function schemes are registered with reserved Var ids starting
// at builtinVarBase so they never collide with a Var a TypeEnv allocates
// during checking (which starts at 1 and counts up, but a whole-program
// check can run long; reserving a high, sparse block keeps the two ranges
// visibly separate for anyone reading a dump of unresolved Vars).
const builtinVarBase = 1000

// Builtins is the fixed table of free functions available without an
// explicit `use`, keyed by name.
var Builtins map[string]*TypeScheme

func init() {
	Builtins = make(map[string]*TypeScheme)
	reg := func(name string, bound []int, body Type) {
		Builtins[name] = &TypeScheme{Bound: bound, Body: body}
	}

	t0, t1 := Var(builtinVarBase+1), Var(builtinVarBase+2)

	reg("print", nil, Func([]Type{AnyType}, Void))
	reg("println", nil, Func([]Type{AnyType}, Void))
	reg("len", []int{builtinVarBase + 1}, Func([]Type{Array(t0)}, Int))
	reg("panic", nil, Func([]Type{Str}, Void))
	reg("assert", nil, Func([]Type{Bool}, Void))

	reg("push", []int{builtinVarBase + 1}, Func([]Type{Array(t0), t0}, Array(t0)))
	reg("pop", []int{builtinVarBase + 1}, Func([]Type{Array(t0)}, Optional(t0)))
	reg("contains", []int{builtinVarBase + 1}, Func([]Type{Array(t0), t0}, Bool))
	reg("map_get", []int{builtinVarBase + 1, builtinVarBase + 2}, Func([]Type{MapT(t0, t1), t0}, Optional(t1)))
	reg("map_set", []int{builtinVarBase + 1, builtinVarBase + 2}, Func([]Type{MapT(t0, t1), t0, t1}, MapT(t0, t1)))

	reg("to_string", []int{builtinVarBase + 1}, Func([]Type{t0}, Str))
	reg("parse_int", nil, Func([]Type{Str}, Result(Int)))
	reg("parse_float", nil, Func([]Type{Str}, Result(F64)))
}

// IsBuiltin reports whether name names a registered built-in function.
func IsBuiltin(name string) bool {
	_, ok := Builtins[name]
	return ok
}
