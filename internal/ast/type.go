package ast

// PrimitiveType names a built-in scalar: sized/unsized integers (i8..i64,
// u8..u64, int, uint), floats (f32, f64), bool, string, bytes, or void.
type PrimitiveType struct {
	Base
	Name string
}

func (*PrimitiveType) typeNode() {}

// ArrayType is `[T]`.
type ArrayType struct {
	Base
	Elem Type
}

func (*ArrayType) typeNode() {}

// OptionalType is `T?`.
type OptionalType struct {
	Base
	Inner Type
}

func (*OptionalType) typeNode() {}

// UnionTypeVariant is one tagged case of a union type.
type UnionTypeVariant struct {
	Tag    string
	Fields []Type
}

// UnionType is a tagged sum over its Variants.
type UnionType struct {
	Base
	Variants []UnionTypeVariant
}

func (*UnionType) typeNode() {}

// RecordFieldType is one ordered named field of a RecordType.
type RecordFieldType struct {
	Name string
	Type Type
}

// RecordType is a struct type: an ordered set of named fields.
type RecordType struct {
	Base
	Fields []RecordFieldType
}

func (*RecordType) typeNode() {}

// NamedType references a declared type by name, with optional generic
// arguments (`Map<K, V>`, `MyStruct`).
type NamedType struct {
	Base
	Name string
	Args []Type
}

func (*NamedType) typeNode() {}

// TupleType is `(T1, T2, ...)`.
type TupleType struct {
	Base
	Elements []Type
}

func (*TupleType) typeNode() {}

// FuncType is `(T1, T2) -> R`.
type FuncType struct {
	Base
	Params []Type
	Return Type
}

func (*FuncType) typeNode() {}

// InferType is the `_` placeholder asking the type checker to fill it in.
type InferType struct{ Base }

func (*InferType) typeNode() {}
