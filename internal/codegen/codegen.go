// Package codegen defines the handoff point between the core compiler
// pipeline and an emission backend: once the orchestrator's per-module
// object cache reports a miss, it generates IR for the affected functions
// and hands each one's mir.Body to a Target.
//
// The backends the original implementation targets for real
// (llvm_codegen.rs, wasm_component.rs, the vais-codegen-js crate) are
// explicitly external collaborators; the three subpackages here
// (llvmtext, wasmtext, jstext) are textual stand-ins that exercise this
// interface and the orchestrator's cache path end to end without a real
// LLVM/WASM/JS toolchain dependency in the pack to ground one on.
package codegen

import "github.com/vaislang/vais/internal/mir"

// Target emits one function's MIR body as backend-specific text. A Target
// is stateless across calls: EmitFunction must not depend on any prior
// call's output, since the orchestrator may invoke it for an arbitrary
// subset of a project's functions on any given build (the rest served
// from the object cache).
type Target interface {
	// Name identifies the target. The orchestrator mixes it into each
	// object's content hash, so objects emitted for different targets
	// never share a cache path.
	Name() string

	// EmitFunction renders body's instructions in this target's textual
	// form. body has already passed borrow checking by the time any
	// Target sees it.
	EmitFunction(body *mir.Body) (string, error)
}
