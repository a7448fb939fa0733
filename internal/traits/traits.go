// Package traits implements coherence checking for trait/impl blocks:
// overlap detection between positive and negative impls, specialization
// resolution among overlapping candidates, and negative-impl semantics.
package traits

import (
	"fmt"

	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/span"
	"github.com/vaislang/vais/internal/types"
)

// TargetKind classifies what an impl's `for` clause covers.
type TargetKind int

const (
	// Concrete targets a single named type, e.g. `impl Show for Point`.
	Concrete TargetKind = iota
	// GenericBounded targets a type parameter constrained by a bound list,
	// e.g. `impl<T: Show> Show for Box<T>`.
	GenericBounded
	// GenericUnbounded targets an unconstrained type parameter.
	GenericUnbounded
	// Blanket targets every type, e.g. `impl<T> Debug for T`.
	Blanket
)

// specificity orders targets most-specific first: Concrete > GenericBounded
// > GenericUnbounded == Blanket, matching the resolver's tie-break rule.
func (k TargetKind) specificity() int {
	switch k {
	case Concrete:
		return 3
	case GenericBounded:
		return 2
	default:
		return 1
	}
}

// Target describes the concrete or generic type an impl covers.
type Target struct {
	Kind TargetKind
	// Name is the concrete type name when Kind == Concrete, or the
	// param name otherwise (informational only).
	Name string
	// Type is the fully resolved concrete type, populated when Kind ==
	// Concrete; used by specialization resolution to match a call site.
	Type types.Type
}

// ImplInfo is one `impl [!]Trait for Target { methods }` block.
type ImplInfo struct {
	TraitName  string // "" for an inherent impl
	Target     Target
	IsNegative bool
	Methods    map[string]*types.TypeScheme
	Span       span.Span
}

// overlaps reports whether a and b's targets could both describe the same
// concrete type, per the spec's fixed overlap table.
func overlaps(a, b Target) bool {
	if a.Kind == Concrete && b.Kind == Concrete {
		return a.Name == b.Name
	}
	if a.Kind == Concrete || b.Kind == Concrete {
		return true // Concrete always overlaps Generic and Blanket
	}
	// Both non-concrete: Generic overlaps Generic, Blanket overlaps
	// Blanket, and Generic/Blanket always overlap each other.
	return true
}

// isSpecialization reports whether more is a strict specialization of
// less — i.e. more's target is strictly more specific and could not also
// be described by less failing to match any type less matches.
func isSpecialization(less, more ImplInfo) bool {
	return more.Target.Kind.specificity() > less.Target.Kind.specificity()
}

// ImplRegistry holds every impl registered for a trait (or for inherent
// methods when TraitName == ""), keyed by trait name, plus a denormalized
// list of negative impls consulted first when answering "does T implement
// Trait?".
type ImplRegistry struct {
	byTrait  map[string][]ImplInfo
	negative map[string][]ImplInfo
}

func NewImplRegistry() *ImplRegistry {
	return &ImplRegistry{
		byTrait:  make(map[string][]ImplInfo),
		negative: make(map[string][]ImplInfo),
	}
}

// Register adds impl to the registry. It fails atomically — on a coherence
// error the registry is left exactly as it was before the call — unless
// the overlap is strictly a specialization of an existing positive impl (or
// vice versa), or the new impl is negative and overlaps only positively
// registered impls (handled as NegativeImplConflct, not silently merged).
func (r *ImplRegistry) Register(impl ImplInfo) *diag.Diagnostic {
	existing := r.byTrait[impl.TraitName]

	for _, other := range existing {
		if !overlaps(impl.Target, other.Target) {
			continue
		}
		// A negative impl strictly more specific than an overlapping
		// positive one (the textbook "carve a concrete type out of a
		// blanket impl" pattern) is the intended use of negative impls
		// and is not a conflict; the same holds in reverse. Conflict
		// only when neither side specializes the other — a genuine
		// ambiguity about which one governs.
		if impl.IsNegative != other.IsNegative {
			if isSpecialization(other, impl) || isSpecialization(impl, other) {
				continue
			}
			return &diag.Diagnostic{
				Code:     diag.CodeNegativeImplConflct,
				Phase:    diag.PhaseCoherence,
				Severity: diag.SeverityError,
				Message:  fmt.Sprintf("conflicting positive/negative impls of %q for overlapping targets", impl.TraitName),
				Span:     impl.Span,
				Related:  &other.Span,
			}
		}
		if !impl.IsNegative && !isSpecialization(other, impl) && !isSpecialization(impl, other) {
			return &diag.Diagnostic{
				Code:     diag.CodeConflictingImpls,
				Phase:    diag.PhaseCoherence,
				Severity: diag.SeverityError,
				Message:  fmt.Sprintf("conflicting impls of %q for overlapping targets", impl.TraitName),
				Span:     impl.Span,
				Related:  &other.Span,
			}
		}
	}

	r.byTrait[impl.TraitName] = append(existing, impl)
	if impl.IsNegative {
		r.negative[impl.TraitName] = append(r.negative[impl.TraitName], impl)
	}
	return nil
}
