package traits

import (
	"rsfront/internal/symbols"
	"rsfront/internal/types"
)

// Method is the result of method lookup: the impl member selected and how
// the receiver was adjusted to reach the impl's Self type.
type Method struct {
	Match
	Item   symbols.ItemID
	Self   types.TypeID // receiver type after adjustment
	Derefs int          // references peeled off the receiver
	Unsize bool         // array receiver viewed as a slice
}

// Step is one receiver type visited by autoderef.
type Step struct {
	Type   types.TypeID
	Derefs int
	Unsize bool
}

// Autoderef lists the receiver types probed for recv: recv itself, then
// each referent through references, then the slice view of a trailing
// array. Raw pointers are not dereferenced.
func (r *Resolver) Autoderef(recv types.TypeID) []Step {
	steps := []Step{{Type: recv}}
	cur := recv
	for n := 1; n <= 16; n++ {
		tt, ok := r.Types.Lookup(cur)
		if !ok || tt.Kind != types.KindReference {
			break
		}
		cur = tt.Elem
		steps = append(steps, Step{Type: cur, Derefs: n})
	}
	if tt, ok := r.Types.Lookup(cur); ok && tt.Kind == types.KindArray {
		last := steps[len(steps)-1]
		steps = append(steps, Step{Type: r.Types.Slice(tt.Elem), Derefs: last.Derefs, Unsize: true})
	}
	return steps
}

// LookupMethod selects the method name for a receiver of type recv.
// At every autoderef step inherent impls are preferred over trait impls;
// two candidates of the same rank are ambiguous. Impl parameters that only
// appear in the method signature remain unbound in the returned Match.
func (r *Resolver) LookupMethod(recv types.TypeID, name string) (Method, error) {
	for _, step := range r.Autoderef(recv) {
		for _, inherent := range []bool{true, false} {
			var found []Method
			for _, im := range r.impls {
				if im.Inherent() != inherent {
					continue
				}
				item, ok := im.Methods[name]
				if !ok {
					continue
				}
				s := make(types.Subst, len(im.Params))
				if !r.Types.Match(im.Self, step.Type, s) {
					continue
				}
				m := Match{Impl: im, Subst: s}
				if err := r.checkBounds(m, 0); err != nil {
					continue
				}
				found = append(found, Method{Match: m, Item: item, Self: step.Type, Derefs: step.Derefs, Unsize: step.Unsize})
			}
			switch len(found) {
			case 0:
				continue
			case 1:
				return found[0], nil
			}
			return Method{}, &Error{Kind: ErrAmbiguous, Name: name, Self: r.label(step.Type), Count: len(found)}
		}
	}
	return Method{}, &Error{Kind: ErrNoMethod, Name: name, Self: r.label(recv)}
}
