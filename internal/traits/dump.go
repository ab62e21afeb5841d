package traits

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"rsfront/internal/types"
)

// Dump writes the impl table in registration order.
func (r *Resolver) Dump(w io.Writer) error {
	for _, im := range r.impls {
		if _, err := io.WriteString(w, r.header(im)+"\n"); err != nil {
			return err
		}
		names := make([]string, 0, len(im.Assoc))
		for name := range im.Assoc {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			if _, err := fmt.Fprintf(w, "    type %s = %s\n", name, r.label(im.Assoc[name])); err != nil {
				return err
			}
		}
		names = names[:0]
		for name := range im.Methods {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			if _, err := fmt.Fprintf(w, "    fn %s\n", name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Resolver) header(im *Impl) string {
	var sb strings.Builder
	sb.WriteString("impl")
	if len(im.Params) > 0 {
		sb.WriteString("<")
		for i, p := range im.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(r.label(p))
		}
		sb.WriteString(">")
	}
	sb.WriteString(" ")
	if !im.Inherent() {
		sb.WriteString(r.name(im.Trait))
		if len(im.TraitArgs) > 0 {
			sb.WriteString("<" + labels(r.Types, im.TraitArgs) + ">")
		}
		sb.WriteString(" for ")
	}
	sb.WriteString(r.label(im.Self))
	for i, b := range im.Bounds {
		if i == 0 {
			sb.WriteString(" where ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(r.label(b.Type) + ": " + r.name(b.Trait))
		if len(b.Args) > 0 {
			sb.WriteString("<" + labels(r.Types, b.Args) + ">")
		}
	}
	if im.Lang != "" {
		sb.WriteString(" #[lang = \"" + im.Lang + "\"]")
	}
	return sb.String()
}

func labels(in *types.Interner, ids []types.TypeID) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = types.Label(in, id)
	}
	return strings.Join(out, ", ")
}
