package types

import (
	"strconv"
	"strings"
)

// Label returns a user-friendly label for a TypeID.
func Label(typesIn *Interner, id TypeID) string {
	return labelDepth(typesIn, id, 0)
}

func labelDepth(typesIn *Interner, id TypeID, depth int) string {
	if id == NoTypeID {
		return "?"
	}
	if depth > 8 {
		return "..."
	}
	if typesIn == nil {
		return "?"
	}
	tt, ok := typesIn.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindUnit:
		return "()"
	case KindNever:
		return "!"
	case KindBool:
		return "bool"
	case KindStr:
		return "str"
	case KindInt:
		return formatNumeric("i", tt.Width)
	case KindUint:
		return formatNumeric("u", tt.Width)
	case KindFloat:
		return formatNumeric("f", tt.Width)
	case KindArray:
		elem := labelDepth(typesIn, tt.Elem, depth+1)
		if tt.Payload != 0 {
			return "[" + elem + "; _]"
		}
		return "[" + elem + "; " + strconv.FormatUint(tt.Count, 10) + "]"
	case KindSlice:
		return "[" + labelDepth(typesIn, tt.Elem, depth+1) + "]"
	case KindPointer:
		if tt.Mutable {
			return "*mut " + labelDepth(typesIn, tt.Elem, depth+1)
		}
		return "*const " + labelDepth(typesIn, tt.Elem, depth+1)
	case KindReference:
		if tt.Mutable {
			return "&mut " + labelDepth(typesIn, tt.Elem, depth+1)
		}
		return "&" + labelDepth(typesIn, tt.Elem, depth+1)
	case KindAdt:
		info := typesIn.adtInfo(id)
		if len(info.Args) == 0 {
			return info.Name
		}
		return info.Name + "<" + labelList(typesIn, info.Args, depth) + ">"
	case KindParam:
		info, _ := typesIn.ParamInfo(id)
		return info.Name
	case KindProjection:
		p, _ := typesIn.ProjectionInfo(id)
		trait := p.TraitName
		if len(p.TraitArgs) > 0 {
			trait += "<" + labelList(typesIn, p.TraitArgs, depth) + ">"
		}
		return "<" + labelDepth(typesIn, p.Base, depth+1) + " as " + trait + ">::" + p.Name
	}
	return tt.Kind.String()
}

func labelList(typesIn *Interner, ids []TypeID, depth int) string {
	parts := make([]string, len(ids))
	for i, a := range ids {
		parts[i] = labelDepth(typesIn, a, depth+1)
	}
	return strings.Join(parts, ", ")
}

func formatNumeric(prefix string, w Width) string {
	if w == WidthSize {
		if prefix == "i" {
			return "isize"
		}
		return "usize"
	}
	return prefix + strconv.Itoa(int(w))
}
