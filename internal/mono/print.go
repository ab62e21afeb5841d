package mono

import (
	"fmt"
	"io"
	"strings"

	"rsfront/internal/types"
)

// Dump writes the instantiation cache in creation order.
func (m *Instantiator) Dump(w io.Writer) error {
	for _, inst := range m.order {
		args := make([]string, len(inst.TypeArgs))
		for i, a := range inst.TypeArgs {
			args[i] = types.Label(m.Types, a)
		}
		name := m.Symbols.Path(inst.Item)
		if len(args) > 0 {
			name += "::<" + strings.Join(args, ", ") + ">"
		}
		if _, err := fmt.Fprintf(w, "%-40s depth=%d uses=%d\n", name, inst.Depth, len(inst.UseSites)); err != nil {
			return err
		}
	}
	return nil
}
