package layout

import "fmt"

// Target describes the pointer properties of the code generation target.
type Target struct {
	Triple   string // e.g. "x86_64-linux-gnu"
	PtrSize  int    // bytes
	PtrAlign int    // bytes
}

func X86_64LinuxGNU() Target {
	return Target{
		Triple:   "x86_64-linux-gnu",
		PtrSize:  8,
		PtrAlign: 8,
	}
}

// TargetForPointerSize returns a generic target with the given pointer width.
func TargetForPointerSize(bytes int) (Target, error) {
	switch bytes {
	case 8:
		return X86_64LinuxGNU(), nil
	case 4:
		return Target{Triple: "i686-linux-gnu", PtrSize: 4, PtrAlign: 4}, nil
	case 2:
		return Target{Triple: "msp430-none-elf", PtrSize: 2, PtrAlign: 2}, nil
	}
	return Target{}, fmt.Errorf("unsupported pointer size %d", bytes)
}
