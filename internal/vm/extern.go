package vm

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"rsfront/internal/hir"
	"rsfront/internal/types"
)

// callExtern runs the host implementation of a foreign function.
func (vm *VM) callExtern(ext *hir.Extern, argExprs []*hir.Expr, args [][]byte, result types.TypeID) []byte {
	var n int
	switch ext.Name {
	case "printf":
		if len(args) == 0 {
			vm.panic(PanicInvalidFormat, "printf called without a format")
		}
		n = vm.printf(args[0], argExprs[1:], args[1:])
	case "puts":
		s := vm.cstring(getUint(args[0]))
		w, _ := vm.RT.Stdout().Write(append(s, '\n'))
		n = w
	case "putchar":
		w, _ := vm.RT.Stdout().Write([]byte{byte(getUint(args[0]))})
		n = w
	case "abort":
		vm.panic(PanicUserAbort, "process aborted")
	case "exit":
		panic(exitSignal{code: int(signExtend(getUint(args[0]), len(args[0])))})
	default:
		vm.raise(vm.eb.unsupportedCall(ext.Name))
	}
	if !vm.Types.IsInteger(result) {
		return nil
	}
	out := make([]byte, vm.size(result))
	putUint(out, uint64(n))
	return out
}

func (vm *VM) cstring(addr uint64) []byte {
	s, err := vm.mem.cstring(addr)
	if err != nil {
		vm.panic(PanicInvalidAddress, err.Error())
	}
	return s
}

// printf implements the C conversions %d %i %u %x %X %o %c %s %p %f %e %g
// with flags, width, precision and length modifiers. Without a length
// modifier integer arguments are read as 32-bit values.
func (vm *VM) printf(format []byte, argExprs []*hir.Expr, args [][]byte) int {
	var fmtBytes []byte
	if len(format) > vm.ptrSize {
		fmtBytes = vm.load(getUint(format[:vm.ptrSize]), int(getUint(format[vm.ptrSize:])))
		if i := bytes.IndexByte(fmtBytes, 0); i >= 0 {
			fmtBytes = fmtBytes[:i]
		}
	} else {
		fmtBytes = vm.cstring(getUint(format))
	}

	var out bytes.Buffer
	next := 0
	arg := func() ([]byte, *hir.Expr) {
		if next >= len(args) {
			vm.panic(PanicInvalidFormat, fmt.Sprintf("printf format %q needs more arguments", fmtBytes))
		}
		next++
		return args[next-1], argExprs[next-1]
	}

	for i := 0; i < len(fmtBytes); i++ {
		c := fmtBytes[i]
		if c != '%' {
			out.WriteByte(c)
			continue
		}
		spec, end := parseConversion(fmtBytes, i+1)
		if end < 0 {
			vm.panic(PanicInvalidFormat, fmt.Sprintf("malformed printf format %q", fmtBytes))
		}
		i = end
		if spec.verb == '%' {
			out.WriteByte('%')
			continue
		}
		if spec.width == -1 {
			w, _ := arg()
			spec.width = int(signExtend(getUint(w), len(w)))
		}
		if spec.prec == -2 {
			p, _ := arg()
			spec.prec = int(signExtend(getUint(p), len(p)))
		}
		v, x := arg()
		out.WriteString(vm.convert(spec, v, x))
	}
	n, _ := vm.RT.Stdout().Write(out.Bytes())
	return n
}

type conversion struct {
	flags  string
	width  int // -1 when taken from an argument
	prec   int // -1 when absent, -2 when taken from an argument
	length int // argument bytes, 0 for the default
	verb   byte
}

// parseConversion reads one conversion after '%' and returns the index of
// its verb, or -1 on malformed input.
func parseConversion(f []byte, i int) (conversion, int) {
	c := conversion{prec: -1}
	for i < len(f) && bytes.IndexByte([]byte("-+ #0"), f[i]) >= 0 {
		c.flags += string(f[i])
		i++
	}
	if i < len(f) && f[i] == '*' {
		c.width = -1
		i++
	} else {
		for i < len(f) && f[i] >= '0' && f[i] <= '9' {
			c.width = c.width*10 + int(f[i]-'0')
			i++
		}
	}
	if i < len(f) && f[i] == '.' {
		i++
		c.prec = 0
		if i < len(f) && f[i] == '*' {
			c.prec = -2
			i++
		} else {
			for i < len(f) && f[i] >= '0' && f[i] <= '9' {
				c.prec = c.prec*10 + int(f[i]-'0')
				i++
			}
		}
	}
	switch {
	case i+1 < len(f) && f[i] == 'h' && f[i+1] == 'h':
		c.length, i = 1, i+2
	case i < len(f) && f[i] == 'h':
		c.length, i = 2, i+1
	case i+1 < len(f) && f[i] == 'l' && f[i+1] == 'l':
		c.length, i = 8, i+2
	case i < len(f) && (f[i] == 'l' || f[i] == 'z' || f[i] == 'j' || f[i] == 't'):
		c.length, i = 8, i+1
	}
	if i >= len(f) || bytes.IndexByte([]byte("diuxXocspfFeEgG%"), f[i]) < 0 {
		return c, -1
	}
	c.verb = f[i]
	return c, i
}

func (vm *VM) convert(c conversion, v []byte, x *hir.Expr) string {
	var body string
	switch c.verb {
	case 'd', 'i':
		body = padNumber(strconv.FormatInt(signExtend(intArg(c, v), argWidth(c, v)), 10), c)
	case 'u':
		body = padNumber(strconv.FormatUint(truncate(intArg(c, v), argWidth(c, v)), 10), c)
	case 'x', 'X', 'o':
		base := 16
		if c.verb == 'o' {
			base = 8
		}
		body = strconv.FormatUint(truncate(intArg(c, v), argWidth(c, v)), base)
		if c.verb == 'X' {
			body = strings.ToUpper(body)
		}
		body = padNumber(body, c)
	case 'c':
		body = string([]byte{byte(getUint(v))})
	case 'p':
		body = fmt.Sprintf("%#x", getUint(v[:vm.ptrSize]))
	case 's':
		var s []byte
		if vm.Types.IsFatPointer(x.Type) {
			s = vm.load(getUint(v[:vm.ptrSize]), int(getUint(v[vm.ptrSize:])))
			if i := bytes.IndexByte(s, 0); i >= 0 {
				s = s[:i]
			}
		} else {
			s = vm.cstring(getUint(v))
		}
		if c.prec >= 0 && c.prec < len(s) {
			s = s[:c.prec]
		}
		body = string(s)
	default:
		prec := c.prec
		if prec < 0 {
			prec = 6
		}
		f := getFloat(v)
		if !vm.Types.IsFloat(x.Type) {
			f = float64(signExtend(getUint(v), len(v)))
		}
		verb := c.verb
		if verb == 'F' {
			verb = 'f'
		}
		body = strconv.FormatFloat(f, verb, prec, 64)
		if f >= 0 && strings.ContainsRune(c.flags, '+') {
			body = "+" + body
		}
	}
	return pad(body, c)
}

func intArg(c conversion, v []byte) uint64 {
	if c.length > 0 && c.length < len(v) {
		return getUint(v[:c.length])
	}
	return getUint(v)
}

func argWidth(c conversion, v []byte) int {
	switch {
	case c.length > 0:
		return min(c.length, len(v))
	case len(v) > 4:
		return 4
	}
	return len(v)
}

// padNumber applies precision and sign flags to a formatted integer.
func padNumber(s string, c conversion) string {
	neg := len(s) > 0 && s[0] == '-'
	if neg {
		s = s[1:]
	}
	for c.prec > len(s) {
		s = "0" + s
	}
	switch {
	case neg:
		s = "-" + s
	case c.verb == 'd' || c.verb == 'i':
		if strings.ContainsRune(c.flags, '+') {
			s = "+" + s
		} else if strings.ContainsRune(c.flags, ' ') {
			s = " " + s
		}
	}
	if c.prec < 0 && c.width > len(s) && strings.ContainsRune(c.flags, '0') && !strings.ContainsRune(c.flags, '-') {
		zeros := c.width - len(s)
		if neg || s[0] == '+' || s[0] == ' ' {
			return s[:1] + strings.Repeat("0", zeros) + s[1:]
		}
		return strings.Repeat("0", zeros) + s
	}
	return s
}

func pad(s string, c conversion) string {
	width := c.width
	left := strings.ContainsRune(c.flags, '-')
	if width < 0 {
		left, width = true, -width
	}
	if len(s) >= width {
		return s
	}
	fill := strings.Repeat(" ", width-len(s))
	if left {
		return s + fill
	}
	return fill + s
}
