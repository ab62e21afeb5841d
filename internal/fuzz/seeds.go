package fuzztests

import (
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10

var builtinSeeds = []string{
	"",
	"fn main() {}\n",
	"fn id<T>(x: T) -> T { x }\nfn main() -> i32 { id(1) + id::<u8>(2) as i32 }\n",
	"macro_rules! twice { ($e:expr) => { $e + $e }; }\nfn main() -> i32 { twice!(3) }\n",
	"macro_rules! m { () => { m!() }; }\nfn main() { m!(); }\n",
	"const N: usize = 4 * 2;\nstatic A: [u8; N] = [0; N];\nfn main() {}\n",
	"extern \"rust-intrinsic\" { fn size_of<T>() -> usize; }\nfn main() -> usize { unsafe { size_of::<(u8, u32)>() } }\n",
	"fn main() { let s = &[1, 2, 3][..]; let _x = s[1..]; }\n",
	"fn f() { { { { } } } }",
	"fn f( { let x: = ; }",
	"struct S<T> { a: T, } impl<T> S<T> { fn get(&self) -> &T { &self.a } }",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range builtinSeeds {
		f.Add([]byte(s))
	}
	paths, err := filepath.Glob(filepath.Join("..", "..", "cmd", "rsfront", "testdata", "*.rs"))
	if err != nil {
		return
	}
	for _, path := range paths {
		// #nosec G304 -- path comes from repository testdata glob
		src, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		f.Add(clampSeed(src))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
