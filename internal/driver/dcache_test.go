package driver

import (
	"context"
	"testing"

	"rsfront/internal/diag"
	"rsfront/internal/project"
	"rsfront/internal/source"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCache("rsfront", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	res, err := CompileSource(context.Background(), "main.rs", []byte(unsafeProgram), Options{})
	if err != nil {
		t.Fatal(err)
	}
	key := cacheKey(res.File.Hash, Options{})
	if err := cache.Put(key, payloadFromResult(res)); err != nil {
		t.Fatalf("put: %v", err)
	}

	var got CheckPayload
	hit, err := cache.Get(key, &got)
	if err != nil || !hit {
		t.Fatalf("get: hit=%v err=%v", hit, err)
	}
	if got.Broken || got.Funcs == 0 || got.ContentHash != project.Digest(res.File.Hash) {
		t.Fatalf("payload = %+v", got)
	}

	bag := got.restore(source.FileID(7), 0)
	if !bag.HasCode(diag.SemaUnsafeOperation) {
		t.Fatalf("restored = %+v", bag.Items())
	}
	for _, d := range bag.Items() {
		if d.Primary.File != 7 {
			t.Fatalf("span not rebound: %+v", d.Primary)
		}
	}
}

func TestDiskCacheMisses(t *testing.T) {
	cache, err := OpenDiskCache("rsfront", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := project.DigestString("missing")
	var p CheckPayload
	if hit, err := cache.Get(key, &p); hit || err != nil {
		t.Fatalf("missing entry: hit=%v err=%v", hit, err)
	}

	if err := cache.Put(key, &CheckPayload{Schema: diskCacheSchemaVersion + 1}); err != nil {
		t.Fatal(err)
	}
	if hit, err := cache.Get(key, &p); hit || err != nil {
		t.Fatalf("stale schema: hit=%v err=%v", hit, err)
	}

	if err := cache.Put(key, &CheckPayload{Schema: diskCacheSchemaVersion}); err != nil {
		t.Fatal(err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if hit, _ := cache.Get(key, &p); hit {
		t.Fatal("entry survived DropAll")
	}
}

func TestCacheKeyDependsOnOptions(t *testing.T) {
	var content [32]byte
	a := cacheKey(content, Options{MaxDiagnostics: 10})
	b := cacheKey(content, Options{MaxDiagnostics: 10, WarningsAsErrors: true})
	if a == b {
		t.Fatal("warning policy must change the key")
	}
	if a != cacheKey(content, Options{MaxDiagnostics: 10, EnableTimings: true}) {
		t.Fatal("timings must not change the key")
	}
}

func TestNilDiskCache(t *testing.T) {
	var c *DiskCache
	var p CheckPayload
	if err := c.Put(project.Digest{}, &p); err != nil {
		t.Fatal(err)
	}
	if hit, err := c.Get(project.Digest{}, &p); hit || err != nil {
		t.Fatalf("nil cache: hit=%v err=%v", hit, err)
	}
}
