package mdcache_test

import (
	"errors"
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"

	. "src.mdkit.sh/pkg/mdcache"
	"src.mdkit.sh/pkg/must"
	"src.mdkit.sh/pkg/testutil"
	"src.mdkit.sh/pkg/tt"
)

func openTemp(t *testing.T) (*Cache, string) {
	path := filepath.Join(testutil.TempDir(t), "cache.db")
	c := must.OK1(Open(path))
	t.Cleanup(func() { c.Close() })
	return c, path
}

func TestCache(t *testing.T) {
	c, _ := openTemp(t)

	if _, found, err := c.Get("k"); found || err != nil {
		t.Errorf("Get on empty cache -> found %v, err %v", found, err)
	}
	must.OK(c.Put("k", "v1"))
	must.OK(c.Put("k", "v2"))
	must.OK(c.Put("other", ""))

	if v, found, err := c.Get("k"); v != "v2" || !found || err != nil {
		t.Errorf("Get -> (%q, %v, %v), want (\"v2\", true, nil)", v, found, err)
	}
	if v, found, _ := c.Get("other"); v != "" || !found {
		t.Errorf("Get of empty value -> (%q, %v), want (\"\", true)", v, found)
	}
	if n := must.OK1(c.Len()); n != 2 {
		t.Errorf("Len -> %v, want 2", n)
	}

	must.OK(c.Delete("k"))
	must.OK(c.Delete("no such key"))
	if _, found, _ := c.Get("k"); found {
		t.Errorf("key still found after Delete")
	}
	if n := must.OK1(c.Len()); n != 1 {
		t.Errorf("Len -> %v, want 1", n)
	}
}

func TestCache_Persists(t *testing.T) {
	c, path := openTemp(t)
	must.OK(c.Put("k", "v"))
	must.OK(c.Close())

	c2 := must.OK1(Open(path))
	defer c2.Close()
	if v, found, _ := c2.Get("k"); v != "v" || !found {
		t.Errorf("after reopening, Get -> (%q, %v)", v, found)
	}
}

func TestOpen_Locked(t *testing.T) {
	_, path := openTemp(t)
	_, err := Open(path)
	if !errors.Is(err, bolt.ErrTimeout) {
		t.Errorf("got error %v, want bolt.ErrTimeout", err)
	}
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(filepath.Join(testutil.TempDir(t), "no", "such", "dir"))
	if err == nil {
		t.Errorf("got nil error, want non-nil")
	}
}

func TestKey(t *testing.T) {
	tt.Test(t, tt.Fn("Key == Key", func(a, b [3]string) bool {
		return Key(a[0], []byte(a[1]), a[2]) == Key(b[0], []byte(b[1]), b[2])
	}), tt.Table{
		tt.Args([3]string{"html", "{}", "# a"}, [3]string{"html", "{}", "# a"}).Rets(true),
		tt.Args([3]string{"html", "{}", "# a"}, [3]string{"text", "{}", "# a"}).Rets(false),
		tt.Args([3]string{"html", "{}", "# a"}, [3]string{"html", "{ }", "# a"}).Rets(false),
		tt.Args([3]string{"html", "{}", "# a"}, [3]string{"html", "{}", "# b"}).Rets(false),
		tt.Args([3]string{"ab", "", "c"}, [3]string{"a", "b", "c"}).Rets(false),
	})
	if k := Key("html", nil, ""); len(k) != 64 {
		t.Errorf("Key has length %d, want 64", len(k))
	}
}
