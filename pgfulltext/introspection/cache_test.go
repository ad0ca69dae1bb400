package introspection

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := OpenCache(ctx, filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	defer c.Close()

	key := CacheKey("postgres://localhost/app", []string{"app"})
	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	in := &Result{
		Namespaces: []*Namespace{{ID: 100, Name: "app"}},
		Classes:    []*Class{{ID: 2001, Name: "job", NamespaceID: 100, Kind: KindTable, TypeID: 1001}},
		Attributes: []*Attribute{{ClassID: 2001, Num: 1, Name: "full_text", TypeID: TSVectorOID, Tags: Tags{"omit": {"order"}}}},
		Types:      []*Type{{ID: 1001, Name: "job", NamespaceID: 100, Type: "c", ClassID: 2001}},
	}
	require.NoError(t, c.Put(ctx, key, in))

	out, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)

	job, found := out.Class(2001)
	require.True(t, found, "snapshot must come back indexed")
	_, found = out.RowTypeOf(job)
	assert.True(t, found)
	assert.True(t, Omit(out.AttributesOf(2001)[0], OmitOrder))

	// overwrite
	in.Classes[0].Name = "posting"
	require.NoError(t, c.Put(ctx, key, in))
	out, _, err = c.Get(ctx, key)
	require.NoError(t, err)
	job, _ = out.Class(2001)
	assert.Equal(t, "posting", job.Name)
}

func TestCacheKeyIgnoresNamespaceOrder(t *testing.T) {
	a := CacheKey("db", []string{"app", "public"})
	b := CacheKey("db", []string{"public", "app"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, CacheKey("other", []string{"app", "public"}))
}
