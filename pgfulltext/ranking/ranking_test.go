package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonibytes/pgfulltext/pgfulltext/querybuilder"
	sb "github.com/nonibytes/pgfulltext/pgfulltext/sqlbuilder"
)

func target(alias sb.Fragment) sb.Fragment { return sb.Column(alias, "full_text") }

func TestKeyAlias(t *testing.T) {
	assert.Equal(t, "__fullTextRank", Key{Field: "fullText"}.Alias())
	assert.Equal(t, "__searchVectorRank", Key{Path: "clientByClientId", Field: "searchVector"}.Alias())
}

func TestExpressionRendering(t *testing.T) {
	alias := sb.Ident("t")
	e := Expression{Target: target, Query: "'fruit'"}

	b := sb.New(sb.PlaceholderDollar)
	assert.Equal(t, `ts_rank("t"."full_text", to_tsquery($1))`, e.Rank(alias).Compile(b))
	assert.Equal(t, []any{"'fruit'"}, b.Args())

	e.Language = "english"
	b = sb.New(sb.PlaceholderDollar)
	assert.Equal(t, `("t"."full_text" @@ to_tsquery($1::regconfig, $2))`, e.Match(alias).Compile(b))
	assert.Equal(t, []any{"english", "'fruit'"}, b.Args())
}

func TestRegistryIsPerQuery(t *testing.T) {
	q1 := querybuilder.New(sb.Ident("app", "job"))
	q2 := querybuilder.New(sb.Ident("app", "job"))
	k := Key{Field: "fullText"}

	For(q1).Register(k, Expression{Target: target, Query: "'apple'"})

	_, ok := For(q2).Lookup(k)
	assert.False(t, ok, "registrations must not leak across queries")

	fn, ok := For(q1).Lookup(k)
	require.True(t, ok)
	assert.Contains(t, fn(sb.Ident("t")).String(), "'''apple'''")
}

func TestRegistryPathsAreIndependent(t *testing.T) {
	q := querybuilder.New(sb.Ident("app", "job"))
	r := For(q)
	r.Register(Key{Path: "clientByClientId", Field: "bio"}, Expression{Target: target, Query: "'acme'"})

	_, ok := r.Lookup(Key{Field: "bio"})
	assert.False(t, ok)
	_, ok = r.Lookup(Key{Path: "clientByClientId", Field: "bio"})
	assert.True(t, ok)
}

func TestRegistryLastWriteWins(t *testing.T) {
	q := querybuilder.New(sb.Ident("app", "job"))
	r := For(q)
	k := Key{Field: "fullText"}

	assert.False(t, r.Register(k, Expression{Target: target, Query: "'apple'"}))
	assert.True(t, r.Register(k, Expression{Target: target, Query: "'banana'"}))

	fn, ok := r.Lookup(k)
	require.True(t, ok)
	assert.Contains(t, fn(sb.Ident("t")).String(), "banana")
	assert.Len(t, q.Selections(""), 1)
}
