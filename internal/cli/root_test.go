package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonibytes/pgfulltext/internal/cliopt"
	"github.com/nonibytes/pgfulltext/internal/cliutil"
	"github.com/nonibytes/pgfulltext/pgfulltext"
	in "github.com/nonibytes/pgfulltext/pgfulltext/introspection"
)

// postCatalog is a single table app.post(id int4 pk, title text, body tsvector).
func postCatalog() *in.Result {
	return (&in.Result{
		Namespaces: []*in.Namespace{{ID: 10, Name: "app"}},
		Classes:    []*in.Class{{ID: 20, Name: "post", NamespaceID: 10, Kind: in.KindTable, TypeID: 30}},
		Types:      []*in.Type{{ID: 30, Name: "post", NamespaceID: 10, Type: "c", ClassID: 20}},
		Attributes: []*in.Attribute{
			{ClassID: 20, Num: 1, Name: "id", TypeID: in.Int4OID, NotNull: true},
			{ClassID: 20, Num: 2, Name: "title", TypeID: in.TextOID},
			{ClassID: 20, Num: 3, Name: "body", TypeID: in.TSVectorOID},
		},
		Constraints: []*in.Constraint{{Name: "post_pkey", Type: in.ConstraintPrimaryKey, ClassID: 20, KeyAttrNums: []int{1}}},
	}).Index()
}

func testEnv(t *testing.T) (*cliutil.Env, *bytes.Buffer, sqlmock.Sqlmock) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.db")
	cache, err := in.OpenCache(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, cache.Put(context.Background(), "post", postCatalog()))
	require.NoError(t, cache.Close())

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	env := cliutil.NewEnv(&out, &errOut)
	env.Open = func(ctx context.Context, _ cliopt.Settings, opts pgfulltext.Options) (*pgfulltext.Service, error) {
		opts.CachePath, opts.ReadCache, opts.CacheKey = path, true, "post"
		return pgfulltext.Open(ctx, db, opts)
	}
	return env, &out, mock
}

func run(t *testing.T, env *cliutil.Env, args ...string) error {
	t.Helper()
	chdir(t, t.TempDir())
	root := NewRootCommand(env)
	root.SetArgs(args)
	return root.Execute()
}

func TestSchemaPrint(t *testing.T) {
	env, out, _ := testEnv(t)
	require.NoError(t, run(t, env, "--schemas", "app", "schema", "print"))
	sdl := out.String()
	assert.Contains(t, sdl, "bodyRank: Float")
	assert.Contains(t, sdl, "BODY_RANK_ASC")
	assert.Contains(t, sdl, "allPosts(")
	assert.Equal(t, []string{"app"}, env.Settings.Schemas)
}

func TestSchemaFields(t *testing.T) {
	env, out, _ := testEnv(t)
	require.NoError(t, run(t, env, "schema", "fields"))
	assert.Equal(t, "Post.body (column body):\n  filter: matches, rank: bodyRank\n  order: BODY_RANK_ASC, BODY_RANK_DESC\n", out.String())
}

func TestQueryExplain(t *testing.T) {
	env, out, _ := testEnv(t)
	require.NoError(t, run(t, env, "query", "-f", "allPosts",
		"--filter", `{"body":{"matches":"fruit"}}`, "--select", "title bodyRank", "--explain"))
	assert.Equal(t, `=== SQL ===
SELECT "__local_0__"."title" AS "title", ts_rank("__local_0__"."body", to_tsquery($1)) AS "__bodyRank" FROM "app"."post" AS "__local_0__" WHERE ("__local_0__"."body" @@ to_tsquery($2)) ORDER BY "__local_0__"."id" ASC

=== Args ===
  $1 = 'fruit'
  $2 = 'fruit'
`, out.String())
}

func TestQueryRun(t *testing.T) {
	env, out, mock := testEnv(t)
	mock.ExpectQuery(`SELECT "__local_0__"."title" AS "title" FROM "app"."post" AS "__local_0__" ORDER BY "__local_0__"."id" ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"title"}).AddRow("hello"))

	require.NoError(t, run(t, env, "query", "-f", "allPosts", "--select", "title bodyRank"))
	assert.Equal(t, "title: hello\nbodyRank: null\n\n--- 1 rows ---\n", out.String())
}

func TestQueryRejected(t *testing.T) {
	env, _, _ := testEnv(t)
	err := run(t, env, "query", "-f", "allPosts", "--select", "title", "--order-by", "NOPE")
	assert.True(t, pgfulltext.IsKind(err, pgfulltext.ErrQueryRejected))
}

func TestBadLogLevel(t *testing.T) {
	env, _, _ := testEnv(t)
	assert.Error(t, run(t, env, "--log-level", "loud", "schema", "print"))
}

// chdir is equivalent to testing.T.Chdir (Go 1.24+), which the local
// toolchain lacks: it changes the working directory for the test and
// restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
