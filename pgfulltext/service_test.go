package pgfulltext

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonibytes/pgfulltext/pgfulltext/connection"
	"github.com/nonibytes/pgfulltext/pgfulltext/internal/fixture"
	"github.com/nonibytes/pgfulltext/pgfulltext/introspection"
)

func seedSnapshot(t *testing.T, key string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.db")
	cache, err := introspection.OpenCache(context.Background(), path)
	require.NoError(t, err)
	defer cache.Close()
	require.NoError(t, cache.Put(context.Background(), key, fixture.Catalog()))
	return path
}

func TestOpenFromSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	path := seedSnapshot(t, "fixture")
	svc, err := Open(context.Background(), db, Options{
		Schemas:   []string{"app"},
		CachePath: path,
		ReadCache: true,
		CacheKey:  "fixture",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	_, ok := svc.Schema().Query.Field("allJobs")
	assert.True(t, ok)
	sdl := svc.SDL()
	assert.Contains(t, sdl, "fullTextRank: Float")
	assert.Contains(t, sdl, "FULL_TEXT_RANK_DESC")
	assert.Contains(t, sdl, "input FullTextFilter")

	mock.ExpectClose()
	require.NoError(t, svc.Close())
}

func TestOpenDerivesCacheKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	path := seedSnapshot(t, introspection.CacheKey("appdb", []string{"app"}))
	mock.ExpectQuery(`SELECT current_database\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"current_database"}).AddRow("appdb"))

	_, err = Open(context.Background(), db, Options{Schemas: []string{"app"}, CachePath: path, ReadCache: true})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenIntrospectionError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("pg_namespace").WillReturnError(errors.New("permission denied"))

	_, err = Open(context.Background(), db, Options{Schemas: []string{"app"}})
	assert.True(t, IsKind(err, ErrIntrospection), "got %v", err)
}

func TestOpenNoSchemas(t *testing.T) {
	_, err := Open(context.Background(), nil, Options{})
	assert.True(t, IsKind(err, ErrSchema))
}

func TestServiceExecute(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	svc, err := Open(context.Background(), db, Options{
		Schemas:   []string{"app"},
		CachePath: seedSnapshot(t, "fixture"),
		ReadCache: true,
		CacheKey:  "fixture",
	})
	require.NoError(t, err)

	req := connection.Request{
		Field:     "allNotes",
		Selection: []connection.Selection{{Name: "body"}},
	}
	plan, err := svc.Prepare(req)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "__local_0__"."body" AS "body" FROM "app"."note" AS "__local_0__" ORDER BY "__local_0__"."id" ASC`, plan.SQL)

	mock.ExpectQuery(plan.SQL).WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow("hello"))
	res, err := svc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"body": "hello"}}, res.Rows)
}

func TestValidateSchemaName(t *testing.T) {
	assert.NoError(t, ValidateSchemaName("app"))
	assert.NoError(t, ValidateSchemaName("_private2"))
	for _, bad := range []string{"", "1app", "app;drop", `a"b`, "with space"} {
		assert.Error(t, ValidateSchemaName(bad), bad)
	}
}

func TestConnectRejectsSchemaName(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://localhost:5432/app", []string{"bad name"})
	assert.True(t, IsKind(err, ErrSchema))
}

func TestConnectRejectsDSN(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://%zz", []string{"app"})
	assert.True(t, IsKind(err, ErrSQL))
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	assert.Equal(t, []string{"public"}, o.Schemas)
	assert.Nil(t, o.Logger)
	assert.NotNil(t, o.withDefaults().Logger)
}

func TestFullTextFields(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc, err := Open(context.Background(), db, Options{
		Schemas:   []string{"app"},
		CachePath: seedSnapshot(t, "fixture"),
		ReadCache: true,
		CacheKey:  "fixture",
	})
	require.NoError(t, err)

	fields, err := svc.FullTextFields()
	require.NoError(t, err)
	var names []string
	for _, f := range fields {
		names = append(names, f.Type+"."+f.Field)
	}
	assert.Equal(t, []string{"Job.fullText", "Job.archivedText", "Job.searchVector", "Client.bio", "Client.headlineVector"}, names)

	assert.Equal(t, FieldInfo{
		Table: "job", Type: "Job", Field: "fullText", Source: "full_text", Kind: "column",
		RankField: "fullTextRank", AscValue: "FULL_TEXT_RANK_ASC", DescValue: "FULL_TEXT_RANK_DESC",
		Filterable: true, Orderable: true,
	}, fields[0])
	assert.Empty(t, fields[1].RankField)
	assert.Equal(t, "job_search_vector", fields[2].Source)
}
