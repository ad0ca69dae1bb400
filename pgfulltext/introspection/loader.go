package introspection

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Querier is the subset of *sql.DB the loader needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// The namespace list is passed as one comma-joined parameter.
const (
	sqlNamespaces = `SELECT n.oid, n.nspname, COALESCE(d.description, '')
FROM pg_catalog.pg_namespace n
LEFT JOIN pg_catalog.pg_description d ON d.objoid = n.oid AND d.classoid = 'pg_catalog.pg_namespace'::regclass
WHERE n.nspname = ANY(string_to_array($1, ','))
ORDER BY n.oid`

	sqlClasses = `SELECT c.oid, c.relname, c.relnamespace, c.relkind::text, c.reltype, COALESCE(d.description, '')
FROM pg_catalog.pg_class c
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
LEFT JOIN pg_catalog.pg_description d ON d.objoid = c.oid AND d.objsubid = 0 AND d.classoid = 'pg_catalog.pg_class'::regclass
WHERE n.nspname = ANY(string_to_array($1, ',')) AND c.relkind IN ('r', 'v', 'm', 'f', 'p')
ORDER BY c.oid`

	sqlAttributes = `SELECT a.attrelid, a.attnum, a.attname, a.atttypid, a.attnotnull, COALESCE(d.description, '')
FROM pg_catalog.pg_attribute a
JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
LEFT JOIN pg_catalog.pg_description d ON d.objoid = a.attrelid AND d.objsubid = a.attnum AND d.classoid = 'pg_catalog.pg_class'::regclass
WHERE n.nspname = ANY(string_to_array($1, ',')) AND a.attnum > 0 AND NOT a.attisdropped
ORDER BY a.attrelid, a.attnum`

	sqlTypes = `SELECT t.oid, t.typname, t.typnamespace, t.typtype::text, t.typrelid
FROM pg_catalog.pg_type t
JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
WHERE n.nspname = ANY(string_to_array($1, ','))
ORDER BY t.oid`

	sqlProcedures = `SELECT p.oid, p.proname, p.pronamespace, p.provolatile IN ('s', 'i'),
  COALESCE(array_to_string(p.proargtypes::oid[], ','), ''),
  COALESCE(array_to_string(p.proargnames, ','), ''),
  p.pronargdefaults, p.prorettype, p.proretset, COALESCE(d.description, '')
FROM pg_catalog.pg_proc p
JOIN pg_catalog.pg_namespace n ON n.oid = p.pronamespace
LEFT JOIN pg_catalog.pg_description d ON d.objoid = p.oid AND d.classoid = 'pg_catalog.pg_proc'::regclass
WHERE n.nspname = ANY(string_to_array($1, ',')) AND p.prokind = 'f'
ORDER BY p.oid`

	sqlConstraints = `SELECT con.conname, con.contype::text, con.conrelid, con.confrelid,
  COALESCE(array_to_string(con.conkey, ','), ''),
  COALESCE(array_to_string(con.confkey, ','), ''),
  COALESCE(d.description, '')
FROM pg_catalog.pg_constraint con
JOIN pg_catalog.pg_class c ON c.oid = con.conrelid
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
LEFT JOIN pg_catalog.pg_description d ON d.objoid = con.oid AND d.classoid = 'pg_catalog.pg_constraint'::regclass
WHERE n.nspname = ANY(string_to_array($1, ',')) AND con.contype IN ('p', 'f', 'u')
ORDER BY con.conrelid, con.conname`
)

// Load reads the catalog for the given namespaces and returns an indexed Result.
func Load(ctx context.Context, db Querier, namespaces []string) (*Result, error) {
	if len(namespaces) == 0 {
		return nil, fmt.Errorf("introspection: no namespaces given")
	}
	arg := strings.Join(namespaces, ",")
	r := &Result{}

	if err := each(ctx, db, sqlNamespaces, arg, func(rows *sql.Rows) error {
		var id int64
		n := &Namespace{}
		if err := rows.Scan(&id, &n.Name, &n.Description); err != nil {
			return err
		}
		n.ID = OID(id)
		n.Tags, n.Description = ParseComment(n.Description)
		r.Namespaces = append(r.Namespaces, n)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("introspect namespaces: %w", err)
	}

	if err := each(ctx, db, sqlClasses, arg, func(rows *sql.Rows) error {
		var id, ns, typ int64
		c := &Class{}
		if err := rows.Scan(&id, &c.Name, &ns, &c.Kind, &typ, &c.Description); err != nil {
			return err
		}
		c.ID, c.NamespaceID, c.TypeID = OID(id), OID(ns), OID(typ)
		c.Tags, c.Description = ParseComment(c.Description)
		r.Classes = append(r.Classes, c)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("introspect classes: %w", err)
	}

	if err := each(ctx, db, sqlAttributes, arg, func(rows *sql.Rows) error {
		var classID, typ int64
		a := &Attribute{}
		if err := rows.Scan(&classID, &a.Num, &a.Name, &typ, &a.NotNull, &a.Description); err != nil {
			return err
		}
		a.ClassID, a.TypeID = OID(classID), OID(typ)
		a.Tags, a.Description = ParseComment(a.Description)
		r.Attributes = append(r.Attributes, a)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("introspect attributes: %w", err)
	}

	if err := each(ctx, db, sqlTypes, arg, func(rows *sql.Rows) error {
		var id, ns, classID int64
		t := &Type{}
		if err := rows.Scan(&id, &t.Name, &ns, &t.Type, &classID); err != nil {
			return err
		}
		t.ID, t.NamespaceID, t.ClassID = OID(id), OID(ns), OID(classID)
		r.Types = append(r.Types, t)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("introspect types: %w", err)
	}

	if err := each(ctx, db, sqlProcedures, arg, func(rows *sql.Rows) error {
		var id, ns, ret int64
		var argTypes, argNames string
		p := &Procedure{}
		if err := rows.Scan(&id, &p.Name, &ns, &p.IsStable, &argTypes, &argNames,
			&p.ArgDefaultsCount, &ret, &p.ReturnsSet, &p.Description); err != nil {
			return err
		}
		p.ID, p.NamespaceID, p.ReturnTypeID = OID(id), OID(ns), OID(ret)
		nums, err := splitInts(argTypes)
		if err != nil {
			return fmt.Errorf("procedure %s arg types: %w", p.Name, err)
		}
		for _, n := range nums {
			p.ArgTypeIDs = append(p.ArgTypeIDs, OID(n))
		}
		if argNames != "" {
			p.ArgNames = strings.Split(argNames, ",")
		}
		p.Tags, p.Description = ParseComment(p.Description)
		r.Procedures = append(r.Procedures, p)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("introspect procedures: %w", err)
	}

	if err := each(ctx, db, sqlConstraints, arg, func(rows *sql.Rows) error {
		var classID, foreignID int64
		var keys, foreignKeys, comment string
		c := &Constraint{}
		if err := rows.Scan(&c.Name, &c.Type, &classID, &foreignID, &keys, &foreignKeys, &comment); err != nil {
			return err
		}
		c.ClassID, c.ForeignClassID = OID(classID), OID(foreignID)
		var err error
		if c.KeyAttrNums, err = splitInts(keys); err != nil {
			return fmt.Errorf("constraint %s keys: %w", c.Name, err)
		}
		if c.ForeignKeyAttrNums, err = splitInts(foreignKeys); err != nil {
			return fmt.Errorf("constraint %s foreign keys: %w", c.Name, err)
		}
		c.Tags, _ = ParseComment(comment)
		r.Constraints = append(r.Constraints, c)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("introspect constraints: %w", err)
	}

	return r.Index(), nil
}

func each(ctx context.Context, db Querier, query, arg string, fn func(*sql.Rows) error) error {
	rows, err := db.QueryContext(ctx, query, arg)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func splitInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
