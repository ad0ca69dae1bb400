// Package fixture provides a synthetic catalog shared by package tests.
//
// Schema "app":
//
//	job(id int4 pk, name text, full_text tsvector, client_id int4 -> client.id,
//	    archived_text tsvector @omit filter)
//	client(id int4 pk, name text, bio tsvector)
//	note(id int4 pk, body text)
//
//	job_search_vector(job) tsvector stable
//	job_name_length(job) int4 stable
//	job_with_lang(job, text) tsvector stable          -- extra required arg
//	job_volatile_vector(job) tsvector volatile
//	client_headline_vector(client, text = 'english') tsvector stable
package fixture

import (
	in "github.com/nonibytes/pgfulltext/pgfulltext/introspection"
)

const (
	NamespaceID in.OID = 100

	JobTypeID    in.OID = 1001
	ClientTypeID in.OID = 1002
	NoteTypeID   in.OID = 1003

	JobClassID    in.OID = 2001
	ClientClassID in.OID = 2002
	NoteClassID   in.OID = 2003
)

// Catalog returns a fresh, indexed copy of the fixture.
func Catalog() *in.Result {
	r := &in.Result{
		Namespaces: []*in.Namespace{{ID: NamespaceID, Name: "app"}},
		Classes: []*in.Class{
			{ID: JobClassID, Name: "job", NamespaceID: NamespaceID, Kind: in.KindTable, TypeID: JobTypeID},
			{ID: ClientClassID, Name: "client", NamespaceID: NamespaceID, Kind: in.KindTable, TypeID: ClientTypeID},
			{ID: NoteClassID, Name: "note", NamespaceID: NamespaceID, Kind: in.KindTable, TypeID: NoteTypeID},
		},
		Types: []*in.Type{
			{ID: JobTypeID, Name: "job", NamespaceID: NamespaceID, Type: "c", ClassID: JobClassID},
			{ID: ClientTypeID, Name: "client", NamespaceID: NamespaceID, Type: "c", ClassID: ClientClassID},
			{ID: NoteTypeID, Name: "note", NamespaceID: NamespaceID, Type: "c", ClassID: NoteClassID},
		},
		Attributes: []*in.Attribute{
			{ClassID: JobClassID, Num: 1, Name: "id", TypeID: in.Int4OID, NotNull: true},
			{ClassID: JobClassID, Num: 2, Name: "name", TypeID: in.TextOID, NotNull: true},
			{ClassID: JobClassID, Num: 3, Name: "full_text", TypeID: in.TSVectorOID},
			{ClassID: JobClassID, Num: 4, Name: "client_id", TypeID: in.Int4OID},
			{ClassID: JobClassID, Num: 5, Name: "archived_text", TypeID: in.TSVectorOID, Tags: in.Tags{"omit": {"filter"}}},

			{ClassID: ClientClassID, Num: 1, Name: "id", TypeID: in.Int4OID, NotNull: true},
			{ClassID: ClientClassID, Num: 2, Name: "name", TypeID: in.TextOID, NotNull: true},
			{ClassID: ClientClassID, Num: 3, Name: "bio", TypeID: in.TSVectorOID},

			{ClassID: NoteClassID, Num: 1, Name: "id", TypeID: in.Int4OID, NotNull: true},
			{ClassID: NoteClassID, Num: 2, Name: "body", TypeID: in.TextOID},
		},
		Procedures: []*in.Procedure{
			{ID: 3001, Name: "job_search_vector", NamespaceID: NamespaceID, IsStable: true,
				ArgTypeIDs: []in.OID{JobTypeID}, ReturnTypeID: in.TSVectorOID},
			{ID: 3002, Name: "job_name_length", NamespaceID: NamespaceID, IsStable: true,
				ArgTypeIDs: []in.OID{JobTypeID}, ReturnTypeID: in.Int4OID},
			{ID: 3003, Name: "job_with_lang", NamespaceID: NamespaceID, IsStable: true,
				ArgTypeIDs: []in.OID{JobTypeID, in.TextOID}, ReturnTypeID: in.TSVectorOID},
			{ID: 3004, Name: "job_volatile_vector", NamespaceID: NamespaceID, IsStable: false,
				ArgTypeIDs: []in.OID{JobTypeID}, ReturnTypeID: in.TSVectorOID},
			{ID: 3005, Name: "client_headline_vector", NamespaceID: NamespaceID, IsStable: true,
				ArgTypeIDs: []in.OID{ClientTypeID, in.TextOID}, ArgDefaultsCount: 1, ReturnTypeID: in.TSVectorOID},
		},
		Constraints: []*in.Constraint{
			{Name: "job_pkey", Type: in.ConstraintPrimaryKey, ClassID: JobClassID, KeyAttrNums: []int{1}},
			{Name: "client_pkey", Type: in.ConstraintPrimaryKey, ClassID: ClientClassID, KeyAttrNums: []int{1}},
			{Name: "note_pkey", Type: in.ConstraintPrimaryKey, ClassID: NoteClassID, KeyAttrNums: []int{1}},
			{Name: "job_client_id_fkey", Type: in.ConstraintForeignKey, ClassID: JobClassID,
				ForeignClassID: ClientClassID, KeyAttrNums: []int{4}, ForeignKeyAttrNums: []int{1}},
		},
	}
	return r.Index()
}

// Class returns the fixture class with the given id.
func Class(r *in.Result, id in.OID) *in.Class {
	c, ok := r.Class(id)
	if !ok {
		panic("fixture: unknown class")
	}
	return c
}
