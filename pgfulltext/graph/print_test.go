package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrint(t *testing.T) {
	s := buildFixture(t)
	out := Print(s)

	assert.Contains(t, out, "scalar BigInt\n")
	assert.NotContains(t, out, "scalar Int\n")
	assert.Contains(t, out, "enum JobsOrderBy {\n  NATURAL\n  PRIMARY_KEY_ASC\n")
	assert.Contains(t, out, "type Job {\n  id: Int!\n  name: String!\n  clientId: Int\n")
	assert.Contains(t, out, "  allJobs(first: Int, offset: Int, orderBy: [JobsOrderBy!] = [PRIMARY_KEY_ASC]): [Job!]!\n")
	assert.Contains(t, out, "  \"Reads a single `Client` that is related to this `Job`.\"\n  clientByClientId: Client\n")

	// types are sorted, Query first among objects
	assert.Less(t, strings.Index(out, "type Query"), strings.Index(out, "type Client"))
	assert.Less(t, strings.Index(out, "type Client"), strings.Index(out, "type Job"))
	assert.Equal(t, out, Print(s), "output must be deterministic")
}

func TestPrintMultilineDescription(t *testing.T) {
	var w strings.Builder
	printDescription(&w, "  ", "first\nsecond")
	assert.Equal(t, "  \"\"\"\n  first\n  second\n  \"\"\"\n", w.String())
}
