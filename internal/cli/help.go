package cli

const rootLong = `pgfulltext builds a queryable schema over PostgreSQL tables and adds
full-text search to every tsvector column and tsvector-returning function:

  filter     <field>: { matches: "apple | fruit" }
  output     <field>Rank (null unless the field was filtered)
  ordering   <FIELD>_RANK_ASC / <FIELD>_RANK_DESC

CONFIGURATION
  Every flag can also be set as PGFULLTEXT_<NAME> (e.g. PGFULLTEXT_DATABASE_URL)
  or in ./pgfulltext.yaml. Flags win over the environment, which wins over the file.

EXAMPLES
  pgfulltext --schemas app schema print
  pgfulltext query -f allJobs --filter '{"fullText":{"matches":"fruit"}}' \
      --order-by FULL_TEXT_RANK_DESC --select 'id name fullTextRank'
  pgfulltext query --file request.yaml --explain
  pgfulltext serve --listen :8080`
