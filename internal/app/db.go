package app

import (
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/vkolarov/bgmafia-tracker/internal/config"
)

func openDatabase(cfg config.Config) (*sqlx.DB, error) {
	return otelsqlx.Connect("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
}

// Some managed Postgres poolers choke on binary-format prepared results from
// lib/pq. The flag is appended unless the URL already carries a value for it.
func normalizeDBURL(raw string, disablePreparedBinary bool) string {
	if !disablePreparedBinary {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	params := parsed.Query()
	if params.Has("disable_prepared_binary_result") {
		return raw
	}
	params.Set("disable_prepared_binary_result", "yes")
	parsed.RawQuery = params.Encode()
	return parsed.String()
}

// dbNameFromURL pulls the database name out of a postgres:// URL for the
// span attributes. A DB_URL without a path yields an empty name and the
// attribute is simply omitted.
func dbNameFromURL(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.Trim(parsed.Path, "/")
}

const tracedQueryLimit = 512

// formatDBQueryForTrace collapses the querybuilder's multi-line output onto
// one line and caps oversized statements so spans stay readable.
func formatDBQueryForTrace(query string) string {
	compact := strings.Join(strings.Fields(query), " ")
	if len(compact) > tracedQueryLimit {
		return compact[:tracedQueryLimit] + "..."
	}
	return compact
}
