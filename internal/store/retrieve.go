// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pdiddy/genui-engine/pkg/types"
)

// QueryOptions holds parameters for fragment queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	// Kind filters by FragmentKind.
	Kind types.FragmentKind

	// Label filters by delimiter label or annotation type.
	Label string

	// CompletionID filters by source completion.
	CompletionID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Kind == "" && q.Label == "" && q.CompletionID == ""
}

// QueryResult is a Fragment returned from a store query.
type QueryResult struct {
	types.Fragment
}

// Retrieve queries the fragment store with optional full-text search and
// structured filters. Results are ranked by relevance for full-text
// queries or sorted by completion, kind, label otherwise.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT f.id, f.kind, f.label, f.content, f.completion_id, f.line
			FROM fragments_fts
			JOIN fragments f ON f.rowid = fragments_fts.rowid
			WHERE fragments_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT f.id, f.kind, f.label, f.content, f.completion_id, f.line
			FROM fragments f
			WHERE 1=1`)
	}

	if opts.Kind != "" {
		qb.WriteString(` AND f.kind = ?`)
		args = append(args, string(opts.Kind))
	}

	if opts.Label != "" {
		qb.WriteString(` AND f.label = ?`)
		args = append(args, opts.Label)
	}

	if opts.CompletionID != "" {
		qb.WriteString(` AND f.completion_id = ?`)
		args = append(args, opts.CompletionID)
	}

	if useFTS {
		qb.WriteString(` ORDER BY fragments_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY f.completion_id, f.kind, f.label`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying fragment store: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr    QueryResult
			kind  string
			label sql.NullString
			line  sql.NullInt64
		)

		if err := rows.Scan(
			&qr.ID, &kind, &label, &qr.Content, &qr.CompletionID, &line,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		qr.Kind = types.FragmentKind(kind)
		if label.Valid {
			qr.Label = label.String
		}
		if line.Valid {
			qr.Line = int(line.Int64)
		}

		results = append(results, qr)
	}

	return results, rows.Err()
}
