package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ghiridhars/ebook-organizer/internal/domain"
	"github.com/ghiridhars/ebook-organizer/internal/store"
)

// ebookColumns is the ordered list of columns selected in ebook queries.
// Must match the scan order in scanEbook.
const ebookColumns = `id, created_at, updated_at, title, author, path, format, size,
	category, sub_genre, embedded_genre, publisher, language, description, published_date`

const unclassifiedClause = `(category IS NULL OR TRIM(category) = '' OR sub_genre IS NULL OR TRIM(sub_genre) = '')`

// scanEbook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Ebook.
func scanEbook(scanner interface{ Scan(dest ...any) error }) (*domain.Ebook, error) {
	var (
		e             domain.Ebook
		createdAt     string
		updatedAt     string
		author        sql.NullString
		category      sql.NullString
		subGenre      sql.NullString
		embeddedGenre sql.NullString
		publisher     sql.NullString
		language      sql.NullString
		description   sql.NullString
		publishedDate sql.NullString
	)

	err := scanner.Scan(
		&e.ID,
		&createdAt,
		&updatedAt,
		&e.Title,
		&author,
		&e.Path,
		&e.Format,
		&e.Size,
		&category,
		&subGenre,
		&embeddedGenre,
		&publisher,
		&language,
		&description,
		&publishedDate,
	)
	if err != nil {
		return nil, err
	}

	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	e.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	e.Author = author.String
	e.Category = category.String
	e.SubGenre = subGenre.String
	e.EmbeddedGenre = embeddedGenre.String
	e.Publisher = publisher.String
	e.Language = language.String
	e.Description = description.String
	e.PublishedDate = publishedDate.String

	return &e, nil
}

// CreateEbook inserts a new record.
// Returns store.ErrAlreadyExists on a duplicate ID or path.
func (s *Store) CreateEbook(ctx context.Context, e *domain.Ebook) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ebooks (`+ebookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		formatTime(e.CreatedAt),
		formatTime(e.UpdatedAt),
		e.Title,
		nullString(e.Author),
		e.Path,
		e.Format,
		e.Size,
		nullString(e.Category),
		nullString(e.SubGenre),
		nullString(e.EmbeddedGenre),
		nullString(e.Publisher),
		nullString(e.Language),
		nullString(e.Description),
		nullString(e.PublishedDate),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.AlreadyExists("ebook "+e.ID+" at "+e.Path, err)
		}
		return fmt.Errorf("insert ebook: %w", err)
	}
	return nil
}

// GetEbook retrieves a record by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetEbook(ctx context.Context, id string) (*domain.Ebook, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ebookColumns+` FROM ebooks WHERE id = ?`, id)
	return getOne(row, "ebook "+id)
}

// GetEbookByPath retrieves a record by its stored file path.
func (s *Store) GetEbookByPath(ctx context.Context, path string) (*domain.Ebook, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ebookColumns+` FROM ebooks WHERE path = ?`, path)
	return getOne(row, "path "+path)
}

func getOne(row *sql.Row, key string) (*domain.Ebook, error) {
	e, err := scanEbook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFound(key)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListEbooks returns records matching f, ordered by path.
func (s *Store) ListEbooks(ctx context.Context, f store.EbookFilter) ([]*domain.Ebook, error) {
	where, args := filterClause(f)

	query := `SELECT ` + ebookColumns + ` FROM ebooks` + where + ` ORDER BY path, id`
	switch {
	case f.Limit > 0:
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	case f.Offset > 0:
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ebooks: %w", err)
	}
	defer rows.Close()

	var out []*domain.Ebook
	for rows.Next() {
		e, err := scanEbook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ebook: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// filterClause builds the WHERE clause for f. It returns "" when nothing
// filters.
func filterClause(f store.EbookFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if len(f.IDs) > 0 {
		conds = append(conds, `id IN (`+placeholders(len(f.IDs))+`)`)
		for _, id := range f.IDs {
			args = append(args, id)
		}
	}
	if f.PathPrefix != "" {
		conds = append(conds, `path LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(f.PathPrefix)+"%")
	}
	if f.Category != "" {
		conds = append(conds, `category = ?`)
		args = append(args, f.Category)
	}
	if f.SubGenre != "" {
		conds = append(conds, `sub_genre = ?`)
		args = append(args, f.SubGenre)
	}
	if f.Unclassified {
		conds = append(conds, unclassifiedClause)
	}
	if len(f.ExcludeIDs) > 0 {
		conds = append(conds, `id NOT IN (`+placeholders(len(f.ExcludeIDs))+`)`)
		for _, id := range f.ExcludeIDs {
			args = append(args, id)
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(conds, " AND "), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// UpdateEbook overwrites a record's mutable fields.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) UpdateEbook(ctx context.Context, e *domain.Ebook) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE ebooks SET
			updated_at = ?, title = ?, author = ?, path = ?, format = ?, size = ?,
			category = ?, sub_genre = ?, embedded_genre = ?, publisher = ?,
			language = ?, description = ?, published_date = ?
		WHERE id = ?`,
		formatTime(e.UpdatedAt),
		e.Title,
		nullString(e.Author),
		e.Path,
		e.Format,
		e.Size,
		nullString(e.Category),
		nullString(e.SubGenre),
		nullString(e.EmbeddedGenre),
		nullString(e.Publisher),
		nullString(e.Language),
		nullString(e.Description),
		nullString(e.PublishedDate),
		e.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.AlreadyExists("path "+e.Path, err)
		}
		return fmt.Errorf("update ebook: %w", err)
	}
	return requireRow(res, "ebook "+e.ID)
}

// DeleteEbook removes a record.
func (s *Store) DeleteEbook(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ebooks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete ebook: %w", err)
	}
	return requireRow(res, "ebook "+id)
}

func requireRow(res sql.Result, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.NotFound(key)
	}
	return nil
}

// CountClassifications tallies coverage for records under pathPrefix.
// An empty prefix counts the whole library.
func (s *Store) CountClassifications(ctx context.Context, pathPrefix string) (*store.ClassificationCounts, error) {
	where, args := filterClause(store.EbookFilter{PathPrefix: pathPrefix})

	counts := &store.ClassificationCounts{
		ByCategory: make(map[string]int),
		BySubGenre: make(map[string]int),
	}

	var unclassified int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN `+unclassifiedClause+` THEN 1 ELSE 0 END), 0)
		FROM ebooks`+where, args...).Scan(&counts.Total, &unclassified)
	if err != nil {
		return nil, fmt.Errorf("count ebooks: %w", err)
	}
	counts.Classified = counts.Total - unclassified

	if err := s.groupCount(ctx, "category", where, args, counts.ByCategory); err != nil {
		return nil, err
	}
	if err := s.groupCount(ctx, "sub_genre", where, args, counts.BySubGenre); err != nil {
		return nil, err
	}
	return counts, nil
}

// groupCount fills into with per-value counts of column, skipping empty
// values. column is one of a fixed set, never user input.
func (s *Store) groupCount(ctx context.Context, column, where string, args []any, into map[string]int) error {
	cond := column + ` IS NOT NULL AND ` + column + ` != ''`
	if where == "" {
		where = ` WHERE ` + cond
	} else {
		where += ` AND ` + cond
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) FROM ebooks`+where+` GROUP BY `+column, args...)
	if err != nil {
		return fmt.Errorf("count by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name string
			n    int
		)
		if err := rows.Scan(&name, &n); err != nil {
			return fmt.Errorf("scan %s count: %w", column, err)
		}
		into[name] = n
	}
	return rows.Err()
}

// UpdatePaths rewrites stored paths in one transaction. Either every update
// lands or none does.
func (s *Store) UpdatePaths(ctx context.Context, updates []store.PathUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	now := formatTime(timeNow())
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE ebooks SET path = ?, updated_at = ? WHERE id = ?`)
		if err != nil {
			return fmt.Errorf("prepare path update: %w", err)
		}
		defer stmt.Close()

		for _, u := range updates {
			res, err := stmt.ExecContext(ctx, u.Path, now, u.ID)
			if err != nil {
				return fmt.Errorf("update path for %s: %w", u.ID, err)
			}
			if err := requireRow(res, "ebook "+u.ID); err != nil {
				return fmt.Errorf("update path for %s: %w", u.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("stored paths updated", "count", len(updates))
	return nil
}

var _ store.EbookStore = (*Store)(nil)
