package fixtures

import (
	"database/sql"
	"fmt"

	"github.com/glennpierce/go-haystack/filter"
	"github.com/glennpierce/go-haystack/zinc"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// LoadSQLiteDataset reads an entity/tag dataset out of a SQLite file
// containing a single table:
//
//	entity(ref TEXT, tag TEXT, value TEXT)
//
// one row per tag: value NULL (or the empty string) denotes a marker tag,
// a value beginning with "@" denotes a Ref, a value beginning with "#"
// denotes a Number (the rest of the string is the decimal literal),
// everything else an EscapedString. This is the query/scan shape database/sqlite3's
// TableNames/DumpTableDDL uses for the teacher's own DDL dump, generalized
// here from schema introspection to entity rows; it proves the evaluator
// runs unchanged against a dataset sourced from persistent storage even
// though the core itself never opens a database (spec.md §5).
//
// Driver: modernc.org/sqlite, the teacher's own pure Go, cgo-free SQLite
// driver (the teacher's database/sqlite3 package instead uses the cgo
// mattn/go-sqlite3 driver for its DDL-dump use case; fixtures has no DDL
// surface to dump, so the pure Go driver is preferred here).
func LoadSQLiteDataset(path string) (filter.RefTags, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: opening %q: %w", path, err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT ref, tag, value FROM entity ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("fixtures: querying entity table: %w", err)
	}
	defer rows.Close()

	order := []string{}
	tagsByRef := map[string]zinc.Tags{}
	for rows.Next() {
		var ref, tag string
		var value sql.NullString
		if err := rows.Scan(&ref, &tag, &value); err != nil {
			return nil, fmt.Errorf("fixtures: scanning entity row: %w", err)
		}
		if _, ok := tagsByRef[ref]; !ok {
			order = append(order, ref)
		}
		if !value.Valid || value.String == "" {
			tagsByRef[ref] = append(tagsByRef[ref], zinc.NewMarkerTag(zinc.NewID(tag)))
			continue
		}
		tok, err := tokenFromSQLiteValue(value.String)
		if err != nil {
			return nil, fmt.Errorf("fixtures: entity %q tag %q: %w", ref, tag, err)
		}
		tagsByRef[ref] = append(tagsByRef[ref], zinc.NewTag(zinc.NewID(tag), zinc.NewTokenVal(tok)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fixtures: reading entity rows: %w", err)
	}

	out := make(filter.RefTags, 0, len(order))
	for _, ref := range order {
		out = append(out, filter.RefTag{Ref: zinc.NewRef(ref), Tags: tagsByRef[ref]})
	}
	return out, nil
}

func tokenFromSQLiteValue(s string) (zinc.Token, error) {
	switch {
	case s[0] == '@':
		return zinc.NewRef(s[1:]), nil
	case s[0] == '#':
		d, err := decimal.NewFromString(s[1:])
		if err != nil {
			return zinc.Token{}, fmt.Errorf("invalid number literal %q: %w", s, err)
		}
		return zinc.NewNumber(d, ""), nil
	default:
		return zinc.NewEscapedString(s), nil
	}
}

// BuildSampleSQLiteDataset creates a SQLite file at path containing the
// spec.md §8 end-to-end dataset, for tests that want to prove
// LoadSQLiteDataset round-trips a real file without shipping a checked-in
// binary fixture.
func BuildSampleSQLiteDataset(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("fixtures: creating %q: %w", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE entity (ref TEXT NOT NULL, tag TEXT NOT NULL, value TEXT)`); err != nil {
		return fmt.Errorf("fixtures: creating entity table: %w", err)
	}

	stmt, err := db.Prepare(`INSERT INTO entity (ref, tag, value) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("fixtures: preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range sampleEndToEndRows {
		if _, err := stmt.Exec(row[0], row[1], row[2]); err != nil {
			return fmt.Errorf("fixtures: inserting %v: %w", row, err)
		}
	}
	return nil
}

// sampleEndToEndRows is spec.md §8's end-to-end dataset flattened to
// (ref, tag, value) triples; an empty value string denotes a marker tag.
var sampleEndToEndRows = [][3]string{
	{"1", "dis", "One"}, {"1", "elec", ""}, {"1", "heat", ""}, {"1", "water", ""},
	{"1", "geoCity", "Chicago"}, {"1", "equipRef", "@2"},
	{"2", "dis", "Two"}, {"2", "pointRef", "@9"},
	{"3", "dis", "Three"}, {"3", "elec", ""}, {"3", "heat", ""}, {"3", "siteRef", "@1"},
	{"4", "dis", "Four"}, {"4", "heat", ""}, {"4", "geoCity", "London"}, {"4", "equipRef", "@7"},
	{"5", "dis", "Five"}, {"5", "elec", ""}, {"5", "heat", ""}, {"5", "water", ""}, {"5", "siteRef", "@2"},
	{"6", "dis", "Six"}, {"6", "siteRef", "@4"},
	{"7", "dis", "Seven"}, {"7", "pointRef", "@8"},
	{"8", "dis", "Eight"},
	{"9", "dis", "Nine"},
	{"10", "dis", "Ten"}, {"10", "siteRef", "@11"},
	{"11", "dis", "Eleven"}, {"11", "geoCounty", "Cornwall"}, {"11", "carnego_number_of_bedrooms", "#3.0"}, {"11", "equipRef", "@7"},
}
