package core

// TableKind distinguishes tables from views in catalog listings.
type TableKind string

// Catalog object kinds.
const (
	TableKindTable TableKind = "table"
	TableKindView  TableKind = "view"
)

// TableInfo describes one table or view. Schema is empty for families
// without schema support (SQLite).
type TableInfo struct {
	Name   string
	Kind   TableKind
	Schema string
}

// ColumnInfo is the normalized column description across all families.
// Default is nil when the column has no default.
type ColumnInfo struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
	Default    *string
}

// IndexInfo is the normalized index description across all families.
// Definition and Size are best-effort and may be empty where the family
// catalog does not expose them.
type IndexInfo struct {
	Name       string
	Primary    bool
	Unique     bool
	Definition string
	Size       string
}

// ServerMetadata describes the connected server and database.
type ServerMetadata struct {
	Version   string
	Database  string
	SizeBytes int64
	Encoding  string
}
