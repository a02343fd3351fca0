package dialect

// UpsertStyle names the syntax variant a family uses for upserts.
type UpsertStyle string

// Upsert syntax variants.
const (
	UpsertOnConflict     UpsertStyle = "on_conflict"
	UpsertOnDuplicateKey UpsertStyle = "on_duplicate_key"
)

// Capabilities is the static per-family feature matrix. It is queried,
// never mutated, at call sites before emitting optional syntax; absence
// of a capability degrades gracefully (for example, omit RETURNING and
// perform a follow-up SELECT) rather than emitting invalid SQL.
type Capabilities struct {
	Schemas           bool
	Returning         bool
	Upsert            UpsertStyle
	Views             bool
	MaterializedViews bool
	PartialIndexes    bool
	JSON              bool
	Arrays            bool
	FullTextSearch    bool
	Savepoints        bool

	MaxIdentifierLength int
}
