package counciltax

const (
	ColumnName    = "name"
	ColumnCouncil = "Council"
)

// Entity is a single administrative area (a parish or a town) whose charges
// are being collected. Code is only set by calculator sources, Url only by
// link listings.
type Entity struct {
	Code      string
	Name      string
	Url       string
	Authority string
}

// Record is the flat column -> value mapping for one entity. It may carry keys
// outside of the output schema, those are dropped on write.
type Record map[string]string

// NewRecord seeds a record with the identity and authority columns.
func NewRecord(e Entity) Record {
	return Record{
		ColumnName:    e.Name,
		ColumnCouncil: e.Authority,
	}
}

func (r Record) Set(column, value string) {
	r[column] = value
}

func (r Record) Get(column string) string {
	return r[column]
}

func (r Record) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// MissingBands returns the bands that have no value in the record.
func (r Record) MissingBands() []Band {
	var missing []Band
	for _, b := range Bands {
		if !r.Has(b.Column()) {
			missing = append(missing, b)
		}
	}
	return missing
}

// Values projects the record onto the schema, unknown keys are dropped and
// absent columns render as the empty string.
func (r Record) Values(schema Schema) []string {
	values := make([]string, len(schema))
	for i, column := range schema {
		values[i] = r[column]
	}
	return values
}

// Schema is the ordered list of columns written for every record.
type Schema []string

// CouncilFirst is the layout used by the calculator sites:
// name, Council, Band A ... Band H.
func CouncilFirst() Schema {
	schema := Schema{ColumnName, ColumnCouncil}
	return append(schema, BandColumns()...)
}

// CouncilLast is the layout used by the directory listing sites:
// name, Band A ... Band H, Council.
func CouncilLast() Schema {
	schema := Schema{ColumnName}
	schema = append(schema, BandColumns()...)
	return append(schema, ColumnCouncil)
}

func (s Schema) Contains(column string) bool {
	for _, c := range s {
		if c == column {
			return true
		}
	}
	return false
}
