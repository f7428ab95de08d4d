package investor

// Record is a joined investor document: who invested, and the description of
// every company in its portfolio keyed by company name.
type Record struct {
	id           string
	name         string
	descriptions map[string]string
}

// New creates an investor record.
func New(id, name string, descriptions map[string]string) Record {
	if descriptions == nil {
		descriptions = map[string]string{}
	}
	return Record{id: id, name: name, descriptions: descriptions}
}

// ID returns the record identifier.
func (r *Record) ID() string { return r.id }

// Name returns the investor name.
func (r *Record) Name() string { return r.name }

// Description returns the portfolio description of a company.
func (r *Record) Description(company string) (string, bool) {
	d, ok := r.descriptions[company]
	return d, ok
}
