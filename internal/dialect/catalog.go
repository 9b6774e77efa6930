package dialect

import "sync"

// IdentKind classifies a cataloged identifier.
type IdentKind int

const (
	KindTable IdentKind = iota + 1
	KindColumn
)

// Catalog is the set of canonical identifiers the adapter knows how to quote:
// mixed-case table names, column names, and result aliases. Identifiers
// absent from the catalog pass through unquoted; on PostgreSQL they then fold
// to lower case and may fail to resolve.
//
// A Catalog is built once at startup and extended when ingestion creates a
// new table. Uploads register identifiers while queries resolve them, so
// access is guarded internally.
type Catalog struct {
	mu     sync.RWMutex
	idents map[string]IdentKind
}

func NewCatalog() *Catalog {
	return &Catalog{idents: make(map[string]IdentKind)}
}

// AddTable registers a canonical table name.
func (c *Catalog) AddTable(name string) {
	if name == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.idents[name] = KindTable
}

// AddColumns registers canonical column names (or aliases). A name already
// registered as a table keeps its table kind.
func (c *Catalog) AddColumns(names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, exists := c.idents[n]; !exists {
			c.idents[n] = KindColumn
		}
	}
}

// Kind reports whether name is cataloged and as what.
func (c *Catalog) Kind(name string) (IdentKind, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	k, ok := c.idents[name]
	return k, ok
}

// Default returns the catalog seeded with the disclosure schema: every
// canonical table and column referenced by the report catalog and the request
// handlers, plus the result aliases those queries project.
func Default() *Catalog {
	c := NewCatalog()

	for _, t := range []string{
		"election_Donor_Donations_Made",
		"election_Media_Advertisement_Details",
		"election_Senate_Groups_and_Candidate_Return_Summary",
		"annual_Party_Returns",
		"annual_MemberOfParliamentReturns",
		"annual_Significant_Third_Party_Returns",
		"annual_Donor_Returns",
		"annual_Donations_Made",
	} {
		c.AddTable(t)
	}

	c.AddColumns(
		// Source columns.
		"Donor_Name", "Donated_To", "Donated_To_Gift_Value", "Donated_To_Date_Of_Gift",
		"Event", "Name", "Party_Name", "Electorate_Name",
		"Total_Receipts", "Total_Payments", "Total_Debts", "Financial_Year",
		"Advertiser", "Advertiser_Type", "Amount",
		"Total_Gift_Value", "Number_Of_Donors", "Number_of_Donors",
		"Total_Electoral_Expenditure", "Electoral_Expenditure",
		"Total_Donations_Received", "Total_Donations_Made",
		"Donation_Made_To", "Value", "Date",

		// Aliases projected by reports and handlers. Quoting these keeps the
		// result keys mixed-case on PostgreSQL.
		"Total_Donated", "Number_of_Donations", "Net_Position",
		"Ad_Count", "Total_Spent", "Total", "Count", "Category",
		"Recipient", "Period", "Type", "Donations", "Donors",
		"Spending", "Receipts", "Table_Name",
	)

	return c
}
