// Package catalog holds the built-in report queries served by the web app.
//
// Report SQL is written in canonical form: SQLite flavor, mixed-case
// identifiers unquoted, ? placeholders. The dialect adapter rewrites it for
// Postgres at execution time. The one exception is the table listing, which
// has no canonical form because it reads the engine's own metadata catalog.
package catalog

import "github.com/giddr/aectransparencyreader/internal/dialect"

// Report is one canned query shown on the landing page.
type Report struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SQL         string `json:"sql"`
}

var reports = []Report{
	{
		ID:          "top_donors_2025",
		Name:        "Top 10 Donors - 2025 Election",
		Description: "Shows the biggest donors in the 2025 Federal Election",
		SQL: `
            SELECT
                Donor_Name,
                SUM(Donated_To_Gift_Value) as Total_Donated,
                COUNT(*) as Number_of_Donations
            FROM election_Donor_Donations_Made
            WHERE Event = '2025 Federal Election'
            GROUP BY Donor_Name
            ORDER BY Total_Donated DESC
            LIMIT 10`,
	},
	{
		ID:          "party_funding_2023_24",
		Name:        "Party Funding Summary - 2023-24",
		Description: "Total receipts and payments by political party",
		SQL: `
            SELECT
                Name,
                Total_Receipts,
                Total_Payments,
                Total_Debts,
                (Total_Receipts - Total_Payments) as Net_Position
            FROM annual_Party_Returns
            WHERE Financial_Year = '2023-24'
            ORDER BY Total_Receipts DESC`,
	},
	{
		ID:          "media_spending_2025",
		Name:        "Media Advertisement Spending - 2025",
		Description: "Media spending by advertiser in 2025 election",
		SQL: `
            SELECT
                Advertiser,
                Advertiser_Type,
                COUNT(*) as Ad_Count,
                SUM(Amount) as Total_Spent
            FROM election_Media_Advertisement_Details
            WHERE Event = '2025 Federal Election'
            GROUP BY Advertiser, Advertiser_Type
            ORDER BY Total_Spent DESC
            LIMIT 20`,
	},
	{
		ID:          "candidate_donations_2025",
		Name:        "Top Funded Candidates - 2025",
		Description: "Candidates with highest donation totals",
		SQL: `
            SELECT
                Name,
                Party_Name,
                Electorate_Name,
                Total_Gift_Value,
                Number_Of_Donors,
                Total_Electoral_Expenditure
            FROM election_Senate_Groups_and_Candidate_Return_Summary
            WHERE Event = '2025 Federal Election'
                AND Total_Gift_Value > 0
            ORDER BY Total_Gift_Value DESC
            LIMIT 20`,
	},
	{
		ID:          "mp_donations",
		Name:        "Member of Parliament Donations - 2023-24",
		Description: "Independent MPs and their donation receipts",
		SQL: `
            SELECT
                Name,
                Total_Donations_Received,
                Number_of_Donors
            FROM annual_MemberOfParliamentReturns
            WHERE Financial_Year = '2023-24'
            ORDER BY Total_Donations_Received DESC`,
	},
	{
		ID:          "third_party_spending",
		Name:        "Third Party Electoral Spending - 2023-24",
		Description: "Organizations that spent on electoral activities",
		SQL: `
            SELECT
                Name,
                Total_Receipts,
                Total_Payments,
                Electoral_Expenditure
            FROM annual_Significant_Third_Party_Returns
            WHERE Financial_Year = '2023-24'
                AND Electoral_Expenditure > 0
            ORDER BY Electoral_Expenditure DESC`,
	},
	{
		ID:          "donor_recipients",
		Name:        "Climate 200 Donations - 2025",
		Description: "Who received donations from Climate 200",
		SQL: `
            SELECT
                Donated_To,
                Donated_To_Date_Of_Gift as Date,
                Donated_To_Gift_Value as Amount
            FROM election_Donor_Donations_Made
            WHERE Donor_Name = 'Climate 200 Pty Limited'
                AND Event = '2025 Federal Election'
            ORDER BY Donated_To_Gift_Value DESC`,
	},
	{
		ID:          "party_debts",
		Name:        "Party Debts - 2023-24",
		Description: "Political parties with outstanding debts",
		SQL: `
            SELECT
                Name,
                Total_Receipts,
                Total_Payments,
                Total_Debts
            FROM annual_Party_Returns
            WHERE Financial_Year = '2023-24'
                AND Total_Debts > 0
            ORDER BY Total_Debts DESC`,
	},
}

// allTables builds the table-listing report for a dialect. It is the only
// report whose SQL differs per engine.
func allTables(d dialect.Dialect) Report {
	sql := `
            SELECT
                name as Table_Name,
                type as Type
            FROM sqlite_master
            WHERE type='table'
            ORDER BY name`
	if d == dialect.Postgres {
		sql = `
            SELECT
                tablename as Table_Name,
                'table' as Type
            FROM pg_tables
            WHERE schemaname='public'
            ORDER BY tablename`
	}
	return Report{
		ID:          "all_tables",
		Name:        "List All Database Tables",
		Description: "Shows all available tables in the database",
		SQL:         sql,
	}
}

// All returns every report in display order for a dialect.
func All(d dialect.Dialect) []Report {
	out := make([]Report, 0, len(reports)+1)
	out = append(out, reports...)
	out = append(out, allTables(d))
	return out
}

// Get looks up one report by ID.
func Get(d dialect.Dialect, id string) (Report, bool) {
	for _, r := range All(d) {
		if r.ID == id {
			return r, true
		}
	}
	return Report{}, false
}
