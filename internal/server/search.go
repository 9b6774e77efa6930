package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/giddr/aectransparencyreader/internal/store"
)

// searchSources are the three tables searched by name, each projected onto
// the same Donor/Recipient/Amount/Date/Period/Type shape so the results
// concatenate cleanly.
var searchSources = []string{
	`
        SELECT
            Donor_Name as Donor,
            Donated_To as Recipient,
            Donated_To_Gift_Value as Amount,
            Donated_To_Date_Of_Gift as Date,
            '2025 Federal Election' as Period,
            'Election Donation' as Type
        FROM election_Donor_Donations_Made
        WHERE (Donor_Name LIKE ? OR Donated_To LIKE ?)
            AND Event = '2025 Federal Election'
        ORDER BY Donated_To_Gift_Value DESC
        LIMIT 50`,
	`
        SELECT
            Donor_Name as Donor,
            Donated_To as Recipient,
            Donated_To_Gift_Value as Amount,
            Donated_To_Date_Of_Gift as Date,
            '2022 Federal Election' as Period,
            'Election Donation' as Type
        FROM election_Donor_Donations_Made
        WHERE (Donor_Name LIKE ? OR Donated_To LIKE ?)
            AND Event = '2022 Federal Election'
        ORDER BY Donated_To_Gift_Value DESC
        LIMIT 50`,
	`
        SELECT
            Donor_Name as Donor,
            Donation_Made_To as Recipient,
            Value as Amount,
            Date,
            Financial_Year as Period,
            'Annual Donation' as Type
        FROM annual_Donations_Made
        WHERE (Donor_Name LIKE ? OR Donation_Made_To LIKE ?)
            AND Financial_Year = '2023-24'
        ORDER BY Value DESC
        LIMIT 50`,
}

const searchResultCap = 100

type searchSummary struct {
	TotalTransactions int     `json:"total_transactions"`
	TotalAmount       float64 `json:"total_amount"`
	UniqueDonors      int     `json:"unique_donors"`
	UniqueRecipients  int     `json:"unique_recipients"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < 2 {
		s.fail(w, "Search query must be at least 2 characters")
		return
	}
	pattern := "%" + query + "%"

	var transactions []store.Row
	for _, sql := range searchSources {
		qr := s.execute(r, sql, pattern, pattern)
		if qr.Success {
			transactions = append(transactions, qr.Data...)
		}
	}

	summary := searchSummary{TotalTransactions: len(transactions)}
	donors := map[string]bool{}
	recipients := map[string]bool{}
	for _, t := range transactions {
		if v, ok := asFloat(t.Value("Amount")); ok {
			summary.TotalAmount += v
		}
		if d := asString(t.Value("Donor")); d != "" {
			donors[d] = true
		}
		if rec := asString(t.Value("Recipient")); rec != "" {
			recipients[rec] = true
		}
	}
	summary.UniqueDonors = len(donors)
	summary.UniqueRecipients = len(recipients)

	if len(transactions) > searchResultCap {
		transactions = transactions[:searchResultCap]
	}
	if transactions == nil {
		transactions = []store.Row{}
	}

	s.writeJSON(w, struct {
		Success      bool          `json:"success"`
		Transactions []store.Row   `json:"transactions"`
		Summary      searchSummary `json:"summary"`
	}{true, transactions, summary})
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "2025"
	}
	minAmount, err := strconv.Atoi(r.URL.Query().Get("minAmount"))
	if err != nil {
		minAmount = 0
	}

	var sql string
	var args []any
	switch period {
	case "2025", "2022":
		sql = `
            SELECT
                Donor_Name as Name,
                Donated_To as Recipient,
                Donated_To_Gift_Value as Amount,
                Donated_To_Date_Of_Gift as Date,
                'Donation' as Type
            FROM election_Donor_Donations_Made
            WHERE Event = ?`
		args = append(args, period+" Federal Election")
		if minAmount > 0 {
			sql += " AND Donated_To_Gift_Value >= ?"
			args = append(args, minAmount)
		}
		sql += " ORDER BY Donated_To_Gift_Value DESC LIMIT 100"

	case "2023-24":
		sql = `
            SELECT
                Donor_Name as Name,
                Donation_Made_To as Recipient,
                Value as Amount,
                Date,
                'Annual Donation' as Type
            FROM annual_Donations_Made
            WHERE Financial_Year = '2023-24'`
		if minAmount > 0 {
			sql += " AND Value >= ?"
			args = append(args, minAmount)
		}
		sql += " ORDER BY Value DESC LIMIT 100"

	default:
		sql = `
            SELECT
                Donor_Name as Name,
                Donation_Made_To as Recipient,
                Value as Amount,
                Date,
                Financial_Year as Period
            FROM annual_Donations_Made
            WHERE Value >= ?
            ORDER BY Value DESC
            LIMIT 100`
		args = append(args, minAmount)
	}

	s.writeJSON(w, s.execute(r, sql, args...))
}
