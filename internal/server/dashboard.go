package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]float64{
		"total_donations": s.scalar(r, 0,
			"SELECT SUM(Total_Donations_Made) as total FROM annual_Donor_Returns WHERE Financial_Year = '2023-24'"),
		"total_parties": s.scalar(r, 0,
			"SELECT COUNT(*) as count FROM annual_Party_Returns WHERE Financial_Year = '2023-24'"),
		"total_donors": s.scalar(r, 0,
			"SELECT COUNT(*) as count FROM annual_Donor_Returns WHERE Financial_Year = '2023-24'"),
		"total_candidates": s.scalar(r, 0,
			"SELECT COUNT(*) as count FROM election_Senate_Groups_and_Candidate_Return_Summary WHERE Event = '2025 Federal Election'"),
	}

	s.writeJSON(w, struct {
		Success bool               `json:"success"`
		Data    map[string]float64 `json:"data"`
	}{true, stats})
}

var dashboardSections = map[string]string{
	"top-donors": `
            SELECT
                Donor_Name as Name,
                SUM(Donated_To_Gift_Value) as Amount,
                COUNT(*) as Donations
            FROM election_Donor_Donations_Made
            WHERE Event = '2025 Federal Election'
            GROUP BY Donor_Name
            ORDER BY Amount DESC
            LIMIT 10`,
	"party-funding": `
            SELECT
                Name,
                Total_Receipts,
                Total_Payments,
                Total_Debts
            FROM annual_Party_Returns
            WHERE Financial_Year = '2023-24'
            ORDER BY Total_Receipts DESC
            LIMIT 10`,
	"recent-donations": `
            SELECT
                Donor_Name,
                Donation_Made_To as Recipient,
                Value as Amount,
                Date
            FROM annual_Donations_Made
            WHERE Financial_Year = '2023-24'
                AND Value > 10000
            ORDER BY Date DESC
            LIMIT 10`,
	"top-candidates": `
            SELECT
                Name,
                Party_Name,
                Total_Gift_Value as Amount,
                Number_Of_Donors as Donors
            FROM election_Senate_Groups_and_Candidate_Return_Summary
            WHERE Event = '2025 Federal Election'
                AND Total_Gift_Value > 0
            ORDER BY Total_Gift_Value DESC
            LIMIT 10`,
	"third-party": `
            SELECT
                Name,
                Electoral_Expenditure as Spending,
                Total_Receipts as Receipts
            FROM annual_Significant_Third_Party_Returns
            WHERE Financial_Year = '2023-24'
                AND Electoral_Expenditure > 0
            ORDER BY Electoral_Expenditure DESC
            LIMIT 10`,
	"mp-donations": `
            SELECT
                Name,
                Total_Donations_Received as Amount,
                Number_of_Donors as Donors
            FROM annual_MemberOfParliamentReturns
            WHERE Financial_Year = '2023-24'
            ORDER BY Total_Donations_Received DESC`,
}

func (s *Server) handleDashboardSection(w http.ResponseWriter, r *http.Request) {
	section := mux.Vars(r)["section"]
	sql, ok := dashboardSections[section]
	if !ok {
		s.fail(w, "Invalid section")
		return
	}
	s.writeJSON(w, s.execute(r, sql))
}

// insight is one generated headline with its backing numbers.
type insight struct {
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Stats       map[string]any `json:"stats"`
	Description string         `json:"description"`
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	insights := []insight{}

	// Party vs independent funding split in 2025.
	qr := s.execute(r, `
        SELECT
            CASE
                WHEN Party_Name IS NULL OR Party_Name = '' THEN 'Independent'
                ELSE 'Party-Affiliated'
            END as Category,
            SUM(Total_Gift_Value) as Total,
            COUNT(*) as Count
        FROM election_Senate_Groups_and_Candidate_Return_Summary
        WHERE Event = '2025 Federal Election'
        GROUP BY Category`)
	if qr.Success && len(qr.Data) > 0 {
		var totalAll float64
		for _, row := range qr.Data {
			if v, ok := asFloat(row.Value("Total")); ok {
				totalAll += v
			}
		}
		for _, row := range qr.Data {
			if asString(row.Value("Category")) != "Independent" {
				continue
			}
			independentTotal, _ := asFloat(row.Value("Total"))
			var pct float64
			if totalAll > 0 {
				pct = independentTotal / totalAll * 100
			}
			pct = round1(pct)
			insights = append(insights, insight{
				Type:  "party_split",
				Title: "2025 Election: Independent Surge",
				Stats: map[string]any{
					"independent_pct":   pct,
					"independent_total": independentTotal,
					"total":             totalAll,
				},
				Description: fmt.Sprintf("The 2025 Federal Election shows %v%% of candidate funding went to independents, totaling %s.",
					pct, formatDollars(independentTotal)),
			})
		}
	}

	// Top donor in 2025.
	qr = s.execute(r, `
        SELECT Donor_Name, SUM(Donated_To_Gift_Value) as Total
        FROM election_Donor_Donations_Made
        WHERE Event = '2025 Federal Election'
        GROUP BY Donor_Name
        ORDER BY Total DESC
        LIMIT 1`)
	if qr.Success && len(qr.Data) > 0 {
		donor := asString(qr.Data[0].Value("Donor_Name"))
		amount, _ := asFloat(qr.Data[0].Value("Total"))
		insights = append(insights, insight{
			Type:  "top_donor",
			Title: "Largest Donor - 2025",
			Stats: map[string]any{
				"donor":  donor,
				"amount": amount,
			},
			Description: fmt.Sprintf("%s contributed %s in the 2025 election.", donor, formatDollars(amount)),
		})
	}

	// Third party electoral spending.
	qr = s.execute(r, `
        SELECT SUM(Electoral_Expenditure) as Total, COUNT(*) as Count
        FROM annual_Significant_Third_Party_Returns
        WHERE Financial_Year = '2023-24' AND Electoral_Expenditure > 0`)
	if qr.Success && len(qr.Data) > 0 {
		if total, ok := asFloat(qr.Data[0].Value("Total")); ok && total != 0 {
			count, _ := asFloat(qr.Data[0].Value("Count"))
			insights = append(insights, insight{
				Type:  "dark_money",
				Title: "Third Party Electoral Spending",
				Stats: map[string]any{
					"total": total,
					"count": count,
				},
				Description: fmt.Sprintf("%v third party entities spent %s on electoral activities in 2023-24.",
					count, formatDollars(total)),
			})
		}
	}

	// Highest party debt.
	qr = s.execute(r, `
        SELECT Name, Total_Debts
        FROM annual_Party_Returns
        WHERE Financial_Year = '2023-24' AND Total_Debts > 0
        ORDER BY Total_Debts DESC
        LIMIT 1`)
	if qr.Success && len(qr.Data) > 0 {
		name := asString(qr.Data[0].Value("Name"))
		debt, _ := asFloat(qr.Data[0].Value("Total_Debts"))
		insights = append(insights, insight{
			Type:  "party_debt",
			Title: "Highest Party Debt",
			Stats: map[string]any{
				"party": name,
				"debt":  debt,
			},
			Description: fmt.Sprintf("%s carries the highest debt at %s.", name, formatDollars(debt)),
		})
	}

	s.writeJSON(w, struct {
		Success  bool      `json:"success"`
		Insights []insight `json:"insights"`
	}{true, insights})
}

// story is one algorithmic highlight on the top-stories feed.
type story struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Change      float64 `json:"change,omitempty"`
	Donor       string  `json:"donor,omitempty"`
	Party       string  `json:"party,omitempty"`
	Entity      string  `json:"entity,omitempty"`
}

func (s *Server) handleTopStories(w http.ResponseWriter, r *http.Request) {
	stories := []story{}

	// Funding shift: independents 2025 vs 2022. The four majors are excluded
	// by recipient name.
	const majorExclusion = `
                AND Donated_To NOT IN ('AUSTRALIAN LABOR PARTY', 'LIBERAL PARTY OF AUSTRALIA',
                                       'THE NATIONALS', 'THE GREENS')`
	total2025 := s.scalar(r, 0, `
            SELECT SUM(Donated_To_Gift_Value) as total
            FROM election_Donor_Donations_Made
            WHERE Event = '2025 Federal Election'`+majorExclusion)
	total2022 := s.scalar(r, 1, `
            SELECT SUM(Donated_To_Gift_Value) as total
            FROM election_Donor_Donations_Made
            WHERE Event = '2022 Federal Election'`+majorExclusion)
	if total2025 != 0 && total2022 != 0 {
		pctChange := (total2025 - total2022) / total2022 * 100
		stories = append(stories, story{
			Title: "Independent Funding Surge",
			Description: fmt.Sprintf("Independent candidates received %s in 2025, a %+.1f%% change from 2022",
				formatDollars(total2025), pctChange),
			Type:   "shift",
			Amount: total2025,
			Change: pctChange,
		})
	}

	// Largest donor that first appeared in 2025.
	qr := s.execute(r, `
            SELECT
                Donor_Name,
                SUM(Donated_To_Gift_Value) as Total_Donated
            FROM election_Donor_Donations_Made
            WHERE Event = '2025 Federal Election'
                AND Donor_Name NOT IN (
                    SELECT DISTINCT Donor_Name
                    FROM election_Donor_Donations_Made
                    WHERE Event = '2022 Federal Election'
                )
            GROUP BY Donor_Name
            ORDER BY Total_Donated DESC
            LIMIT 1`)
	if qr.Success && len(qr.Data) > 0 {
		donor := asString(qr.Data[0].Value("Donor_Name"))
		amount, _ := asFloat(qr.Data[0].Value("Total_Donated"))
		stories = append(stories, story{
			Title:       "Largest New Donor",
			Description: fmt.Sprintf("%s donated %s in their first appearance", donor, formatDollars(amount)),
			Type:        "new_donor",
			Donor:       donor,
			Amount:      amount,
		})
	}

	// Most indebted party.
	qr = s.execute(r, `
            SELECT
                Name,
                Total_Debts
            FROM annual_Party_Returns
            WHERE Financial_Year = '2023-24'
                AND Total_Debts IS NOT NULL
            ORDER BY Total_Debts DESC
            LIMIT 1`)
	if qr.Success && len(qr.Data) > 0 {
		name := asString(qr.Data[0].Value("Name"))
		amount, _ := asFloat(qr.Data[0].Value("Total_Debts"))
		stories = append(stories, story{
			Title:       "Highest Party Debt",
			Description: fmt.Sprintf("%s reported %s in debts for 2023-24", name, formatDollars(amount)),
			Type:        "debt",
			Party:       name,
			Amount:      amount,
		})
	}

	// Highest third party spending over the disclosure threshold.
	qr = s.execute(r, `
            SELECT
                Name,
                Total_Electoral_Expenditure
            FROM annual_Significant_Third_Party_Returns
            WHERE Financial_Year = '2023-24'
                AND Total_Electoral_Expenditure > 100000
            ORDER BY Total_Electoral_Expenditure DESC
            LIMIT 1`)
	if qr.Success && len(qr.Data) > 0 {
		name := asString(qr.Data[0].Value("Name"))
		amount, _ := asFloat(qr.Data[0].Value("Total_Electoral_Expenditure"))
		stories = append(stories, story{
			Title:       "Highest Dark Money Spending",
			Description: fmt.Sprintf("%s spent %s on electoral activities", name, formatDollars(amount)),
			Type:        "dark_money",
			Entity:      name,
			Amount:      amount,
		})
	}

	s.writeJSON(w, struct {
		Success     bool    `json:"success"`
		Stories     []story `json:"stories"`
		GeneratedAt string  `json:"generated_at"`
	}{true, stories, s.now().Format("2006-01-02T15:04:05")})
}

func round1(v float64) float64 {
	if v < 0 {
		return -round1(-v)
	}
	return float64(int64(v*10+0.5)) / 10
}
