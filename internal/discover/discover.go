// Package discover finds downloadable CSV exports on AEC Transparency
// Register listing pages.
package discover

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link is one discovered CSV download.
type Link struct {
	// URL is absolute, resolved against the page URL.
	URL string

	// Text is the anchor text, whitespace-collapsed. Often the dataset name.
	Text string
}

// CSVLinks parses an HTML page and returns every anchor pointing at a .csv
// resource, resolved against base. Duplicate targets are returned once, first
// occurrence wins.
func CSVLinks(r io.Reader, base *url.URL) ([]Link, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("discover: parse html: %w", err)
	}

	var out []Link
	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || !isCSV(href) {
			return
		}

		u, err := url.Parse(href)
		if err != nil {
			return
		}
		if base != nil {
			u = base.ResolveReference(u)
		}
		abs := u.String()
		if seen[abs] {
			return
		}
		seen[abs] = true

		out = append(out, Link{
			URL:  abs,
			Text: strings.Join(strings.Fields(s.Text()), " "),
		})
	})
	return out, nil
}

// isCSV matches on the URL path so query strings and fragments do not hide
// the extension.
func isCSV(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".csv")
}
