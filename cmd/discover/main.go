// Command discover lists or downloads the CSV exports linked from an AEC
// Transparency Register page.
//
//	discover -url https://transparency.aec.gov.au/Download/Index
//	discover -url ... -dir ./AllAnnualData
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/giddr/aectransparencyreader/internal/discover"
)

func main() {
	var (
		pageURL string
		dir     string
	)
	flag.StringVar(&pageURL, "url", "", "listing page URL (required)")
	flag.StringVar(&dir, "dir", "", "download directory; when empty, links are printed only")
	flag.Parse()

	if pageURL == "" {
		fatalf("usage: discover -url <page> [-dir <download dir>]")
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		fatalf("bad url %q: %v", pageURL, err)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Get(pageURL)
	if err != nil {
		fatalf("fetch %s: %v", pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fatalf("fetch %s: %s", pageURL, resp.Status)
	}

	links, err := discover.CSVLinks(resp.Body, base)
	if err != nil {
		fatalf("%v", err)
	}
	if len(links) == 0 {
		log.Printf("no csv links found on %s", pageURL)
		return
	}

	if dir == "" {
		for _, l := range links {
			fmt.Printf("%s\t%s\n", l.URL, l.Text)
		}
		return
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		fatalf("mkdir %s: %v", dir, err)
	}
	for _, l := range links {
		if err := download(client, l.URL, dir); err != nil {
			log.Printf("  ERROR %s: %v", l.URL, err)
			continue
		}
		log.Printf("  downloaded %s", l.URL)
	}
}

func download(client *http.Client, rawURL, dir string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	name := path.Base(u.Path)

	resp, err := client.Get(rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s", resp.Status)
	}

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
