// Package source downloads a day's MVP table from a stats site or file host
// and normalises it to Player,Pts CSV.
package source

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/klauspost/compress/zstd"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pable/go-fantasy-league/internal/ingest"
	"github.com/pable/go-fantasy-league/internal/model"
)

// Client fetches MVP tables over HTTP.
type Client struct {
	token string
	http  *http.Client
	log   *zap.Logger
}

// NewClient returns a client that sends token as a bearer credential when it
// is non-empty.
func NewClient(token string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		token: token,
		http:  &http.Client{Timeout: 30 * time.Second},
		log:   log,
	}
}

// Fetch downloads url and returns the MVP table it holds. HTML pages are
// scanned for the first table with Player and Pts columns; anything else is
// parsed as CSV.
func (c *Client) Fetch(ctx context.Context, url string) (model.MVPTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.MVPTable{}, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return model.MVPTable{}, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.MVPTable{}, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := decompress(url, resp)
	if err != nil {
		return model.MVPTable{}, err
	}
	c.log.Debug("mvp table downloaded",
		zap.String("url", url),
		zap.String("content_type", resp.Header.Get("Content-Type")),
		zap.Int("bytes", len(body)))

	if isHTML(resp.Header.Get("Content-Type"), body) {
		t, err := ParseHTMLTable(body)
		if err != nil {
			return model.MVPTable{}, fmt.Errorf("parse %s: %w", url, err)
		}
		return t, nil
	}
	t, err := ingest.ParseMVP(body)
	if err != nil {
		return model.MVPTable{}, fmt.Errorf("parse %s: %w", url, err)
	}
	return t, nil
}

// decompress unwraps the body based on the URL suffix or Content-Encoding.
func decompress(url string, resp *http.Response) ([]byte, error) {
	var src io.Reader = resp.Body
	path := strings.SplitN(url, "?", 2)[0]
	switch {
	case strings.HasSuffix(path, ".bz2"):
		src = bzip2.NewReader(resp.Body)
	case strings.HasSuffix(path, ".zst") || resp.Header.Get("Content-Encoding") == "zstd":
		dec, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		src = dec
	case strings.HasSuffix(path, ".gz") || resp.Header.Get("Content-Encoding") == "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		src = gz
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

func isHTML(contentType string, body []byte) bool {
	if strings.Contains(contentType, "html") {
		return true
	}
	trimmed := bytes.TrimSpace(body)
	return bytes.HasPrefix(trimmed, []byte("<"))
}

// ParseHTMLTable extracts the first table whose header has Player and Pts
// cells (case-insensitive; "Points" is accepted for Pts).
func ParseHTMLTable(page []byte) (model.MVPTable, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return model.MVPTable{}, fmt.Errorf("parse html: %w", err)
	}

	var (
		out   model.MVPTable
		found bool
		perr  error
	)
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() == 0 {
			return true
		}
		playerCol, ptsCol := -1, -1
		rows.First().Find("th, td").Each(func(i int, cell *goquery.Selection) {
			switch strings.ToLower(strings.TrimSpace(cell.Text())) {
			case "player":
				playerCol = i
			case "pts", "points":
				ptsCol = i
			}
		})
		if playerCol < 0 || ptsCol < 0 {
			return true
		}
		found = true
		rows.Slice(1, rows.Length()).EachWithBreak(func(n int, tr *goquery.Selection) bool {
			cells := tr.Find("td")
			if cells.Length() <= playerCol || cells.Length() <= ptsCol {
				return true
			}
			name := strings.TrimSpace(cells.Eq(playerCol).Text())
			if name == "" {
				return true
			}
			pts := decimal.Zero
			if s := strings.TrimSpace(cells.Eq(ptsCol).Text()); s != "" {
				pts, perr = decimal.NewFromString(s)
				if perr != nil {
					perr = fmt.Errorf("row %d (%s): invalid points %q", n+2, name, s)
					return false
				}
			}
			out.Entries = append(out.Entries, model.MVPEntry{Player: name, Points: pts})
			return true
		})
		return false
	})
	if perr != nil {
		return model.MVPTable{}, perr
	}
	if !found {
		return model.MVPTable{}, fmt.Errorf("no table with %q and %q columns", ingest.PlayerColumn, ingest.PointsColumn)
	}
	return out, nil
}
