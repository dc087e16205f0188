package portal

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"ManuscriptTracker/internal/domain"
	"ManuscriptTracker/internal/ports"
)

var docIDExpr = regexp.MustCompile(`docid=(\d+)`)

// Extract fetches a category detail page and returns one record per well
// formed table row. Any failure is logged and yields no records.
func (c *Client) Extract(ctx context.Context, sess ports.Session, pageURL, refererURL string) []domain.RawRecord {
	s, err := c.session(sess)
	if err != nil {
		c.logger.Error("extract manuscripts", "page", pageName(pageURL), "error", err)
		return nil
	}

	ctx, span := tracer.Start(ctx, "portal:Extract", trace.WithAttributes(
		attribute.String("page", pageName(pageURL)),
	))
	defer span.End()

	records, err := c.extract(ctx, s, pageURL, refererURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extract failed")
		c.logger.Error("extract manuscripts", "journal", s.account.ShortName, "page", pageName(pageURL), "error", err)
		return nil
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records
}

func (c *Client) extract(ctx context.Context, s *Session, pageURL, refererURL string) ([]domain.RawRecord, error) {
	doc, err := c.fetchDocument(ctx, s, pageURL, refererURL)
	if err != nil {
		return nil, err
	}

	if hasPageSizeSelector(doc) {
		fullURL, err := buildPageURL(pageURL, c.opts.PageSize)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("pager found, requesting full page", "page", pageName(pageURL), "size", c.opts.PageSize)
		doc, err = c.fetchDocument(ctx, s, fullURL, refererURL)
		if err != nil {
			return nil, err
		}
	}

	records, ok := parseTable(doc)
	if !ok {
		c.logger.Debug("no manuscript table on page", "journal", s.account.ShortName, "page", pageName(pageURL))
		return nil, nil
	}

	c.logger.Debug("manuscripts extracted", "journal", s.account.ShortName, "page", pageName(pageURL), "count", len(records))
	return records, nil
}

func (c *Client) fetchDocument(ctx context.Context, s *Session, pageURL, refererURL string) (*goquery.Document, error) {
	req := s.http.R().SetContext(ctx)
	if refererURL != "" {
		req.SetHeader("Referer", refererURL)
	}

	res, err := req.Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", pageName(pageURL), err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("%s returned %s", pageName(pageURL), res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageName(pageURL), err)
	}
	return doc, nil
}

func hasPageSizeSelector(doc *goquery.Document) bool {
	return doc.Find(`select[name="size1"]`).Length() > 0
}

// buildPageURL merges the page-size override into the existing query.
func buildPageURL(base string, pageSize int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid page url %s: %w", base, err)
	}

	size := strconv.Itoa(pageSize)
	query := parsed.Query()
	query.Set("size1", size)
	query.Set("size2", size)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func findTable(doc *goquery.Document) *goquery.Selection {
	for _, id := range []string{"datatable", "searchresults"} {
		if table := doc.Find("table#" + id).First(); table.Length() > 0 {
			return table
		}
	}
	return nil
}

// parseTable reports false when the page has no usable manuscript table.
func parseTable(doc *goquery.Document) ([]domain.RawRecord, bool) {
	table := findTable(doc)
	if table == nil {
		return nil, false
	}

	thead := table.Find("thead").First()
	tbody := table.Find("tbody").First()
	if thead.Length() == 0 || tbody.Length() == 0 {
		return nil, false
	}

	var headers []string
	thead.Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, cellText(th))
	})

	records := make([]domain.RawRecord, 0)
	tbody.ChildrenFiltered("tr").Each(func(_ int, row *goquery.Selection) {
		// direct children only, nested tables carry their own cells
		cells := row.ChildrenFiltered("td")
		if cells.Length() != len(headers) {
			return
		}

		record := domain.RawRecord{Cells: make([]domain.Cell, len(headers))}
		cells.Each(func(i int, td *goquery.Selection) {
			record.Cells[i] = domain.Cell{Header: headers[i], Value: cellText(td)}
		})
		record.DocID = docID(cells.First())

		records = append(records, record)
	})

	return records, true
}

func docID(cell *goquery.Selection) string {
	var id string
	cell.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if m := docIDExpr.FindStringSubmatch(a.AttrOr("href", "")); m != nil {
			id = m[1]
			return false
		}
		return true
	})
	return id
}

// cellText reads a cell the way a browser renders it: inline markup stays
// joined to the surrounding text, while <br> and block elements separate
// words. Whitespace is collapsed afterwards.
func cellText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			writeText(&b, child)
		}
	}
	return collapseSpace(b.String())
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.DataAtom == atom.Br {
			b.WriteByte(' ')
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	if block {
		b.WriteByte(' ')
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		writeText(b, child)
	}
	if block {
		b.WriteByte(' ')
	}
}

var blockElements = map[atom.Atom]bool{
	atom.Div:   true,
	atom.P:     true,
	atom.Li:    true,
	atom.Ul:    true,
	atom.Ol:    true,
	atom.Table: true,
	atom.Tr:    true,
	atom.Td:    true,
	atom.Th:    true,
	atom.H1:    true,
	atom.H2:    true,
	atom.H3:    true,
	atom.H4:    true,
	atom.Hr:    true,
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func pageName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return path.Base(u.Path)
}
