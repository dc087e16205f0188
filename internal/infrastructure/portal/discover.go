package portal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"ManuscriptTracker/internal/domain"
	"ManuscriptTracker/internal/ports"
)

// ErrMenuUnavailable wraps transport failures while loading the main menu.
var ErrMenuUnavailable = errors.New("main menu unavailable")

const (
	menuContainerSelector = "fieldset.datatablecontainer"
	menuLinkSelector      = "fieldset.datatablecontainer div.main_menu_item a"
	emptyCount            = "(0)"
)

// Discover loads the author main menu and returns the categories with a
// non-zero count. Missing menu markup yields no categories and no error.
func (c *Client) Discover(ctx context.Context, sess ports.Session) ([]domain.CategoryLink, error) {
	s, err := c.session(sess)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "portal:Discover")
	defer span.End()

	menuURL := s.MainMenuURL()
	c.logger.Info("loading manuscript categories", "journal", s.account.ShortName)

	res, err := s.http.R().
		SetContext(ctx).
		SetHeader("Referer", s.resolve("default2.aspx")).
		Get(menuURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch main menu")
		return nil, fmt.Errorf("%w: %w", ErrMenuUnavailable, err)
	}
	if !res.IsSuccess() {
		span.SetStatus(codes.Error, "main menu status")
		return nil, fmt.Errorf("%w: main menu returned %s", ErrMenuUnavailable, res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		c.logger.Warn("main menu is not parseable html", "journal", s.account.ShortName, "error", err)
		return nil, nil
	}

	if doc.Find(menuContainerSelector).Length() == 0 {
		c.logger.Warn("main menu markup not found", "journal", s.account.ShortName)
		return nil, nil
	}

	links := parseMenu(doc, s.journalURL, menuURL)
	span.SetAttributes(attribute.Int("categories", len(links)))
	c.logger.Debug("categories discovered", "journal", s.account.ShortName, "count", len(links))
	return links, nil
}

func parseMenu(doc *goquery.Document, base *url.URL, referer string) []domain.CategoryLink {
	var links []domain.CategoryLink

	doc.Find(menuLinkSelector).Each(func(_ int, a *goquery.Selection) {
		count := a.NextAllFiltered("span.count").First()
		if count.Length() == 0 {
			return
		}
		countText := strings.TrimSpace(count.Text())
		if strings.Contains(countText, emptyCount) {
			return
		}

		href, ok := a.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}

		links = append(links, domain.CategoryLink{
			Name:    collapseSpace(a.Text()),
			URL:     base.ResolveReference(ref).String(),
			Count:   countText,
			Referer: referer,
		})
	})

	return links
}
