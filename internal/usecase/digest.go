package usecase

import (
	"bytes"
	"fmt"
	"time"

	"github.com/nao1215/markdown"

	"ManuscriptTracker/internal/domain"
)

const (
	digestTitleLimit = 40
	missingTitle     = "No-Title-Found"
)

// Digest is the notification payload of one run.
type Digest struct {
	Title string
	Body  string
}

// BuildDigest renders a markdown section per journal with records. Runs
// without records produce an empty body.
func BuildDigest(results []domain.AccountResult, at time.Time) Digest {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	for _, res := range results {
		if len(res.Records) == 0 {
			continue
		}

		md.H3(res.Account.DisplayName())
		md.PlainText("")
		for _, rec := range res.Records {
			md.PlainText(markdown.Bold("📄 " + digestTitle(rec.Title)))
			md.BulletList(
				"Number: "+rec.ManuscriptNumber,
				"Status: "+rec.CurrentStatus,
				"Date: "+rec.StatusDate,
			)
			md.PlainText("")
		}
	}

	return Digest{
		Title: fmt.Sprintf("📊 Manuscript tracking results (%s)", at.Format("2006-01-02 15:04")),
		Body:  md.String(),
	}
}

func digestTitle(title string) string {
	if title == "" {
		return missingTitle
	}
	return truncate(title, digestTitleLimit)
}

// truncate keeps at most limit runes and marks the cut with an ellipsis.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
