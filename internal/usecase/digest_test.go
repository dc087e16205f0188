package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ManuscriptTracker/internal/domain"
)

func TestBuildDigest(t *testing.T) {
	t.Parallel()

	longTitle := strings.Repeat("Ü", 45)
	results := []domain.AccountResult{
		{Account: domain.Account{ShortName: "EMPTY", FullName: "Empty Journal"}, State: domain.StateDone},
		{
			Account: domain.Account{ShortName: "GASTRO", FullName: "Gastroenterology"},
			State:   domain.StateDone,
			Records: []domain.NormalizedRecord{
				{Title: longTitle, ManuscriptNumber: "GASTRO-D-24-1", CurrentStatus: "Under Review", StatusDate: "Mar 02, 2024"},
				{ManuscriptNumber: "GASTRO-D-24-2"},
			},
		},
	}

	d := BuildDigest(results, time.Date(2026, 10, 14, 9, 5, 0, 0, time.UTC))

	require.Equal(t, "📊 Manuscript tracking results (2026-10-14 09:05)", d.Title)
	require.Contains(t, d.Body, "### Gastroenterology")
	require.NotContains(t, d.Body, "Empty Journal")
	require.Contains(t, d.Body, "**📄 "+strings.Repeat("Ü", 40)+"...**")
	require.NotContains(t, d.Body, strings.Repeat("Ü", 41))
	require.Contains(t, d.Body, "Number: GASTRO-D-24-1")
	require.Contains(t, d.Body, "Status: Under Review")
	require.Contains(t, d.Body, "Date: Mar 02, 2024")
	require.Contains(t, d.Body, "No-Title-Found")
}

func TestBuildDigestWithoutRecordsIsEmpty(t *testing.T) {
	t.Parallel()

	d := BuildDigest([]domain.AccountResult{{State: domain.StateSkipped}}, time.Now())
	require.Empty(t, strings.TrimSpace(d.Body))
	require.NotEmpty(t, d.Title)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	require.Equal(t, "short", truncate("short", 40))
	require.Equal(t, "abc...", truncate("abcdef", 3))
	require.Equal(t, "日本...", truncate("日本語", 2))
}
