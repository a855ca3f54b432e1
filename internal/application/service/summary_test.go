package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"schedule-agent/internal/domain/entity"
)

func gameRow(date, day, timeStr, away, home string) map[string]string {
	return map[string]string{
		"date":      date,
		"day":       day,
		"time":      timeStr,
		"road_team": away,
		"home_team": home,
	}
}

func TestBuildGameSummary_OrdersByDateThenTime(t *testing.T) {
	set := &entity.ResultSet{
		Rows: []map[string]string{
			gameRow("2025-09-20", "Saturday", "1:10 PM", "Twins", "Cubs"),
			gameRow("2025-09-19", "Friday", "7:05 PM", "Yankees", "Tigers"),
			gameRow("2025-09-19", "Friday", "1:10 PM", "Guardians", "White Sox"),
		},
		RowCount: 3,
	}

	lines := BuildGameSummary([]*entity.ResultSet{set})

	assert.Equal(t, []string{
		"Friday 2025-09-19 Guardians @ White Sox",
		"Friday 2025-09-19 Yankees @ Tigers",
		"Saturday 2025-09-20 Twins @ Cubs",
	}, lines)
}

func TestBuildGameSummary_TimeTieBreakIsLexicographic(t *testing.T) {
	set := &entity.ResultSet{
		Rows: []map[string]string{
			gameRow("2025-09-19", "Friday", "9:00 AM", "Mets", "Phillies"),
			gameRow("2025-09-19", "Friday", "10:00 AM", "Braves", "Marlins"),
		},
		RowCount: 2,
	}

	lines := BuildGameSummary([]*entity.ResultSet{set})

	// The varchar time column sorts as text, so "10:00 AM" precedes
	// "9:00 AM", same as the server's ORDER BY.
	assert.Equal(t, []string{
		"Friday 2025-09-19 Braves @ Marlins",
		"Friday 2025-09-19 Mets @ Phillies",
	}, lines)
}

func TestBuildGameSummary_DeduplicatesAcrossResultSets(t *testing.T) {
	row := gameRow("2025-09-19", "Friday", "7:05 PM", "Yankees", "Tigers")
	first := &entity.ResultSet{Rows: []map[string]string{row}, RowCount: 1}
	second := &entity.ResultSet{Rows: []map[string]string{row}, RowCount: 1}

	lines := BuildGameSummary([]*entity.ResultSet{first, second})

	assert.Equal(t, []string{"Friday 2025-09-19 Yankees @ Tigers"}, lines)
}

func TestBuildGameSummary_WeekdayFallsBackToDate(t *testing.T) {
	set := &entity.ResultSet{
		Rows: []map[string]string{
			{
				"date":      "2025-09-19",
				"road_team": "Yankees",
				"home_team": "Tigers",
			},
		},
		RowCount: 1,
	}

	lines := BuildGameSummary([]*entity.ResultSet{set})

	// 2025-09-19 is a Friday.
	assert.Equal(t, []string{"Friday 2025-09-19 Yankees @ Tigers"}, lines)
}

func TestBuildGameSummary_SkipsIncompleteRows(t *testing.T) {
	set := &entity.ResultSet{
		Rows: []map[string]string{
			{"date": "not-a-date", "road_team": "A", "home_team": "B"},
			{"date": "2025-09-19", "road_team": "", "home_team": "B"},
			gameRow("2025-09-19", "Friday", "", "Yankees", "Tigers"),
		},
		RowCount: 3,
	}

	lines := BuildGameSummary([]*entity.ResultSet{set})

	assert.Equal(t, []string{"Friday 2025-09-19 Yankees @ Tigers"}, lines)
}

func TestBuildGameSummary_TruncatesTimestampDates(t *testing.T) {
	set := &entity.ResultSet{
		Rows: []map[string]string{
			gameRow("2025-09-19T00:00:00Z", "Friday", "", "Yankees", "Tigers"),
		},
		RowCount: 1,
	}

	lines := BuildGameSummary([]*entity.ResultSet{set})

	assert.Equal(t, []string{"Friday 2025-09-19 Yankees @ Tigers"}, lines)
}

func TestBuildGameSummary_NoRows(t *testing.T) {
	lines := BuildGameSummary([]*entity.ResultSet{{RowCount: 0}})

	assert.Equal(t, []string{NoMatchingGames}, lines)
}
