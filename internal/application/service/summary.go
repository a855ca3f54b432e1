package service

import (
	"fmt"
	"sort"
	"time"

	"schedule-agent/internal/domain/entity"
)

const NoMatchingGames = "No matching games found."

type gameLine struct {
	date  time.Time
	clock string
	text  string
}

// BuildGameSummary renders one line per schedule row across all result
// sets, in the form "<Weekday> <ISO date> <AwayTeam> @ <HomeTeam>".
// Lines are ordered by date, then game time, then text; exact
// duplicates are dropped. Rows without a parseable date or without
// both team columns are skipped.
func BuildGameSummary(sets []*entity.ResultSet) []string {
	var games []gameLine
	for _, set := range sets {
		if set == nil {
			continue
		}
		for _, row := range set.Rows {
			game, ok := gameFromRow(row)
			if !ok {
				continue
			}
			games = append(games, game)
		}
	}

	if len(games) == 0 {
		return []string{NoMatchingGames}
	}

	sort.Slice(games, func(i, j int) bool {
		if !games[i].date.Equal(games[j].date) {
			return games[i].date.Before(games[j].date)
		}
		// clock is the raw varchar time column; comparing it as text
		// matches the server's ORDER BY on that column.
		if games[i].clock != games[j].clock {
			return games[i].clock < games[j].clock
		}
		return games[i].text < games[j].text
	})

	seen := make(map[string]struct{}, len(games))
	lines := make([]string, 0, len(games))
	for _, game := range games {
		if _, dup := seen[game.text]; dup {
			continue
		}
		seen[game.text] = struct{}{}
		lines = append(lines, game.text)
	}
	return lines
}

func gameFromRow(row map[string]string) (gameLine, bool) {
	rawDate := row["date"]
	if len(rawDate) > 10 {
		rawDate = rawDate[:10]
	}
	date, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		return gameLine{}, false
	}

	away := row["road_team"]
	home := row["home_team"]
	if away == "" || home == "" {
		return gameLine{}, false
	}

	weekday := row["day"]
	if weekday == "" {
		weekday = date.Weekday().String()
	}

	return gameLine{
		date:  date,
		clock: row["time"],
		text:  fmt.Sprintf("%s %s %s @ %s", weekday, date.Format("2006-01-02"), away, home),
	}, true
}
