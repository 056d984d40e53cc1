package interpreter

import (
	"context"
	"regexp"
	"strings"

	"github.com/maxviazov/soccer-scout-service/internal/engine"
	"github.com/maxviazov/soccer-scout-service/internal/model"
)

const patternConfidence = 0.9

// rule binds a template to a constructor. A constructor may decline a match,
// in which case the next rule is tried.
type rule struct {
	name  string
	re    *regexp.Regexp
	build func(m []string, query string) (model.Request, bool)
}

const positionWords = `midfielders|defenders|forwards|goalkeepers|strikers|wingers|attackers|keepers|fullbacks|full backs|centre backs|center backs`

// Rules are tried in order; more specific templates come first so that
// "find young midfielders" is a prospect query rather than a name search.
var rules = []rule{
	{"comparison", regexp.MustCompile(`(?i)^\s*compare\s+(.+?)\s+(?:vs\.?|versus|against|and|with|to)\s+(.+?)\s*[?.!]*$`), buildComparison},
	{"comparison_vs", regexp.MustCompile(`(?i)^\s*(.+?)\s+(?:vs\.?|versus|against)\s+(.+?)\s*[?.!]*$`), buildComparisonVs},

	{"young_best", regexp.MustCompile(`(?i)\b(?:best|top|good)\s+(?:\d+\s+)?young\s+(\w+)`), buildYoung},
	{"young_group", regexp.MustCompile(`(?i)\byoung\s+(prospects|talents|players|` + positionWords + `)\b(?:\s+in\s+(.+))?`), buildYoung},
	{"prospects_under", regexp.MustCompile(`(?i)\b(?:prospects|talents|wonderkids)\b.*?\bunder\s+(\d+)`), buildYoungAge},

	{"top_scorers", regexp.MustCompile(`(?i)\b(?:best|top|leading|highest)\s+(?:(.+?)\s+)?(?:goal\s?scorers|scorers)\b`), buildTopStat(model.MetricGoals)},
	{"top_assists", regexp.MustCompile(`(?i)\b(?:best|top|leading|highest)\s+(?:(.+?)\s+)?(?:assists|assist providers|assisters|playmakers)\b`), buildTopStat(model.MetricAssists)},
	{"top_generic", regexp.MustCompile(`(?i)\b(?:best|top|leading|highest)\s+(.+?)(?:\s+in\s+(.+?))?\s*[?.!]*$`), buildTopPerformers},

	{"position_verb", regexp.MustCompile(`(?i)\b(?:show|find|get|list)\b.*?\b(` + positionWords + `)\b`), buildPositionSearch},
	{"position_lead", regexp.MustCompile(`(?i)^\s*(` + positionWords + `)\b(?:\s+in\s+(.+))?`), buildPositionSearch},

	{"player_search", regexp.MustCompile(`(?i)^\s*(?:find|search(?:\s+for)?|show(?:\s+me)?|get|look\s+up)\s+(.+?)\s*[?.!]*$`), buildPlayerSearch},
	{"player_about", regexp.MustCompile(`(?i)^\s*(?:who\s+is|who's|tell\s+me\s+about|stats\s+for)\s+(.+?)\s*[?.!]*$`), buildPlayerSearch},
}

func patternMeta(query string) model.Meta {
	return model.Meta{Query: query, Confidence: patternConfidence, Tier: model.TierPattern}
}

// PatternTier matches the fixed template list.
func PatternTier(_ context.Context, query string) (model.Request, bool) {
	for _, r := range rules {
		m := r.re.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		if req, ok := r.build(m, query); ok {
			return req, true
		}
	}
	return nil, false
}

var nameSplitRe = regexp.MustCompile(`(?i)\s*(?:,|&|\band\b)\s*`)

func splitNames(parts ...string) []string {
	var names []string
	for _, p := range parts {
		for _, n := range nameSplitRe.Split(p, -1) {
			if n = cleanName(n); n != "" {
				names = append(names, n)
			}
		}
	}
	return names
}

func buildComparison(m []string, query string) (model.Request, bool) {
	names := splitNames(m[1], m[2])
	if len(names) < 2 {
		return nil, false
	}
	req := model.NewComparison(patternMeta(query), names...)
	req.MinMinutes = extractMinutes(query)
	return req, true
}

// buildComparisonVs declines when either side reads like a filter rather than a name.
func buildComparisonVs(m []string, query string) (model.Request, bool) {
	for _, side := range m[1:3] {
		if looksLikeFilter(side) {
			return nil, false
		}
	}
	return buildComparison(m, query)
}

func looksLikeFilter(s string) bool {
	return extractPosition(s) != "" || extractLeague(s) != "" || extractStat(s) != "" ||
		extractAge(s).found || strings.Contains(strings.ToLower(s), "players")
}

func buildYoung(m []string, query string) (model.Request, bool) {
	word := strings.ToLower(m[1])
	position := extractPosition(word)
	switch word {
	case "prospects", "talents", "players", "wonderkids":
		position = extractPosition(query)
	default:
		if position == "" {
			return nil, false
		}
	}
	return newProspects(query, extractMaxAge(query, model.DefaultProspectMaxAge), position), true
}

func buildYoungAge(m []string, query string) (model.Request, bool) {
	maxAge := extractMaxAge("under "+m[1], model.DefaultProspectMaxAge)
	return newProspects(query, maxAge, extractPosition(query)), true
}

func newProspects(query string, maxAge int, position string) model.YoungProspects {
	req := model.NewYoungProspects(patternMeta(query), maxAge)
	req.Criteria.Position = position
	req.Criteria.League = extractLeague(query)
	req.Criteria.MinMinutes = extractMinutes(query)
	if n := extractLimit(query); n > 0 {
		req.Criteria.Limit = n
	}
	return req
}

func buildTopStat(stat string) func(m []string, query string) (model.Request, bool) {
	return func(_ []string, query string) (model.Request, bool) {
		return newTopPerformers(query, stat), true
	}
}

func buildTopPerformers(m []string, query string) (model.Request, bool) {
	stat := extractStat(m[1])
	position := extractPosition(m[1])
	if stat == "" && position == "" && extractLeague(m[1]) == "" && !strings.Contains(strings.ToLower(m[1]), "players") {
		return nil, false
	}
	if stat == "" {
		stat = engine.SortPerformance
		if position == "Defender" {
			stat = model.MetricDefensiveActions
		}
	}
	return newTopPerformers(query, stat), true
}

func newTopPerformers(query, stat string) model.TopPerformers {
	req := model.NewTopPerformers(patternMeta(query), stat)
	req.Criteria.Position = extractPosition(query)
	req.Criteria.League = extractLeague(query)
	req.Criteria.MinMinutes = extractMinutes(query)
	age := extractAge(query)
	req.Criteria.AgeMin, req.Criteria.AgeMax = age.min, age.max
	if n := extractLimit(query); n > 0 {
		req.Criteria.Limit = n
	}
	return req
}

func buildPositionSearch(m []string, query string) (model.Request, bool) {
	position := extractPosition(m[1])
	if position == "" {
		return nil, false
	}
	req := model.NewCustomFilter(patternMeta(query))
	req.Criteria.Position = position
	req.Criteria.League = extractLeague(query)
	req.Criteria.MinMinutes = extractMinutes(query)
	age := extractAge(query)
	req.Criteria.AgeMin, req.Criteria.AgeMax = age.min, age.max
	req.Criteria.StatFilters = extractStatFilters(query)
	req.Criteria.SortKey = extractStat(query)
	return req, true
}

// buildPlayerSearch declines captures that carry filter vocabulary or tactical
// language; later tiers handle those better than a name lookup.
func buildPlayerSearch(m []string, query string) (model.Request, bool) {
	name := cleanName(m[1])
	if name == "" || looksLikeFilter(name) || isTactical(query) {
		return nil, false
	}
	req := model.NewPlayerSearch(patternMeta(query), name)
	req.Criteria.MinMinutes = extractMinutes(query)
	return req, true
}
