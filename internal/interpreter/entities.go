package interpreter

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/maxviazov/soccer-scout-service/internal/model"
)

type alias struct {
	text  string
	value string
}

// Alias tables are matched on word boundaries; the leftmost hit wins.
var positionAliases = []alias{
	{"goalkeepers", "Goalkeeper"}, {"goalkeeper", "Goalkeeper"}, {"keepers", "Goalkeeper"},
	{"keeper", "Goalkeeper"}, {"goalies", "Goalkeeper"}, {"goalie", "Goalkeeper"}, {"gk", "Goalkeeper"},
	{"centre backs", "Defender"}, {"center backs", "Defender"}, {"centre back", "Defender"}, {"center back", "Defender"},
	{"full backs", "Defender"}, {"full back", "Defender"}, {"fullbacks", "Defender"}, {"fullback", "Defender"},
	{"wing backs", "Defender"}, {"wingbacks", "Defender"}, {"wing back", "Defender"},
	{"defenders", "Defender"}, {"defender", "Defender"}, {"defence", "Defender"}, {"defense", "Defender"},
	{"cbs", "Defender"}, {"cb", "Defender"}, {"lb", "Defender"}, {"rb", "Defender"},
	{"midfielders", "Midfielder"}, {"midfielder", "Midfielder"}, {"midfield", "Midfielder"},
	{"mids", "Midfielder"}, {"mid", "Midfielder"}, {"cdm", "Midfielder"}, {"cam", "Midfielder"}, {"cm", "Midfielder"},
	{"forwards", "Forward"}, {"forward", "Forward"}, {"strikers", "Forward"}, {"striker", "Forward"},
	{"attackers", "Forward"}, {"attacker", "Forward"}, {"wingers", "Forward"}, {"winger", "Forward"},
}

var leagueAliases = []alias{
	{"english premier league", "ENG-Premier League"}, {"premier league", "ENG-Premier League"}, {"epl", "ENG-Premier League"},
	{"la liga", "ESP-La Liga"}, {"laliga", "ESP-La Liga"}, {"spanish", "ESP-La Liga"},
	{"serie a", "ITA-Serie A"}, {"seriea", "ITA-Serie A"}, {"italian", "ITA-Serie A"},
	{"bundesliga", "GER-Bundesliga"}, {"german", "GER-Bundesliga"},
	{"ligue 1", "FRA-Ligue 1"}, {"ligue1", "FRA-Ligue 1"}, {"french", "FRA-Ligue 1"},
}

var statAliases = []alias{
	{"goals per 90", model.MetricGoalsPer90}, {"goals_per_90", model.MetricGoalsPer90},
	{"assists per 90", model.MetricAssistsPer90}, {"assists_per_90", model.MetricAssistsPer90},
	{"expected goals", model.MetricExpectedGoals}, {"xg", model.MetricExpectedGoals},
	{"expected assists", model.MetricExpectedAssists}, {"xa", model.MetricExpectedAssists},
	{"progressive passes", model.MetricProgressivePasses}, {"progressive_passes", model.MetricProgressivePasses},
	{"progressive carries", model.MetricProgressiveCarries}, {"progressive_carries", model.MetricProgressiveCarries},
	{"defensive actions", model.MetricDefensiveActions}, {"defensive_actions", model.MetricDefensiveActions},
	{"goalscorers", model.MetricGoals}, {"scorers", model.MetricGoals}, {"scorer", model.MetricGoals},
	{"scoring", model.MetricGoals}, {"goals", model.MetricGoals}, {"goal", model.MetricGoals},
	{"assisters", model.MetricAssists}, {"assisting", model.MetricAssists}, {"assists", model.MetricAssists},
	{"assist", model.MetricAssists}, {"providers", model.MetricAssists}, {"provider", model.MetricAssists},
	{"creators", model.MetricAssists},
	{"passers", model.MetricProgressivePasses}, {"passer", model.MetricProgressivePasses},
	{"passing", model.MetricProgressivePasses}, {"passes", model.MetricProgressivePasses},
	{"carriers", model.MetricProgressiveCarries}, {"carries", model.MetricProgressiveCarries},
	{"dribblers", model.MetricProgressiveCarries},
	{"tacklers", model.MetricTackles}, {"tackler", model.MetricTackles}, {"tackles", model.MetricTackles},
	{"tackle", model.MetricTackles}, {"tackling", model.MetricTackles},
	{"interceptions", model.MetricInterceptions}, {"interception", model.MetricInterceptions},
}

var (
	positionRe = aliasRegexp(positionAliases)
	leagueRe   = aliasRegexp(leagueAliases)
	statRe     = aliasRegexp(statAliases)

	minutesRe = regexp.MustCompile(`(?i)(\bper\s+)?\b(\d+)\+?\s*(?:mins?|minutes?)\b`)
	ageRe     = regexp.MustCompile(`(?i)\b(under|younger than|below|over|older than|above)\s+(\d+)\b(?:\s*\+?\s*([a-z_]+(?:\s+per\s+90)?))?`)
	uAgeRe    = regexp.MustCompile(`(?i)\bu-?(\d{2})s?\b`)
	exactAge  = regexp.MustCompile(`(?i)\b(?:aged?\s+(\d{2})|(\d{2})\s*(?:years?|yrs?)[\s-]*old)\b`)
	limitRe   = regexp.MustCompile(`(?i)\b(?:top|best)\s+(\d{1,2})\b`)
	statCmpRe = regexp.MustCompile(`(?i)\b(?:(more than|over|at least|fewer than|less than|under)\s+(\d+(?:\.\d+)?)|(\d+(?:\.\d+)?)\+)\s+([a-z_ ]+?)\b`)
)

func aliasRegexp(table []alias) *regexp.Regexp {
	words := make([]string, len(table))
	for i, a := range table {
		words[i] = regexp.QuoteMeta(a.text)
	}
	// Longest first so "premier league" beats "league"-like prefixes.
	sort.SliceStable(words, func(i, j int) bool { return len(words[i]) > len(words[j]) })
	return regexp.MustCompile(`(?i)\b(` + strings.Join(words, "|") + `)\b`)
}

func lookup(re *regexp.Regexp, table []alias, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	hit := strings.ToLower(m[1])
	for _, a := range table {
		if a.text == hit {
			return a.value
		}
	}
	return ""
}

func extractPosition(text string) string { return lookup(positionRe, positionAliases, text) }

func extractLeague(text string) string { return lookup(leagueRe, leagueAliases, text) }

func extractStat(text string) string { return lookup(statRe, statAliases, text) }

// canonical maps a value the LLM returns to a table value, accepting either an
// alias or the canonical form itself.
func canonical(table []alias, re *regexp.Regexp, v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	for _, a := range table {
		if strings.EqualFold(a.value, v) {
			return a.value
		}
	}
	return lookup(re, table, v)
}

// extractMinutes reads "N+ minutes"; otherwise prospect-flavoured queries get a
// higher floor.
func extractMinutes(text string) float64 {
	for _, m := range minutesRe.FindAllStringSubmatch(text, -1) {
		// "per 90 minutes" is a rate unit, not a playing-time floor.
		if m[1] != "" {
			continue
		}
		if v, err := strconv.Atoi(m[2]); err == nil {
			return float64(v)
		}
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "young") || strings.Contains(lower, "prospect") {
		return model.DefaultProspectMinMinutes
	}
	return model.DefaultMinMinutes
}

const (
	minPlausibleAge = 14
	maxPlausibleAge = 50
)

type ageBounds struct {
	min, max *int
	found    bool
}

// extractAge reads age phrases. "under N" and "over N" are exclusive, so they
// become inclusive bounds N-1 and N+1. Phrases followed by a stat or minutes
// ("over 10 goals") are not ages.
func extractAge(text string) ageBounds {
	var b ageBounds
	for _, m := range ageRe.FindAllStringSubmatch(text, -1) {
		if trailing := strings.ToLower(m[3]); trailing != "" {
			if strings.HasPrefix(trailing, "min") || extractStat(trailing) != "" {
				continue
			}
		}
		n, err := strconv.Atoi(m[2])
		if err != nil || n < minPlausibleAge || n > maxPlausibleAge {
			continue
		}
		switch strings.ToLower(m[1]) {
		case "under", "younger than", "below":
			b.max = model.IntPtr(n - 1)
		default:
			b.min = model.IntPtr(n + 1)
		}
		b.found = true
	}
	if m := uAgeRe.FindStringSubmatch(text); m != nil && b.max == nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= minPlausibleAge && n <= maxPlausibleAge {
			b.max = model.IntPtr(n - 1)
			b.found = true
		}
	}
	if m := exactAge.FindStringSubmatch(text); m != nil && !b.found {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if n, err := strconv.Atoi(raw); err == nil && n >= minPlausibleAge && n <= maxPlausibleAge {
			b.min, b.max = model.IntPtr(n), model.IntPtr(n)
			b.found = true
		}
	}
	return b
}

// extractMaxAge returns the "under N" ceiling used by prospect queries.
func extractMaxAge(text string, def int) int {
	for _, m := range ageRe.FindAllStringSubmatch(text, -1) {
		switch strings.ToLower(m[1]) {
		case "under", "younger than", "below":
			if n, err := strconv.Atoi(m[2]); err == nil && n >= minPlausibleAge && n <= maxPlausibleAge {
				return n
			}
		}
	}
	if m := uAgeRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= minPlausibleAge && n <= maxPlausibleAge {
			return n
		}
	}
	return def
}

func extractLimit(text string) int {
	if m := limitRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}

// extractStatFilters reads thresholds like "more than 10 goals" or "5+ assists".
func extractStatFilters(text string) []model.StatFilter {
	var out []model.StatFilter
	for _, m := range statCmpRe.FindAllStringSubmatch(text, -1) {
		stat := extractStat(m[4])
		if stat == "" {
			continue
		}
		raw, op := m[2], model.OpGTE
		switch strings.ToLower(m[1]) {
		case "more than", "over":
			op = model.OpGT
		case "fewer than", "less than", "under":
			op = model.OpLT
		case "":
			raw = m[3]
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		out = append(out, model.StatFilter{Metric: stat, Op: op, Value: v})
	}
	return out
}

var tacticalKeywords = []string{
	"alongside", "partner", "complement", "fit", "system", "style",
	"replace", "similar to", "like", "alternative", "backup",
	"formation", "tactical", "playing style", "characteristics",
	"profile", "attributes", "skillset", "ability",
}

var complexPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)who (?:can|could|would) .+alongside`),
	regexp.MustCompile(`(?i)(?:find|show|get) .+ who (?:can|could) .+ with`),
	regexp.MustCompile(`(?i)(?:alternative|replacement|backup) (?:for|to)`),
	regexp.MustCompile(`(?i)similar (?:to|like|as)`),
	regexp.MustCompile(`(?i)complement .+ in .+ system`),
	regexp.MustCompile(`(?i)fit .+ playing style`),
}

var tacticalWordRe = aliasRegexp(func() []alias {
	out := make([]alias, len(tacticalKeywords))
	for i, k := range tacticalKeywords {
		out[i] = alias{text: k}
	}
	return out
}())

// isTactical reports whether a query needs reasoning beyond keyword filters.
func isTactical(text string) bool {
	if tacticalWordRe.MatchString(text) {
		return true
	}
	for _, re := range complexPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

var referenceRe = regexp.MustCompile(`(?i)\b(?:similar to|players? like|someone like|replacement for|alternative to|backup for|alongside|partner for|the next)\s+([\p{L}'.\- ]+?)(?:\s+(?:in|under|over|from|who|with|for|that|at|and)\b|[?,.!;]|$)`)

// extractReference returns the player named in a "similar to X" phrase.
func extractReference(text string) string {
	m := referenceRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	name := strings.TrimSpace(m[1])
	if extractPosition(name) != "" || extractLeague(name) != "" || strings.EqualFold(name, "him") {
		return ""
	}
	return name
}

// cleanName trims punctuation and filler words around a captured player name.
func cleanName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "?!.,;:'\" ")
	for _, prefix := range []string{"me ", "player ", "for ", "the player "} {
		if len(s) > len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			s = strings.TrimSpace(s[len(prefix):])
		}
	}
	return s
}
