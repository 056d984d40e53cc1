package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/maxviazov/soccer-scout-service/internal/model"
	"github.com/maxviazov/soccer-scout-service/internal/store"
	"github.com/rs/zerolog"
)

// PlayerSource is the read side of the Player Store the analyses need.
type PlayerSource interface {
	All() []*model.PlayerRecord
	Get(namePattern string, f store.Filter) []*model.PlayerRecord
	HasMetric(name string) bool
}

// Potential score weights for young prospects.
const (
	potentialAgeFactor   = 10.0
	potentialProgressive = 0.05
	potentialMinutes     = 0.002
	potentialXG          = 5.0
	potentialXA          = 5.0
)

const (
	youngCandidateAge = 23
	regularStarterMin = 2000
	reasoningPreview  = 150
)

// Analyzer runs each request kind against a PlayerSource.
type Analyzer struct {
	src PlayerSource
	log zerolog.Logger
}

func NewAnalyzer(src PlayerSource, logger zerolog.Logger) *Analyzer {
	l := logger.With().Str("module", "engine").Str("component", "analyzer").Logger()
	return &Analyzer{src: src, log: l}
}

// Analyze dispatches on the request kind.
func (a *Analyzer) Analyze(req model.Request) model.Analysis {
	var out model.Analysis
	switch r := req.(type) {
	case model.PlayerSearch:
		out = a.SearchPlayers(r)
	case model.Comparison:
		out = a.Compare(r)
	case model.YoungProspects:
		out = a.YoungProspects(r)
	case model.TopPerformers:
		out = a.TopPerformers(r)
	case model.CustomFilter:
		out = a.CustomFilter(r)
	case model.TacticalAnalysis:
		out = a.Tactical(r)
	case model.Unknown:
		out = model.Analysis{
			Result:      emptyResult(),
			Summary:     "I couldn't work out what you're looking for.",
			Empty:       true,
			Message:     "query not understood",
			Suggestions: r.Suggestions,
		}
	default:
		out = model.Analysis{Result: emptyResult(), Empty: true, Message: fmt.Sprintf("unsupported request %T", req)}
	}
	out.Request = req
	a.log.Debug().Str("kind", string(req.Kind())).Int("results", out.Result.Len()).Bool("empty", out.Empty).Msg("analysis done")
	return out
}

func (a *Analyzer) SearchPlayers(r model.PlayerSearch) model.Analysis {
	c := r.Criteria
	candidates := a.src.Get(r.Name, store.Filter{Position: c.Position, MinMinutes: c.MinMinutes, League: c.League})
	res := Rank(candidates, c)
	if res.Len() == 0 {
		return model.Analysis{
			Result:  res,
			Empty:   true,
			Message: fmt.Sprintf("No players found matching '%s'", r.Name),
			Suggestions: []string{
				fmt.Sprintf("Try reducing minimum minutes (currently %s)", formatNumber(c.MinMinutes)),
				"Check the spelling of the player name",
				"Try searching for just the last name",
			},
		}
	}
	summary := fmt.Sprintf("Found %d player(s)", res.Matched)
	if r.Name != "" {
		summary += fmt.Sprintf(" matching '%s'", r.Name)
	}
	if c.Position != "" {
		summary += " playing as " + c.Position
	}
	if c.League != "" {
		summary += " in " + c.League
	}
	return model.Analysis{Result: res, Summary: summary}
}

// Compare resolves each name to its first match and needs at least two players.
func (a *Analyzer) Compare(r model.Comparison) model.Analysis {
	var found []*model.PlayerRecord
	var missing []string
	for _, name := range r.Names {
		matches := a.src.Get(name, store.Filter{MinMinutes: r.MinMinutes})
		if len(matches) == 0 {
			a.log.Warn().Str("player", name).Msg("comparison player not found")
			missing = append(missing, name)
			continue
		}
		found = append(found, matches[0])
	}

	if len(found) < 2 {
		names := make([]string, len(found))
		for i, p := range found {
			names[i] = p.Key.Name
		}
		return model.Analysis{
			Result:  emptyResult(),
			Empty:   true,
			Message: fmt.Sprintf("Could not find enough players to compare. Found: [%s]", strings.Join(names, ", ")),
			Suggestions: []string{
				"Check the spelling of player names",
				"Try using last names only",
				fmt.Sprintf("Reduce minimum minutes from %s", formatNumber(r.MinMinutes)),
			},
		}
	}

	items := make([]model.Ranked, len(found))
	for i, p := range found {
		items[i] = model.Ranked{Player: p, Score: PerformanceRating(p)}
	}
	res := model.RankedResult{Items: items, Matched: len(items)}

	labels := make([]string, len(found))
	for i, p := range found {
		labels[i] = p.Key.Name
	}
	chart := &model.ChartData{Labels: labels}
	for _, stat := range r.Stats {
		s := model.Series{Name: stat, Values: make([]float64, len(found))}
		for i, p := range found {
			s.Values[i] = p.Value(stat)
		}
		chart.Series = append(chart.Series, s)
	}

	out := model.Analysis{
		Result:   res,
		Summary:  "Comparison of " + strings.Join(labels, " vs "),
		Insights: comparisonInsights(found),
		Chart:    chart,
	}
	if len(missing) > 0 {
		out.Insights = append(out.Insights, "Not found: "+strings.Join(missing, ", "))
	}
	return out
}

func comparisonInsights(players []*model.PlayerRecord) []string {
	var insights []string
	if top := leader(players, model.MetricGoals); top != nil {
		insights = append(insights, fmt.Sprintf("%s leads in goals with %s", top.Key.Name, formatNumber(top.Value(model.MetricGoals))))
	}
	if top := leader(players, model.MetricAssists); top != nil {
		insights = append(insights, fmt.Sprintf("%s leads in assists with %s", top.Key.Name, formatNumber(top.Value(model.MetricAssists))))
	}

	var youngest, oldest *model.PlayerRecord
	for _, p := range players {
		age, ok := p.Age()
		if !ok {
			continue
		}
		if y, _ := ageOf(youngest); youngest == nil || age < y {
			youngest = p
		}
		if o, _ := ageOf(oldest); oldest == nil || age > o {
			oldest = p
		}
	}
	if youngest != nil && oldest != nil && youngest != oldest {
		ya, _ := youngest.Age()
		oa, _ := oldest.Age()
		if ya != oa {
			insights = append(insights, fmt.Sprintf("%s is youngest at %d, %s is oldest at %d", youngest.Key.Name, ya, oldest.Key.Name, oa))
		}
	}
	return insights
}

func leader(players []*model.PlayerRecord, metric string) *model.PlayerRecord {
	var best *model.PlayerRecord
	for _, p := range players {
		if _, ok := p.Metric(metric); !ok {
			continue
		}
		if best == nil || p.Value(metric) > best.Value(metric) {
			best = p
		}
	}
	return best
}

func ageOf(p *model.PlayerRecord) (int, bool) {
	if p == nil {
		return 0, false
	}
	return p.Age()
}

// PotentialScore rates a young player; the age factor rewards being further under maxAge.
func PotentialScore(p *model.PlayerRecord, maxAge int) float64 {
	var ageFactor float64
	if age, ok := p.Age(); ok && age < maxAge {
		ageFactor = float64(maxAge-age) * potentialAgeFactor
	}
	return ageFactor +
		p.ProgressiveActions()*potentialProgressive +
		p.Minutes()*potentialMinutes +
		p.Value(model.MetricExpectedGoals)*potentialXG +
		p.Value(model.MetricExpectedAssists)*potentialXA
}

func (a *Analyzer) YoungProspects(r model.YoungProspects) model.Analysis {
	c := r.Criteria.Normalize()
	candidates := Filter(a.src.All(), c)
	if len(candidates) == 0 {
		filters := fmt.Sprintf("under %d", r.MaxAge)
		if c.Position != "" {
			filters += ", " + c.Position
		}
		if c.League != "" {
			filters += ", " + c.League
		}
		return model.Analysis{
			Result:  emptyResult(),
			Empty:   true,
			Message: fmt.Sprintf("No young prospects found (%s)", filters),
			Suggestions: []string{
				fmt.Sprintf("Try increasing max age from %d", r.MaxAge),
				fmt.Sprintf("Try reducing minimum minutes from %s", formatNumber(c.MinMinutes)),
				"Remove position or league filters",
			},
		}
	}

	items := make([]model.Ranked, len(candidates))
	for i, p := range candidates {
		items[i] = model.Ranked{Player: p, Score: PotentialScore(p, r.MaxAge)}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })

	ageGroups := map[string]int{}
	leagues := map[string]int{}
	for _, p := range candidates {
		age, _ := p.Age()
		switch {
		case age <= 19:
			ageGroups["19 and under"]++
		case age <= 22:
			ageGroups["20-22"]++
		default:
			ageGroups["23 and over"]++
		}
		leagues[p.Key.League]++
	}

	summary := fmt.Sprintf("Found %d young prospects under %d", len(candidates), r.MaxAge)
	if c.Position != "" {
		summary += " (" + c.Position + ")"
	}
	if c.League != "" {
		summary += " in " + c.League
	}
	return model.Analysis{
		Result:    model.RankedResult{Items: truncate(items, c.Limit), Matched: len(items), SortKey: "potential_score"},
		Summary:   summary,
		Breakdown: map[string]map[string]int{"age_groups": ageGroups, "leagues": leagues},
	}
}

func (a *Analyzer) TopPerformers(r model.TopPerformers) model.Analysis {
	if !a.knownStat(r.Stat) {
		return model.Analysis{
			Result:  emptyResult(),
			Empty:   true,
			Message: fmt.Sprintf("Stat '%s' not found in data", r.Stat),
			Suggestions: []string{
				"Try: 'goals', 'assists', 'goals_per_90', 'assists_per_90'",
				"Check the spelling of the statistic",
			},
		}
	}
	c := r.Criteria
	c.SortKey = r.Stat
	res := Rank(a.src.All(), c)
	if res.Len() == 0 {
		return model.Analysis{
			Result:      res,
			Empty:       true,
			Message:     "No players found matching criteria",
			Suggestions: relaxations(c),
		}
	}
	summary := fmt.Sprintf("Top %d performers in %s", res.Len(), r.Stat)
	if c.Position != "" {
		summary += " (" + c.Position + ")"
	}
	if c.League != "" {
		summary += " in " + c.League
	}
	return model.Analysis{Result: res, Summary: summary}
}

func (a *Analyzer) knownStat(stat string) bool {
	switch stat {
	case SortPerformance, model.MetricDefensiveActions, model.MetricProgressiveActions:
		return true
	}
	return a.src.HasMetric(stat)
}

func (a *Analyzer) CustomFilter(r model.CustomFilter) model.Analysis {
	res := Rank(a.src.All(), r.Criteria)
	if res.Len() == 0 {
		return model.Analysis{
			Result:      res,
			Empty:       true,
			Message:     "No players found matching all criteria",
			Suggestions: append(relaxations(r.Criteria), "Try relaxing some filters"),
		}
	}
	return model.Analysis{
		Result:  res,
		Summary: fmt.Sprintf("Found %d players matching custom criteria", res.Matched),
	}
}

// Tactical ranks candidates around a target player. Priority stats, when given,
// score candidates by their mean min-max normalized value; otherwise candidates
// are ordered by similarity to the target.
func (a *Analyzer) Tactical(r model.TacticalAnalysis) model.Analysis {
	c := r.Criteria.Normalize()
	all := a.src.All()

	var res model.RankedResult
	if len(r.PriorityStats) > 0 {
		c.SimilarTo = ""
		candidates := excludeTarget(Filter(all, c), r.TargetPlayer)
		items := tacticalScores(candidates, r.PriorityStats)
		res = model.RankedResult{Items: truncate(items, c.Limit), Matched: len(items), SortKey: "tactical_score"}
		res.Reference = FindReference(all, r.TargetPlayer)
	} else {
		// Every row of the target is excluded, not just the resolved one:
		// another season of the same player is not a replacement.
		c.SimilarTo = ""
		candidates := excludeTarget(Filter(all, c), r.TargetPlayer)
		ref := FindReference(all, r.TargetPlayer)
		var items []model.Ranked
		if ref != nil {
			items = bySimilarity(ref, candidates)
		} else {
			items = bySortKey(candidates, c.SortKey)
		}
		res = model.RankedResult{Items: truncate(items, c.Limit), Matched: len(items), Reference: ref, SortKey: c.SortKey}
	}

	if res.Len() == 0 {
		var filters []string
		if c.Position != "" {
			filters = append(filters, "position: "+c.Position)
		}
		if c.League != "" {
			filters = append(filters, "league: "+c.League)
		}
		if c.AgeMin != nil || c.AgeMax != nil {
			filters = append(filters, "age: "+boundString(c.AgeMin)+"-"+boundString(c.AgeMax))
		}
		return model.Analysis{
			Result:  res,
			Empty:   true,
			Message: "No tactical candidates found with criteria: " + strings.Join(filters, ", "),
			Suggestions: []string{
				"Try expanding age range or removing position/league filters",
				fmt.Sprintf("Reduce minimum minutes from %s", formatNumber(c.MinMinutes)),
				"Check if the target player name is spelled correctly",
			},
		}
	}

	summary := fmt.Sprintf("Found %d tactical candidates", res.Len())
	if r.TargetPlayer != "" {
		summary += " for " + r.TargetPlayer
	}
	if c.Position != "" {
		summary += " (" + c.Position + ")"
	}
	if c.League != "" {
		summary += " in " + c.League
	}
	if r.Reasoning != "" {
		summary += "\n\nTactical Analysis:\n" + r.Reasoning
	}
	return model.Analysis{
		Result:   res,
		Summary:  summary,
		Insights: tacticalInsights(res, r.Reasoning),
	}
}

func excludeTarget(records []*model.PlayerRecord, target string) []*model.PlayerRecord {
	needle := strings.ToLower(strings.TrimSpace(target))
	if needle == "" {
		return records
	}
	out := make([]*model.PlayerRecord, 0, len(records))
	for _, r := range records {
		if !strings.Contains(strings.ToLower(r.Key.Name), needle) {
			out = append(out, r)
		}
	}
	return out
}

func tacticalScores(candidates []*model.PlayerRecord, stats []string) []model.Ranked {
	type span struct{ lo, hi float64 }
	spans := make([]span, len(stats))
	for i, s := range stats {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, p := range candidates {
			v := p.Value(s)
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		spans[i] = span{lo, hi}
	}

	items := make([]model.Ranked, len(candidates))
	for j, p := range candidates {
		var total float64
		valid := 0
		for i, s := range stats {
			if spans[i].hi > spans[i].lo {
				total += (p.Value(s) - spans[i].lo) / (spans[i].hi - spans[i].lo)
				valid++
			}
		}
		items[j] = model.Ranked{Player: p, Score: total / float64(max(valid, 1))}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })
	return items
}

func tacticalInsights(res model.RankedResult, reasoning string) []string {
	var insights []string
	players := res.Players()
	if len(players) == 0 {
		return nil
	}

	var ageSum float64
	aged, young := 0, 0
	leagues := map[string]int{}
	var minutes float64
	starters := 0
	for _, p := range players {
		if age, ok := p.Age(); ok {
			ageSum += float64(age)
			aged++
			if age <= youngCandidateAge {
				young++
			}
		}
		leagues[p.Key.League]++
		minutes += p.Minutes()
		if p.Minutes() >= regularStarterMin {
			starters++
		}
	}
	if aged > 0 {
		insights = append(insights, fmt.Sprintf("Average age of candidates: %.1f years", ageSum/float64(aged)))
		if young > 0 {
			insights = append(insights, fmt.Sprintf("%d young prospects (23 and under) identified", young))
		}
	}
	if top, n := topLeague(leagues); top != "" {
		insights = append(insights, fmt.Sprintf("%s has the most candidates (%d)", top, n))
	}
	insights = append(insights, "Highest tactical fit: "+players[0].Key.Name)
	insights = append(insights, fmt.Sprintf("Average playing time: %d minutes", int(minutes/float64(len(players)))))
	if starters > 0 {
		insights = append(insights, fmt.Sprintf("%d candidates are regular starters (2000+ minutes)", starters))
	}
	if reasoning != "" {
		preview := reasoning
		if r := []rune(reasoning); len(r) > reasoningPreview {
			preview = string(r[:reasoningPreview]) + "..."
		}
		insights = append(insights, "AI Analysis: "+preview)
	}
	return insights
}

func topLeague(counts map[string]int) (string, int) {
	best, n := "", 0
	for league, c := range counts {
		if c > n || (c == n && league < best) {
			best, n = league, c
		}
	}
	return best, n
}

// relaxations suggests concrete ways to broaden c.
func relaxations(c model.Criteria) []string {
	var out []string
	if c.MinMinutes > 0 {
		out = append(out, fmt.Sprintf("Try reducing minimum minutes (currently %s)", formatNumber(c.MinMinutes)))
	}
	if c.League != "" {
		out = append(out, fmt.Sprintf("Remove the league filter (%s)", c.League))
	}
	if c.Position != "" {
		out = append(out, fmt.Sprintf("Remove the position filter (%s)", c.Position))
	}
	if c.AgeMin != nil || c.AgeMax != nil || len(c.StatFilters) > 0 {
		out = append(out, "Remove age or stat restrictions")
	}
	return out
}

func emptyResult() model.RankedResult { return model.RankedResult{Items: []model.Ranked{}} }

func boundString(v *int) string {
	if v == nil {
		return "any"
	}
	return strconv.Itoa(*v)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
