package usecase

import (
	"regexp"
	"strings"

	"support-console/internal/domain/entity"
)

// routingRule pairs a handler with the keyword and pattern evidence that
// points at it. Kept as data so the rule set stays inspectable.
type routingRule struct {
	handler  entity.HandlerKind
	keywords []string
	patterns []*regexp.Regexp
}

var routingRules = []routingRule{
	{
		handler: entity.HandlerTravelNotice,
		keywords: []string{
			"travel notice", "travel plan", "trip notification", "going abroad", "traveling to",
			"activate travel", "travel alert", "international travel", "foreign transaction",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(travel|trip)\b.*\b(notice|notification|alert)\b`),
			regexp.MustCompile(`(?i)\b(activate|update|submit)\b.*\b(travel|trip)\b`),
			regexp.MustCompile(`(?i)\b(travel|trip|traveling|going)\b.*\b(to|abroad|overseas|internationally)\b`),
		},
	},
	{
		handler: entity.HandlerTransactionAnalysis,
		keywords: []string{
			"transaction", "purchase", "payment", "declined", "approved", "charge",
			"spent", "buy", "bought", "paid", "decline",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(transaction|purchase|payment|charge)\b.*\b(declined|denied|failed|rejected)\b`),
			regexp.MustCompile(`(?i)\b(why|how)\b.*\b(transaction|payment|card)\b.*\b(declined|denied|failed|rejected)\b`),
			regexp.MustCompile(`(?i)\b(check|review|view|explain)\b.*\b(transaction|purchase|payment|charge)\b`),
		},
	},
	{
		handler: entity.HandlerCardServices,
		keywords: []string{
			"card", "credit card", "debit card", "visa", "mastercard", "replace", "activate card",
			"lost card", "stolen card", "new card", "card limit", "credit limit",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(card)\b.*\b(lost|stolen|damaged|broken|replace|new|activate)\b`),
			regexp.MustCompile(`(?i)\b(credit|debit)\b.*\b(limit|balance|available|increase|decrease)\b`),
			regexp.MustCompile(`(?i)\b(report|freeze|block|unblock|lock|unlock)\b.*\b(card|account)\b`),
		},
	},
	{
		handler: entity.HandlerGeneralInquiry,
		keywords: []string{
			"help", "support", "question", "inquiry", "information", "how do i", "how to",
			"what is", "account", "balance", "statement",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(what|how|when|where|why|who)\b.*\b(account|balance|statement|fee|charge)\b`),
			regexp.MustCompile(`(?i)\b(help|assist|support)\b.*\b(with|me|please|need)\b`),
			regexp.MustCompile(`(?i)\b(account|profile|settings|preferences)\b.*\b(view|change|update|modify)\b`),
		},
	},
}

// travelDestinations are location words that hint at travel context even when
// no notice-specific phrasing is present.
var travelDestinations = []string{"tokyo", "japan", "berlin", "germany", "barcelona", "spain"}

var (
	travelWordRe = regexp.MustCompile(`\btravel\b`)
	noticeWordRe = regexp.MustCompile(`\bnotice\b`)
	lostWordRe   = regexp.MustCompile(`\blost\b`)
	cardWordRe   = regexp.MustCompile(`\bcard\b`)
)

// HeuristicScore is the deterministic evidence the matcher collects for a
// query against the turn context.
type HeuristicScore struct {
	KeywordMatches map[entity.HandlerKind][]string
	PatternMatches map[entity.HandlerKind][]string
	ContextScores  map[entity.HandlerKind]int
}

// ScoreQuery runs keyword, pattern, and context analysis over the query. It
// never fails; an unmatched query yields empty maps.
func ScoreQuery(query string, bank *entity.Context) HeuristicScore {
	score := HeuristicScore{
		KeywordMatches: map[entity.HandlerKind][]string{},
		PatternMatches: map[entity.HandlerKind][]string{},
		ContextScores:  map[entity.HandlerKind]int{},
	}
	lower := strings.ToLower(query)

	for _, rule := range routingRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				score.KeywordMatches[rule.handler] = append(score.KeywordMatches[rule.handler], kw)
			}
		}
		for _, p := range rule.patterns {
			if p.MatchString(query) {
				score.PatternMatches[rule.handler] = append(score.PatternMatches[rule.handler], p.String())
			}
		}
	}

	scoreContext(lower, bank, score.ContextScores)
	return score
}

// scoreContext attributes integer relevance scores from the customer's recent
// activity. Transaction clues combine by maximum so one strong match is not
// diluted; all other clues accumulate.
func scoreContext(lower string, bank *entity.Context, scores map[entity.HandlerKind]int) {
	if bank != nil {
		for _, tx := range bank.Transactions {
			if !wordMentioned(lower, tx.Merchant) && !wordMentioned(lower, tx.Location) {
				continue
			}
			clue := 1
			if tx.Declined() {
				clue = 2
			}
			if clue > scores[entity.HandlerTransactionAnalysis] {
				scores[entity.HandlerTransactionAnalysis] = clue
			}
		}
		if bank.Notice != nil {
			for _, country := range bank.Notice.Countries {
				if wordMentioned(lower, country) {
					scores[entity.HandlerTravelNotice] += 2
				}
			}
		}
	}

	if travelWordRe.MatchString(lower) && noticeWordRe.MatchString(lower) {
		scores[entity.HandlerTravelNotice] += 3
	}
	if lostWordRe.MatchString(lower) && cardWordRe.MatchString(lower) {
		scores[entity.HandlerCardServices] += 3
	}
	for _, dest := range travelDestinations {
		if wordMentioned(lower, dest) {
			scores[entity.HandlerTravelNotice]++
		}
	}
}

// wordMentioned checks for a word-boundary-anchored occurrence of term in the
// lowercased query.
func wordMentioned(lower, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
	return re.MatchString(lower)
}
