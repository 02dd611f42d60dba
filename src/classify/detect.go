package classify

import (
	"math"
	"strings"

	"kairo/src/actions"
)

// Genre is the kind of writing a text most resembles.
type Genre string

const (
	GenreGeneral  Genre = "general"
	GenreEmail    Genre = "email"
	GenreCode     Genre = "code"
	GenreAcademic Genre = "academic"
	GenreSocial   Genre = "social"
	GenreBusiness Genre = "business"
	GenreCreative Genre = "creative"
	GenreData     Genre = "data"
)

// minConfidence below which Detect falls back to GenreGeneral.
const minConfidence = 0.2

// Detection is an advisory guess used to order the action picker.
type Detection struct {
	Genre      Genre
	Score      int
	Confidence float64
	Matched    []string
	Suggested  []actions.ID
}

type genreRule struct {
	genre      Genre
	indicators []string
	suggested  []actions.ID
}

// Evaluated in order; ties keep the earlier genre.
var genreRules = []genreRule{
	{GenreEmail, []string{"dear", "hi ", "hello", "best regards", "sincerely", "thank you", "@", "subject:", "cc:", "bcc:"},
		[]actions.ID{actions.Professional, actions.MakeConcise, actions.FixGrammar}},
	{GenreCode, []string{"function", "const", "let", "var", "=>", "import", "export", "class", "return", "{}", "();", "if (", "for (", "while ("},
		[]actions.ID{actions.Explain, actions.KeyPoints, actions.Summarize}},
	{GenreAcademic, []string{"therefore", "furthermore", "however", "moreover", "consequently", "thesis", "hypothesis", "research", "study", "analysis", "conclusion"},
		[]actions.ID{actions.Simplify, actions.Summarize, actions.Expand}},
	{GenreSocial, []string{"#", "@", "😀", "😊", "👍", "❤️", "lol", "omg", "btw", "check out", "follow me"},
		[]actions.ID{actions.MakeConcise, actions.FixGrammar, actions.Professional}},
	{GenreBusiness, []string{"pursuant to", "hereby", "agreement", "contract", "terms", "conditions", "liability", "whereas", "stakeholder"},
		[]actions.ID{actions.Simplify, actions.KeyPoints, actions.Professional}},
	{GenreCreative, []string{"\"", "said", "chapter", "once upon", "character", "plot", "story", "narrative", "dialogue"},
		[]actions.ID{actions.Expand, actions.FixGrammar, actions.Summarize}},
	{GenreData, []string{"•", "-", "1.", "2.", "3.", "\t", ",", "|", "total", "sum", "average", "percentage"},
		[]actions.ID{actions.KeyPoints, actions.Summarize, actions.Explain}},
}

var generalSuggested = []actions.ID{actions.FixGrammar, actions.Professional, actions.Explain, actions.Summarize}

// Detect scores text against genre indicators. Longer indicators weigh
// more; a few structural hints add a bonus once a genre already matched.
func Detect(text string) Detection {
	lower := strings.ToLower(text)
	best := Detection{Genre: GenreGeneral}

	for _, rule := range genreRules {
		score := 0
		var matched []string
		for _, ind := range rule.indicators {
			if strings.Contains(lower, ind) {
				matched = append(matched, ind)
				if len(ind) > 3 {
					score += 2
				} else {
					score++
				}
			}
		}
		if len(matched) > 0 {
			score += bonus(rule.genre, text, lower)
		}

		confidence := math.Min(float64(score)/math.Max(math.Sqrt(float64(len(text))/100), 1), 1)
		if score > best.Score {
			best = Detection{
				Genre:      rule.genre,
				Score:      score,
				Confidence: confidence,
				Matched:    matched,
				Suggested:  rule.suggested,
			}
		}
	}

	if best.Confidence < minConfidence {
		return Detection{Genre: GenreGeneral, Confidence: 1, Suggested: generalSuggested}
	}
	return best
}

func bonus(g Genre, text, lower string) int {
	switch g {
	case GenreEmail:
		if strings.Contains(text, "@") || strings.Contains(lower, "subject:") {
			return 5
		}
	case GenreCode:
		if strings.Contains(text, "()") || strings.Contains(text, "{") || strings.Contains(text, ";") {
			return 3
		}
	case GenreSocial:
		if len(text) < 280 {
			return 2
		}
	}
	return 0
}
