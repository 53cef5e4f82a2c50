// Package faq answers common insurance questions by keyword matching.
package faq

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	fuzzyMinRunes    = 5
	fuzzyMaxDistance = 1

	// Fallback is returned when no topic matches.
	Fallback = "I'm not sure about that. Would you like to know about our insurance products, claims process, or general information?"

	// Greeting is the opening line of a conversation.
	Greeting = "Hello! How can I help you with SBI Life Insurance today?"
)

type topic struct {
	name     string
	keywords []string
	answer   string
}

// Evaluated in order; the first match wins.
var topics = []topic{
	{
		name:     "greeting",
		keywords: []string{"hello", "hi"},
		answer:   Greeting,
	},
	{
		name:     "term",
		keywords: []string{"term", "shield"},
		answer:   "SBI Life eShield provides comprehensive term insurance coverage.",
	},
	{
		name:     "savings",
		keywords: []string{"savings", "wealth"},
		answer:   "SBI Life Smart Wealth Builder offers both insurance and investment benefits.",
	},
	{
		name:     "retirement",
		keywords: []string{"retirement", "retire"},
		answer:   "SBI Life Retire Smart helps you build a retirement corpus with guaranteed returns.",
	},
	{
		name:     "child",
		keywords: []string{"child", "education"},
		answer:   "SBI Life Smart Champ ensures your child's future education needs.",
	},
	{
		name:     "claims",
		keywords: []string{"claim"},
		answer: strings.Join([]string{
			"You can file a claim online through our customer portal.",
			"Required documents include policy documents, claim forms, and identity proof.",
			"Our average claim settlement time is 48 hours for complete documentation.",
		}, " "),
	},
	{
		name:     "about",
		keywords: []string{"about", "sbi life"},
		answer: strings.Join([]string{
			"SBI Life Insurance is a joint venture between State Bank of India and BNP Paribas Cardif.",
			"We offer a wide range of life insurance products to meet different needs.",
			"Our products include term insurance, savings plans, retirement plans, and child plans.",
		}, " "),
	},
}

// Topics returns the names of the topics the responder knows about.
func Topics() []string {
	list := make([]string, 0, len(topics))
	for _, t := range topics {
		list = append(list, t.name)
	}
	return list
}

// Answer returns the canned answer for query.
func Answer(query string) string {
	a, _ := Match(query)
	return a
}

// Match returns the answer for query and the name of the matched topic. The
// topic is empty when the fallback answer is returned.
func Match(query string) (answer, topicName string) {
	q := strings.ToLower(query)

	for _, t := range topics {
		for _, k := range t.keywords {
			if strings.Contains(q, k) {
				return t.answer, t.name
			}
		}
	}

	words := strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	for _, t := range topics {
		for _, k := range t.keywords {
			if utf8.RuneCountInString(k) < fuzzyMinRunes {
				continue
			}
			for _, w := range words {
				if closeMatch(w, k) {
					return t.answer, t.name
				}
			}
		}
	}

	return Fallback, ""
}

// closeMatch reports whether word is a keyword with at most one missing or
// extra letter.
func closeMatch(word, keyword string) bool {
	if utf8.RuneCountInString(word) < fuzzyMinRunes {
		return false
	}
	d := fuzzy.RankMatchNormalizedFold(word, keyword)
	if d < 0 {
		d = fuzzy.RankMatchNormalizedFold(keyword, word)
	}
	return d >= 0 && d <= fuzzyMaxDistance
}
