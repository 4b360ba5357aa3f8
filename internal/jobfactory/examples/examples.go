// Package examples registers the two sample jobs the teacher shipped with
// its standalone local engine (local/wordcount.go, local/grep.go) as
// jobfactory.Spec values, so cmd/trackerd has something runnable without a
// caller supplying their own Map/Reduce functions in-process. The
// map/reduce user-code invocation model is otherwise a Non-goal (§1); these
// exist only to exercise the tracker end-to-end.
package examples

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/distmr/tracker/internal/jobfactory"
)

// RegisterDefaults registers the jobs that need no submission-time
// parameters. Grep needs a pattern chosen per deployment, so callers
// register it explicitly with NewGrepSpec.
func RegisterDefaults(registry *jobfactory.Registry) error {
	return registry.Register("wordcount", WordCountSpec())
}

var wordPattern = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// WordCountSpec counts occurrences of each word in the input text, folding
// case the way the teacher's WordCountJob does by default.
func WordCountSpec() jobfactory.Spec {
	reduceFn := func(word string, counts []string) jobfactory.KeyValue {
		total := 0
		for _, c := range counts {
			n, _ := strconv.Atoi(c)
			total += n
		}
		return jobfactory.KeyValue{Key: word, Value: strconv.Itoa(total)}
	}

	return jobfactory.Spec{
		Map: func(_, line string) []jobfactory.KeyValue {
			var kvs []jobfactory.KeyValue
			for _, word := range strings.Fields(line) {
				word = wordPattern.ReplaceAllString(word, "")
				if word == "" {
					continue
				}
				kvs = append(kvs, jobfactory.KeyValue{Key: strings.ToLower(word), Value: "1"})
			}
			return kvs
		},
		Reduce: reduceFn,
		// Word counts are additive, so a per-node combine pre-sums local
		// partial counts before shuffle the same way the final reduce does.
		Combine: reduceFn,
	}
}

// NewGrepSpec builds a Spec that emits lines matching pattern unchanged, the
// way the teacher's GrepJob does. caseSensitive false folds the pattern to a
// case-insensitive match.
func NewGrepSpec(pattern string, caseSensitive bool) (jobfactory.Spec, error) {
	expr := pattern
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return jobfactory.Spec{}, fmt.Errorf("examples: invalid grep pattern: %w", err)
	}

	return jobfactory.Spec{
		Map: func(key, line string) []jobfactory.KeyValue {
			if re.MatchString(line) {
				return []jobfactory.KeyValue{{Key: key, Value: line}}
			}
			return nil
		},
		Reduce: func(key string, values []string) jobfactory.KeyValue {
			if len(values) == 0 {
				return jobfactory.KeyValue{Key: key}
			}
			return jobfactory.KeyValue{Key: key, Value: strings.TrimSpace(values[0])}
		},
	}, nil
}
