// Package preprocessing は分類器の前処理パイプラインで使うテキスト処理を提供する
//
// 各関数は単体で使えるほか、Task で名前から naive_bayes.PrepTask を取り出せる。
package preprocessing

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/YuminosukeSato/textnb/pkg/errors"
	"github.com/YuminosukeSato/textnb/sklearn/naive_bayes"
)

// Tokenize は空白でトークンに分割する（連続する空白は1つとみなす）
func Tokenize(s string) []string {
	return strings.Fields(s)
}

// SplitSpace は半角スペース1文字で分割する。空のトークンも残る。
func SplitSpace(s string) []string {
	return strings.Split(s, " ")
}

// LowerCase は小文字に変換する
func LowerCase(s string) string {
	return strings.ToLower(s)
}

// newSanitizer は発音区別符号を落とし、英数字と空白以外を空白に置き換える
func newSanitizer() transform.Transformer {
	return transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
				return r
			}
			return ' '
		}),
		norm.NFC,
	)
}

// Sanitize は "Café, s'il vous plaît!" を "Cafe  s il vous plait " のように正規化する
func Sanitize(s string) string {
	out, _, err := transform.String(newSanitizer(), s)
	if err != nil {
		return s
	}
	return out
}

// DefaultStopWords は英語の代表的なストップワード
var DefaultStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
	"i", "in", "is", "it", "its", "my", "of", "on", "or", "that",
	"the", "this", "to", "was", "were", "will", "with",
}

// RemoveStopWords は stop に含まれるトークンを取り除く
func RemoveStopWords(tokens []string, stop []string) []string {
	set := make(map[string]struct{}, len(stop))
	for _, w := range stop {
		set[w] = struct{}{}
	}
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := set[t]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "cannot": {},
}

// MarkNegation は否定語の直後のトークンに "!" を付け、否定語自体は落とす。
// "don't" のように n't で終わるトークンも否定語として扱う。
func MarkNegation(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	negate := false
	for _, t := range tokens {
		lower := strings.ToLower(t)
		if _, ok := negations[lower]; ok || strings.HasSuffix(lower, "n't") {
			negate = true
			continue
		}
		if negate {
			t = "!" + t
			negate = false
		}
		out = append(out, t)
	}
	return out
}

// Stem は各トークンを Porter2 (snowball english) で語幹にする。
// MarkNegation が付けた "!" は残したまま語幹だけを取り出す。
func Stem(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		if rest, ok := strings.CutPrefix(t, "!"); ok && rest != "" {
			out[i] = "!" + english.Stem(rest, false)
			continue
		}
		out[i] = english.Stem(t, false)
	}
	return out
}

// tasks は名前から取り出せる前処理タスク
var tasks = map[string]naive_bayes.PrepTask{
	"lowercase": naive_bayes.StringTask(LowerCase),
	"sanitize":  naive_bayes.StringTask(Sanitize),
	"tokenize":  naive_bayes.TokenizeTask(Tokenize),
	"split":     naive_bayes.TokenizeTask(SplitSpace),
	"stopwords": naive_bayes.TokensTask(func(t []string) []string { return RemoveStopWords(t, DefaultStopWords) }),
	"negation":  naive_bayes.TokensTask(MarkNegation),
	"stem":      naive_bayes.TokensTask(Stem),
}

// TaskNames は Task が受け付ける名前
func TaskNames() []string {
	return []string{"lowercase", "sanitize", "tokenize", "split", "stopwords", "negation", "stem"}
}

// Task は名前に対応する前処理タスクを返す
func Task(name string) (naive_bayes.PrepTask, error) {
	t, ok := tasks[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.NewValidationError("prep", "unknown prep task, expected one of "+strings.Join(TaskNames(), ", "), name)
	}
	return t, nil
}

// Pipeline は名前の列を前処理タスクの列に変換する
func Pipeline(names []string) ([]naive_bayes.PrepTask, error) {
	out := make([]naive_bayes.PrepTask, 0, len(names))
	for _, n := range names {
		t, err := Task(n)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// DefaultPipeline は lowercase → sanitize → tokenize
func DefaultPipeline() []naive_bayes.PrepTask {
	p, _ := Pipeline([]string{"lowercase", "sanitize", "tokenize"})
	return p
}
