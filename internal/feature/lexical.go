package feature

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mtibben/confusables"
	"golang.org/x/net/idna"

	"github.com/nao1215/phishscan/internal/model"
)

// ipHostPattern matches an authority that is exactly a dotted quad.
var ipHostPattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// redirectOffset skips "https://" so only later occurrences of "//" count.
const redirectOffset = 8

// Lexical derives string-shape features from the raw URL and its parts.
// shorteners is matched case-insensitively as a substring of the whole URL.
func Lexical(rawURL string, parts model.URLParts, shorteners []string) model.LexicalFeatures {
	return model.LexicalFeatures{
		Length:              utf8.RuneCountInString(rawURL),
		HasAtSymbol:         strings.Contains(rawURL, "@"),
		HasIPHost:           ipHostPattern.MatchString(parts.Netloc),
		UsesShortener:       usesShortener(rawURL, shorteners),
		DoubleSlashRedirect: doubleSlashRedirect(rawURL),
		HasPrefixSuffixDash: strings.Contains(parts.Netloc, "-"),
		SubdomainCount:      strings.Count(parts.Netloc, "."),
		IsPunycode:          isPunycode(parts.Hostname),
		HasHomoglyphs:       hasHomoglyphs(parts.Hostname),
	}
}

func doubleSlashRedirect(rawURL string) bool {
	runes := []rune(rawURL)
	if len(runes) <= redirectOffset {
		return false
	}
	return strings.Contains(string(runes[redirectOffset:]), "//")
}

func usesShortener(rawURL string, shorteners []string) bool {
	lower := strings.ToLower(rawURL)
	for _, s := range shorteners {
		if s != "" && strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

func isPunycode(host string) bool {
	for _, label := range strings.Split(host, ".") {
		if strings.HasPrefix(label, "xn--") {
			return true
		}
	}
	return false
}

// hasHomoglyphs checks the Unicode form of host. Pure ASCII hosts are never
// flagged; look-alike ASCII ("paypa1") is a different signal.
func hasHomoglyphs(host string) bool {
	unicodeHost := host
	if converted, err := idna.Lookup.ToUnicode(host); err == nil && converted != "" {
		unicodeHost = converted
	}
	if !hasNonASCII(unicodeHost) {
		return false
	}
	for _, r := range unicodeHost {
		if r < utf8.RuneSelf {
			continue
		}
		// A non-ASCII rune whose skeleton is plain ASCII imitates a Latin letter.
		if skeleton := confusables.Skeleton(string(r)); skeleton != string(r) && !hasNonASCII(skeleton) {
			return true
		}
	}
	return false
}

func hasNonASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return true
		}
	}
	return false
}
