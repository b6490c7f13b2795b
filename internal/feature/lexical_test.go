package feature

import (
	"strings"
	"testing"

	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/urlparts"
)

var testShorteners = []string{"bit.ly", "tinyurl.com", "ow.ly"}

func lexical(rawURL string) model.LexicalFeatures {
	return Lexical(rawURL, urlparts.Decompose(rawURL), testShorteners)
}

func TestLexicalHasIPHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want bool
	}{
		{url: "http://1.2.3.4/login", want: true},
		{url: "http://192.168.100.200", want: true},
		{url: "http://1.2.3.4.com/", want: false},
		{url: "http://1.2.3.4:8080/", want: false},
		{url: "http://1234.2.3.4/", want: false},
		{url: "http://example.com/1.2.3.4", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			if got := lexical(tt.url).HasIPHost; got != tt.want {
				t.Errorf("HasIPHost(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestLexicalDoubleSlashRedirect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want bool
	}{
		{url: "http://evil.com//good.com", want: true},
		{url: "http://evil.com/good", want: false},
		{url: "https://example.com", want: false},
		{url: "http://a.b/?u=http://c.d", want: true},
		{url: "https:/", want: false},
		{url: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			if got := lexical(tt.url).DoubleSlashRedirect; got != tt.want {
				t.Errorf("DoubleSlashRedirect(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestLexical(t *testing.T) {
	t.Parallel()

	t.Run("counts characters not bytes", func(t *testing.T) {
		t.Parallel()
		if got := lexical("http://ü.de").Length; got != 11 {
			t.Errorf("Length = %d, want 11", got)
		}
	})

	t.Run("detects at symbol", func(t *testing.T) {
		t.Parallel()
		if !lexical("http://bank.com@evil.com/").HasAtSymbol {
			t.Error("expected HasAtSymbol")
		}
		if lexical("http://bank.com/").HasAtSymbol {
			t.Error("unexpected HasAtSymbol")
		}
	})

	t.Run("detects shorteners case-insensitively", func(t *testing.T) {
		t.Parallel()
		if !lexical("https://BIT.LY/3abc").UsesShortener {
			t.Error("expected UsesShortener")
		}
		if lexical("https://example.com/").UsesShortener {
			t.Error("unexpected UsesShortener")
		}
	})

	t.Run("empty shortener entries are ignored", func(t *testing.T) {
		t.Parallel()
		got := Lexical("https://example.com/", urlparts.Decompose("https://example.com/"), []string{""})
		if got.UsesShortener {
			t.Error("empty entry must not match every URL")
		}
	})

	t.Run("dash and dots in authority", func(t *testing.T) {
		t.Parallel()
		got := lexical("http://secure-login.account.verify.paypal.example.com/")
		if !got.HasPrefixSuffixDash {
			t.Error("expected HasPrefixSuffixDash")
		}
		if got.SubdomainCount != 5 {
			t.Errorf("SubdomainCount = %d, want 5", got.SubdomainCount)
		}
	})

	t.Run("dash in path does not count", func(t *testing.T) {
		t.Parallel()
		if lexical("http://example.com/a-b").HasPrefixSuffixDash {
			t.Error("unexpected HasPrefixSuffixDash")
		}
	})

	t.Run("punycode host", func(t *testing.T) {
		t.Parallel()
		if !lexical("http://xn--80ak6aa92e.com/").IsPunycode {
			t.Error("expected IsPunycode")
		}
		if lexical("http://example.com/").IsPunycode {
			t.Error("unexpected IsPunycode")
		}
	})

	t.Run("ascii host has no homoglyphs", func(t *testing.T) {
		t.Parallel()
		if lexical("http://paypa1.com/").HasHomoglyphs {
			t.Error("unexpected HasHomoglyphs for ASCII host")
		}
	})

	t.Run("cyrillic look-alike host has homoglyphs", func(t *testing.T) {
		t.Parallel()
		got := lexical("http://" + "раураl" + ".com/")
		if !got.HasHomoglyphs {
			t.Error("expected HasHomoglyphs")
		}
		if !got.IsPunycode {
			t.Error("expected IsPunycode after IDNA conversion")
		}
	})

	t.Run("greek omicron in host has homoglyphs", func(t *testing.T) {
		t.Parallel()
		if !lexical("https://g" + "\u03bf" + "ogle.com/").HasHomoglyphs {
			t.Error("expected HasHomoglyphs")
		}
	})

	t.Run("malformed URL still yields features", func(t *testing.T) {
		t.Parallel()
		raw := "http://[::1" + strings.Repeat("a", 80)
		got := lexical(raw)
		if got.Length != len(raw) {
			t.Errorf("Length = %d, want %d", got.Length, len(raw))
		}
		if got.HasIPHost || got.SubdomainCount != 0 {
			t.Errorf("expected empty authority features, got %+v", got)
		}
	})
}
