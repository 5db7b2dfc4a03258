package sqlguard

import (
	"regexp"
	"strings"
)

// The allow and deny lists are plain data so the exact rule set can be
// audited and extended without touching classification control flow.

// AllowedPrefixes are the leading tokens a statement may begin with, after
// leading whitespace and comments are skipped. The SET entries enumerate the
// exact diagnostic directives used for plan inspection; every other SET
// statement is rejected.
var AllowedPrefixes = []string{
	"SELECT",
	"WITH",
	"EXPLAIN",
	"SET STATISTICS",
	"SET SHOWPLAN_TEXT",
	"SET SHOWPLAN_ALL",
	"SET SHOWPLAN_XML",
}

// DeniedTokens are whole-word tokens that reject a statement wherever they
// appear, regardless of the leading keyword. The scan runs over the full
// text including comments: a deny token inside a comment still rejects.
// The scan is a second barrier against batches and comment obfuscation,
// not a parser.
var DeniedTokens = []string{
	"INSERT",
	"UPDATE",
	"DELETE",
	"MERGE",
	"DROP",
	"TRUNCATE",
	"ALTER",
	"CREATE",
	"GRANT",
	"REVOKE",
	"EXEC",
	"EXECUTE",
	"SP_EXECUTESQL",
	"XP_CMDSHELL",
}

var (
	// SELECT ... INTO <identifier> creates a table despite the SELECT prefix.
	intoClausePattern = regexp.MustCompile(`(?i)\bINTO\s+[\[#"\w]`)

	// SET <identifier> = catches a disguised UPDATE ... SET fragment and
	// variable assignment. The diagnostic SET directives carry no "=".
	setAssignPattern = regexp.MustCompile(`(?i)\bSET\s+[@\[\]".\w]+\s*=`)

	deniedTokenPatterns = compileDeniedTokens()
)

func compileDeniedTokens() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(DeniedTokens))
	for _, token := range DeniedTokens {
		patterns[token] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(token) + `\b`)
	}
	return patterns
}

// skipLeadingTrivia removes leading whitespace, statement separators, and SQL
// comments so the prefix check sees the first real token.
func skipLeadingTrivia(s string) string {
	for {
		s = strings.TrimLeft(s, " \t\r\n;")
		switch {
		case strings.HasPrefix(s, "--"):
			idx := strings.IndexByte(s, '\n')
			if idx < 0 {
				return ""
			}
			s = s[idx+1:]
		case strings.HasPrefix(s, "/*"):
			idx := strings.Index(s, "*/")
			if idx < 0 {
				return ""
			}
			s = s[idx+2:]
		default:
			return s
		}
	}
}

// hasAllowedPrefix reports whether s (already stripped of leading trivia)
// begins with one of AllowedPrefixes as a whole word.
func hasAllowedPrefix(s string) (string, bool) {
	upper := strings.ToUpper(s)
	for _, prefix := range AllowedPrefixes {
		if !strings.HasPrefix(upper, prefix) {
			continue
		}
		rest := upper[len(prefix):]
		if rest == "" || !isWordByte(rest[0]) {
			return prefix, true
		}
	}
	return "", false
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
