// Package sqlguard validates and rewrites SQL text before it reaches the
// server. Classification is a string-scan heuristic layered for defense in
// depth, not a SQL parser: the allow-list prefix check and the deny-list
// whole-word scan are independent barriers and a statement must pass both.
// All functions except ApplyTimeout are pure and safe for concurrent use.
package sqlguard

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultTimeoutSeconds bounds query execution when the caller does not
// supply a timeout.
const DefaultTimeoutSeconds = 30

// Classification is the allow/deny verdict for one statement.
type Classification struct {
	Allowed bool
	Reason  string
}

// Classify inspects raw SQL text and decides whether it may be executed.
// It fails closed: if either the prefix check or the deny-list scan fails,
// the statement is rejected regardless of the other check's outcome. The
// verdict never mutates the input and is never auto-corrected; a rejected
// statement must not be fixed up and resubmitted.
func Classify(sqlText string) Classification {
	stripped := skipLeadingTrivia(sqlText)
	if stripped == "" {
		return Classification{Reason: "empty statement"}
	}

	if _, ok := hasAllowedPrefix(stripped); !ok {
		return Classification{Reason: fmt.Sprintf(
			"statement must begin with one of %s", strings.Join(AllowedPrefixes, ", "))}
	}

	// Independent second barrier: a semicolon-separated batch or a
	// comment-obfuscated write slips past a prefix-only check.
	for _, token := range DeniedTokens {
		if deniedTokenPatterns[token].MatchString(sqlText) {
			return Classification{Reason: fmt.Sprintf("statement contains denied keyword %s", token)}
		}
	}

	if intoClausePattern.MatchString(sqlText) {
		return Classification{Reason: "INTO clause is not allowed (SELECT ... INTO creates a table)"}
	}
	if setAssignPattern.MatchString(sqlText) {
		return Classification{Reason: "SET assignment is not allowed"}
	}

	return Classification{Allowed: true}
}

var (
	// First SELECT keyword with its optional ALL/DISTINCT qualifier. TOP
	// must follow the qualifier in T-SQL, so this marks the insertion point.
	firstSelectPattern = regexp.MustCompile(`(?i)\bSELECT\b(\s+DISTINCT\b|\s+ALL\b)?`)

	topFollowsPattern = regexp.MustCompile(`(?i)^\s*TOP\b`)

	// An OFFSET clause makes TOP illegal in the same query scope, with or
	// without a following FETCH.
	offsetClausePattern = regexp.MustCompile(`(?i)\bOFFSET\s+\S+\s+ROWS?\b`)
)

// ApplyRowLimit injects a TOP (maxRows) qualifier after the first SELECT
// keyword unless the text already carries a row-limiting clause. Idempotent:
// the presence check short-circuits re-insertion, so applying it twice yields
// the same text as applying it once.
func ApplyRowLimit(sqlText string, maxRows int) string {
	if maxRows <= 0 {
		return sqlText
	}

	// Search past leading comments so a SELECT mentioned in one does not
	// become the insertion point.
	stripped := skipLeadingTrivia(sqlText)
	base := len(sqlText) - len(stripped)

	loc := firstSelectPattern.FindStringIndex(stripped)
	if loc == nil {
		return sqlText
	}
	insertAt := base + loc[1]
	if topFollowsPattern.MatchString(sqlText[insertAt:]) {
		return sqlText
	}
	if offsetClausePattern.MatchString(sqlText) {
		return sqlText
	}

	return fmt.Sprintf("%s TOP (%d)%s", sqlText[:insertAt], maxRows, sqlText[insertAt:])
}

// ApplyTimeout derives the execution deadline for one request. This is the
// only non-pure operation in the package: the returned context is handed to
// the driver and the caller must invoke cancel when the request finishes.
func ApplyTimeout(ctx context.Context, seconds int) (context.Context, context.CancelFunc) {
	if seconds <= 0 {
		seconds = DefaultTimeoutSeconds
	}
	return context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
}
