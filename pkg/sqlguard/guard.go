// Package sqlguard gates canvas SQL to read-only statements.
//
// The check runs before any statement reaches a connection: the SQL is
// stripped of string literals and comments, the statement prefix must be a
// read verb, and write/DDL keywords anywhere in the cleaned text reject the
// statement. Per-session read-only enforcement on the connection is the
// adapters' job; this gate is the client-side line of defense that works
// even against servers where the session setting is unavailable.
package sqlguard

import (
	"fmt"
	"regexp"
	"strings"
)

// ViolationError reports why a statement was rejected.
type ViolationError struct {
	Reason  string
	Keyword string
}

func (e *ViolationError) Error() string {
	if e.Keyword != "" {
		return fmt.Sprintf("read-only violation: statement contains %s", e.Keyword)
	}
	return fmt.Sprintf("read-only violation: %s", e.Reason)
}

// allowedPrefixes are the statement verbs a canvas may start with, checked
// after literal/comment stripping so a leading directive comment never
// hides the verb.
var allowedPrefixes = []string{"SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "WITH"}

// dangerousKeywords are rejected as whole words anywhere in the cleaned
// statement. Quoted text never reaches this scan, so a literal like
// 'DROP ship date' is fine.
var dangerousKeywords = []struct {
	re      *regexp.Regexp
	keyword string
}{
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])INSERT(?:[^a-zA-Z_]|$)`), "INSERT"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])UPDATE(?:[^a-zA-Z_]|$)`), "UPDATE"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])DELETE(?:[^a-zA-Z_]|$)`), "DELETE"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])DROP(?:[^a-zA-Z_]|$)`), "DROP"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])CREATE(?:[^a-zA-Z_]|$)`), "CREATE"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])ALTER(?:[^a-zA-Z_]|$)`), "ALTER"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])TRUNCATE(?:[^a-zA-Z_]|$)`), "TRUNCATE"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])GRANT(?:[^a-zA-Z_]|$)`), "GRANT"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])REVOKE(?:[^a-zA-Z_]|$)`), "REVOKE"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])MERGE(?:[^a-zA-Z_]|$)`), "MERGE"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])CALL(?:[^a-zA-Z_]|$)`), "CALL"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])EXEC(?:[^a-zA-Z_]|$)`), "EXEC"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])EXECUTE(?:[^a-zA-Z_]|$)`), "EXECUTE"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])REPLACE(?:[^a-zA-Z_]|$)`), "REPLACE"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])RENAME(?:[^a-zA-Z_]|$)`), "RENAME"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])VACUUM(?:[^a-zA-Z_]|$)`), "VACUUM"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])ATTACH(?:[^a-zA-Z_]|$)`), "ATTACH"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])DETACH(?:[^a-zA-Z_]|$)`), "DETACH"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])COPY(?:[^a-zA-Z_]|$)`), "COPY"},
	{regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])LOCK(?:[^a-zA-Z_]|$)`), "LOCK"},
}

// dangerousPatterns catch constructs that are not plain keywords: file
// access and sleep/benchmark primitives.
var dangerousPatterns = []struct {
	re   *regexp.Regexp
	desc string
}{
	{regexp.MustCompile(`(?i)\bINTO\s+OUTFILE\b`), "INTO OUTFILE"},
	{regexp.MustCompile(`(?i)\bINTO\s+DUMPFILE\b`), "INTO DUMPFILE"},
	{regexp.MustCompile(`(?i)\bLOAD_FILE\s*\(`), "LOAD_FILE()"},
	{regexp.MustCompile(`(?i)\bSLEEP\s*\(`), "SLEEP()"},
	{regexp.MustCompile(`(?i)\bBENCHMARK\s*\(`), "BENCHMARK()"},
	{regexp.MustCompile(`(?i)\bPG_SLEEP\s*\(`), "PG_SLEEP()"},
}

// setPattern blocks SET statements without tripping on columns named set.
var setPattern = regexp.MustCompile(`(?i)(?:^|;)\s*SET\b`)

// Check returns nil when the statement is read-only, or a *ViolationError
// naming the first problem found.
func Check(sql string) error {
	cleaned := StripLiterals(sql)
	stmt := strings.TrimSpace(cleaned)
	if stmt == "" {
		return &ViolationError{Reason: "empty statement"}
	}

	upper := strings.ToUpper(stmt)
	allowed := false
	for _, prefix := range allowedPrefixes {
		if upper == prefix || strings.HasPrefix(upper, prefix+" ") ||
			strings.HasPrefix(upper, prefix+"\n") || strings.HasPrefix(upper, prefix+"\t") ||
			strings.HasPrefix(upper, prefix+"(") {
			allowed = true
			break
		}
	}
	if !allowed {
		return &ViolationError{Reason: "only SELECT, SHOW, DESCRIBE, EXPLAIN and WITH statements are allowed"}
	}

	if _, rest, found := strings.Cut(stmt, ";"); found && strings.TrimSpace(rest) != "" {
		return &ViolationError{Reason: "multiple statements are not allowed"}
	}

	for _, dk := range dangerousKeywords {
		if dk.re.MatchString(cleaned) {
			return &ViolationError{Keyword: dk.keyword}
		}
	}
	for _, dp := range dangerousPatterns {
		if dp.re.MatchString(cleaned) {
			return &ViolationError{Keyword: dp.desc}
		}
	}
	if setPattern.MatchString(cleaned) {
		return &ViolationError{Keyword: "SET"}
	}

	return nil
}
