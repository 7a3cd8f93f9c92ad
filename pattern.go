package pricewatch

import "regexp"

// CompilePattern compiles an item's price pattern. Patterns are always
// case-insensitive, multi-line, and let '.' match newlines, so rules can
// span markup line breaks without carrying their own flags.
// An unparseable pattern is reported as EINVALID.
//
// Patterns use RE2 syntax (package regexp). Lookahead, lookbehind and
// backreferences such as (?=...), (?<=...) or \1 are not supported and are
// rejected as EINVALID; rewrite them with a capture group instead, e.g.
// `price:\s*([0-9.,]+)` rather than `(?<=price:\s*)[0-9.,]+`.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?ims)" + pattern)
	if err != nil {
		return nil, Errorf(EINVALID, "invalid pattern %q: %v", pattern, err)
	}
	return re, nil
}

// ExtractByPattern returns the fragment of html matched by pattern.
// Capture group 1 is preferred when the pattern defines it and it took part
// in the match; otherwise the whole match is used. The fragment is capped at
// MaxFragmentLen characters. A pattern that does not match returns false and
// no error.
func ExtractByPattern(html, pattern string) (string, bool, error) {
	re, err := CompilePattern(pattern)
	if err != nil {
		return "", false, err
	}

	loc := re.FindStringSubmatchIndex(html)
	if loc == nil {
		return "", false, nil
	}

	start, end := loc[0], loc[1]
	if re.NumSubexp() >= 1 && loc[2] >= 0 {
		start, end = loc[2], loc[3]
	}
	return TruncateFragment(html[start:end]), true, nil
}
