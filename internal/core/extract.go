package core

import (
	"regexp"
	"strings"
)

// maxSpecs caps derived/inferred spec lists
const maxSpecs = 8

// Delimiters for splitting a freeform description into spec fragments.
// Inference additionally splits on commas and slashes.
var (
	specSplitRe  = regexp.MustCompile("[\n\r•.;|-]")
	inferSplitRe = regexp.MustCompile("[\n\r,.;|/•-]")
	alnumRe      = regexp.MustCompile(`[a-zA-Z0-9]`)
)

// DeriveSpecs derives a spec list from a freeform description: split on
// newline/bullet/dot/semicolon/pipe/hyphen, trim, keep fragments longer than
// two characters containing at least one alphanumeric, dedup preserving order,
// cap at eight.
func DeriveSpecs(text string) []string {
	return DedupSpecs(splitFragments(specSplitRe, text))
}

// InferFragments splits loose text (user messages, memory titles, the business
// about blurb) into candidate spec fragments. Callers dedup and cap the
// combined result with DedupSpecs.
func InferFragments(text string) []string {
	return splitFragments(inferSplitRe, text)
}

// DedupSpecs removes duplicates preserving first-seen order and caps the list
func DedupSpecs(parts []string) []string {
	seen := make(map[string]bool, len(parts))
	var out []string
	for _, p := range parts {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
		if len(out) == maxSpecs {
			break
		}
	}
	return out
}

func splitFragments(re *regexp.Regexp, text string) []string {
	var out []string
	for _, part := range re.Split(text, -1) {
		part = strings.TrimSpace(part)
		if len(part) > 2 && alnumRe.MatchString(part) {
			out = append(out, part)
		}
	}
	return out
}

// Currency matchers, tried in order. The Rs form is rewritten to the rupee
// symbol with no separating space.
var (
	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\x{20B9}\s?[0-9]{1,3}(?:[,\s]?[0-9]{2,3})*(?:\.[0-9]{1,2})?`),
		regexp.MustCompile(`(?i)Rs\.?\s?[0-9]{1,3}(?:[,\s]?[0-9]{2,3})*(?:\.[0-9]{1,2})?`),
		regexp.MustCompile(`\$\s?[0-9]{1,3}(?:[,\s]?[0-9]{3})*(?:\.[0-9]{1,2})?`),
		regexp.MustCompile(`[0-9]{1,3}(?:,[0-9]{2,3})+(?:\.[0-9]{1,2})?`),
	}
	rsPrefixRe = regexp.MustCompile(`(?i)^Rs\.?\s*`)
)

// DerivePrice extracts a price token from free text, trying rupee-symbol
// amounts, "Rs" amounts, dollar amounts, then bare thousands-separated
// numbers. Returns "" when nothing matches.
func DerivePrice(text string) string {
	for _, re := range pricePatterns {
		m := strings.TrimSpace(re.FindString(text))
		if m == "" {
			continue
		}
		if rsPrefixRe.MatchString(m) {
			return "₹" + rsPrefixRe.ReplaceAllString(m, "")
		}
		return m
	}
	return ""
}

// EnsureDerived backfills empty specs/price from the brief description.
// Non-empty values are never overwritten, so re-running is a no-op.
func (c *Campaign) EnsureDerived() bool {
	changed := false
	if len(c.Specs) == 0 {
		if specs := DeriveSpecs(c.Brief.Description); len(specs) > 0 {
			c.Specs = specs
			changed = true
		}
	}
	if c.Price == "" {
		if price := DerivePrice(c.Brief.Description); price != "" {
			c.Price = price
			changed = true
		}
	}
	return changed
}
