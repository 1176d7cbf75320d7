package ping

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"pingwatch/internal/models"
)

// MarkerRule classifies output that contains any of Markers. Markers are
// lower-case and matched per line against the lower-cased output.
type MarkerRule struct {
	Status  models.Status
	Reason  models.Reason
	Markers []string
	// Exclude disqualifies a line that would otherwise match.
	Exclude []string
}

// Parser turns raw ping output into a ProbeResult. Rules are evaluated in
// order and the first rule with a matching line decides the status.
type Parser struct {
	Rules []MarkerRule
}

var unreachableMarkers = []string{
	"unreachable",
	"inacessível",
	"inalcançável",
	"inalcanzable",
	"inaccesible",
}

// replyExclude rejects unreachable replies and the "sending N bytes of data"
// banner, whose portuguese and spanish forms contain "bytes de".
var replyExclude = append([]string{"of data", "de dados", "de datos"}, unreachableMarkers...)

// DefaultRules cover english, portuguese and spanish output of the linux,
// bsd/darwin and windows ping utilities.
var DefaultRules = []MarkerRule{
	{
		Status:  models.StatusOK,
		Markers: []string{"reply from", "bytes from", "resposta de", "bytes de", "respuesta desde"},
		Exclude: replyExclude,
	},
	{
		Status:  models.StatusError,
		Reason:  models.ReasonUnreachable,
		Markers: unreachableMarkers,
	},
	{
		Status: models.StatusTimeout,
		Reason: models.ReasonToolTimeout,
		Markers: []string{
			"request timed out", "timed out", "timeout",
			"100% packet loss", "100% loss",
			"tempo esgotado", "esgotado o tempo limite", "100% de perda",
			"tiempo de espera agotado", "100% perdidos",
		},
	},
	{
		Status: models.StatusError,
		Reason: models.ReasonHostNotFound,
		Markers: []string{
			"unknown host", "could not find host", "name or service not known",
			"cannot resolve", "temporary failure in name resolution",
			"no address associated with hostname", "nodename nor servname",
			"não foi possível encontrar", "não pôde encontrar", "não conseguiu encontrar",
			"no se pudo encontrar", "no pudo encontrar",
		},
	},
}

// DefaultParser is used by the package-level Parse.
var DefaultParser = &Parser{Rules: DefaultRules}

// Parse classifies raw with DefaultParser.
func Parse(raw, target string, ts time.Time) models.ProbeResult {
	return DefaultParser.Parse(raw, target, ts)
}

// Parse never fails: anything it cannot classify is an ERROR that keeps the
// raw output for diagnosis.
func (p *Parser) Parse(raw, target string, ts time.Time) models.ProbeResult {
	result := models.ProbeResult{
		Target:    target,
		Timestamp: ts,
		RawOutput: raw,
	}

	if strings.TrimSpace(raw) == "" {
		result.Status = models.StatusError
		result.Reason = models.ReasonEmptyOutput
		result.RawOutput = "no output from ping"
		return result
	}

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	rule, line := p.match(lines)
	if rule == nil {
		result.Status = models.StatusError
		result.Reason = models.ReasonUnparsed
		return result
	}

	result.Status = rule.Status
	result.Reason = rule.Reason
	if rule.Status != models.StatusOK {
		return result
	}

	result.RTT = extractRTT(line, raw)
	result.TTL = extractTTL(line, raw)
	result.PayloadBytes = extractBytes(line, raw)
	return result
}

func (p *Parser) match(lines []string) (*MarkerRule, string) {
	lowered := make([]string, len(lines))
	for i, l := range lines {
		lowered[i] = strings.ToLower(l)
	}

	for i := range p.Rules {
		rule := &p.Rules[i]
		for j, l := range lowered {
			if containsAny(l, rule.Markers) && !containsAny(l, rule.Exclude) {
				return rule, lines[j]
			}
		}
	}
	return nil, ""
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

const number = `(\d+(?:[.,]\d+)?)`

var (
	replyRTTRegex = regexp.MustCompile(`(?i)(?:time|tempo|tiempo)\s*([=<])\s*` + number + `\s*ms`)

	summaryRTTRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:average|m[ée]dia|promedio)\s*=\s*` + number + `\s*ms`),
		regexp.MustCompile(`(?i)min/avg/max(?:/[a-z]+)?\s*=\s*[\d.,]+/([\d.,]+)/`),
		regexp.MustCompile(`(?i)(?:minimum|m[íi]nimo)\s*=\s*` + number + `\s*ms`),
		regexp.MustCompile(`(?i)(?:maximum|m[áa]ximo)\s*=\s*` + number + `\s*ms`),
	}

	ttlRegex = regexp.MustCompile(`(?i)ttl\s*[=:]\s*(\d+)`)

	bytesRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)bytes\s*[=:]\s*(\d+)`),
		regexp.MustCompile(`(?i)(\d+)\s*bytes`),
	}
)

// extractRTT looks at the reply line first, then summary lines, then any
// time= anywhere in the output. A "<" comparator ("time<1ms") records 0.
func extractRTT(line, raw string) *float64 {
	if rtt, ok := replyRTT(line); ok {
		return rtt
	}
	for _, re := range summaryRTTRegexes {
		if m := re.FindStringSubmatch(raw); m != nil {
			if v := parseNumber(m[1]); v != nil {
				return v
			}
		}
	}
	rtt, _ := replyRTT(raw)
	return rtt
}

func replyRTT(s string) (*float64, bool) {
	m := replyRTTRegex.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	if m[1] == "<" {
		return models.Float(0), true
	}
	v := parseNumber(m[2])
	return v, v != nil
}

func extractTTL(line, raw string) *int {
	for _, s := range []string{line, raw} {
		if m := ttlRegex.FindStringSubmatch(s); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n >= 0 && n <= 255 {
				return models.Int(n)
			}
		}
	}
	return nil
}

func extractBytes(line, raw string) *int {
	for _, s := range []string{line, raw} {
		for _, re := range bytesRegexes {
			if m := re.FindStringSubmatch(s); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil && n >= 0 {
					return models.Int(n)
				}
			}
		}
	}
	return nil
}

func parseNumber(s string) *float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}
