package cmd

import (
	"fmt"
	"strings"
)

// expectNotEmpty is the sentinel expected value meaning any non-empty lookup
// output passes, regardless of content.
const expectNotEmpty = "notempty"

// verifyMapNotEmpty dumps a map and fails on error or empty output. The
// success message carries the entry count.
func verifyMapNotEmpty(ctx *runContext, c *host, mapName string) bool {
	ctx.jr.beginTest("ypcat-"+mapName, fmt.Sprintf("map %s has entries", mapName))
	res := c.run(mapDumpRequest{mapName: mapName}, runOptions{})
	if !res.ok {
		ctx.jr.failure(fmt.Sprintf("ypcat %s failed", mapName))
		return false
	}
	trimmed := strings.TrimSpace(res.stdout)
	if trimmed == "" {
		ctx.jr.failure(fmt.Sprintf("ypcat %s returned no entries", mapName))
		return false
	}
	ctx.jr.success(fmt.Sprintf("%s holds %d entries", mapName, len(strings.Split(trimmed, "\n"))))
	return true
}

// verifyKeyLookup matches a single key against a map. expected == nil means
// the key must be absent; expectNotEmpty accepts any non-empty output; any
// other value must appear as a substring of the output.
func verifyKeyLookup(ctx *runContext, c *host, mapName, key string, expected *string) bool {
	ctx.jr.beginTest(fmt.Sprintf("ypmatch-%s-%s", key, mapName),
		fmt.Sprintf("lookup of %q in %s", key, mapName))
	res := c.run(keyLookupRequest{mapName: mapName, key: key}, runOptions{})
	switch {
	case !res.ok && expected == nil:
		ctx.jr.success(fmt.Sprintf("%q correctly absent from %s", key, mapName))
		return true
	case !res.ok:
		ctx.jr.failure(fmt.Sprintf("ypmatch %s %s failed", key, mapName))
		return false
	case strings.TrimSpace(res.stdout) == "":
		ctx.jr.failure(fmt.Sprintf("ypmatch %s %s returned empty output", key, mapName))
		return false
	case expected == nil:
		ctx.jr.failure(fmt.Sprintf("%q unexpectedly present in %s", key, mapName))
		return false
	case *expected == expectNotEmpty:
		ctx.jr.success(fmt.Sprintf("%q resolves in %s", key, mapName))
		return true
	case strings.Contains(res.stdout, *expected):
		ctx.jr.success(fmt.Sprintf("%q resolves to %q", key, strings.TrimSpace(res.stdout)))
		return true
	default:
		ctx.jr.failure(fmt.Sprintf("expected %q in output %q", *expected, strings.TrimSpace(res.stdout)))
		return false
	}
}

// matchPolicy selects which fields of a resolution line must carry the
// expected value.
type matchPolicy int

const (
	// matchFirstField: forward lookup, the expected value sits in field 0.
	matchFirstField matchPolicy = iota
	// matchRemainingFields: reverse lookup, the expected value is one of the
	// fields after field 0.
	matchRemainingFields
)

// verifyByAttribute resolves query through the system path (so the nsswitch
// method order applies) and scans the output for a line matching expected
// under policy.
func verifyByAttribute(ctx *runContext, c *host, database, query, expected string, policy matchPolicy) bool {
	ctx.jr.beginTest(fmt.Sprintf("getent-%s-%s", database, query),
		fmt.Sprintf("system resolution of %q in %s", query, database))
	res := c.run(resolveRequest{database: database, query: query}, runOptions{})
	if !res.ok || strings.TrimSpace(res.stdout) == "" {
		ctx.jr.failure(fmt.Sprintf("getent %s %s returned nothing", database, query))
		return false
	}
	for _, line := range splitLines(res.stdout) {
		fields := resolutionFields(line)
		if len(fields) == 0 {
			continue
		}
		switch policy {
		case matchFirstField:
			if fields[0] == expected {
				ctx.jr.success(fmt.Sprintf("%q resolved with %q in leading field", query, expected))
				return true
			}
		case matchRemainingFields:
			for _, f := range fields[1:] {
				if f == expected {
					ctx.jr.success(fmt.Sprintf("%q resolved with %q among trailing fields", query, expected))
					return true
				}
			}
		}
	}
	ctx.jr.failure(fmt.Sprintf("no line of getent %s %s carries %q", database, query, expected))
	return false
}

// resolutionFields tokenizes one getent output line: colon-delimited for
// passwd/group style entries, whitespace for hosts style.
func resolutionFields(line string) []string {
	if strings.ContainsRune(line, ':') {
		return strings.Split(line, ":")
	}
	return strings.Fields(line)
}
