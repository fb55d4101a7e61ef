package slurm

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Fields maps internal field names to raw string values. A missing key and
// an empty value both mean "no value".
type Fields map[string]string

// Keys returns the field names in sorted order.
func (f Fields) Keys() []string {
	return slices.Sorted(maps.Keys(f))
}

// Merge returns a new Fields holding f overlaid with other.
func (f Fields) Merge(other Fields) Fields {
	out := make(Fields, len(f)+len(other))
	maps.Copy(out, f)
	maps.Copy(out, other)
	return out
}

func (f Fields) String() string {
	parts := make([]string, 0, len(f))
	for _, k := range f.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%s", k, f[k]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// external renders f as "Key=value" arguments in sorted key order.
func (f Fields) external() []string {
	args := make([]string, 0, len(f))
	for _, k := range f.Keys() {
		args = append(args, ExternalName(k)+"="+f[k])
	}
	return args
}

// The tools print these instead of leaving a column empty. They are read as
// "no value" so that saving an untouched record never writes them back.
var (
	accountingEmpty = []string{"0-00:00:00", "", "0", "00:00:00"}
	controlEmpty    = []string{"(null)", "N/A"}
)

func normalize(values Fields, empty []string) Fields {
	for k, v := range values {
		if slices.Contains(empty, v) {
			values[k] = ""
		}
	}
	return values
}

// ParseParsableRows parses "--parsable2 --noheader" output: one record per
// line, values separated by "|" in the order of fields. Sentinel values are
// normalised to empty.
func ParseParsableRows(output string, fields []string) []Fields {
	var rows []Fields
	for _, line := range splitLines(output) {
		if line == "" {
			continue
		}
		values := strings.Split(line, "|")
		row := make(Fields, len(fields))
		for i, name := range fields {
			if i < len(values) {
				row[name] = values[i]
			}
		}
		rows = append(rows, normalize(row, accountingEmpty))
	}
	return rows
}

// ParseKeyValueLine parses one "--oneline" record of whitespace separated
// Key=Value tokens. Only tokens whose key matches one of fields (ignoring
// case, after converting the field to its external name) are kept. A bare
// "Key=" yields an empty value.
func ParseKeyValueLine(line string, fields []string) Fields {
	wanted := make(map[string]string, len(fields))
	for _, name := range fields {
		wanted[strings.ToLower(ExternalName(name))] = name
	}
	row := Fields{}
	for _, token := range strings.Fields(line) {
		key, value, _ := strings.Cut(token, "=")
		if name, ok := wanted[strings.ToLower(key)]; ok {
			row[name] = value
		}
	}
	return normalize(row, controlEmpty)
}

// splitLines splits s into lines without the line terminators. A trailing
// newline does not produce an empty last line.
func splitLines(s string) []string {
	s = strings.TrimSuffix(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// ParseKeyValueRows applies ParseKeyValueLine to every non-empty line.
func ParseKeyValueRows(output string, fields []string) []Fields {
	var rows []Fields
	for _, line := range splitLines(output) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, ParseKeyValueLine(line, fields))
	}
	return rows
}
