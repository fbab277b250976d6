package manifest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pyflow-dev/pyflow/pkg/errors"
	"github.com/pyflow-dev/pyflow/pkg/pep440"
)

// reqLineRegex matches a PEP 508-style requirement line:
// name, optional [extras], optional (possibly parenthesized) version spec,
// optional ";"-separated environment markers.
var reqLineRegex = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(?:\[([^\]]*)\])?\s*\(?\s*([^;()]*?)\s*\)?\s*(?:;\s*(.*))?$`)

// markerRegex matches one environment marker, e.g. python_version >= "3.6".
var markerRegex = regexp.MustCompile(`^(\w+)\s*([=!<>~^]+)\s*['"]([^'"]*)['"]$`)

// ParseReq parses a single requirement line as found in requirements.txt
// or a METADATA Requires-Dist header. Markers understood: python_version,
// sys_platform and extra; others are ignored.
func ParseReq(line string) (Req, error) {
	m := reqLineRegex.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Req{}, errors.New(errors.ErrCodeInvalidPackage, "unparseable requirement: %q", line)
	}

	req := Req{Name: m[1]}

	if m[2] != "" {
		for _, ex := range strings.Split(m[2], ",") {
			if ex = strings.TrimSpace(ex); ex != "" {
				req.InstallWithExtras = append(req.InstallWithExtras, ex)
			}
		}
	}

	constraints, err := pep440.ParseConstraints(m[3])
	if err != nil {
		return Req{}, errors.Wrap(errors.ErrCodeInvalidConstraint, err, "in requirement %q", line)
	}
	req.Constraints = constraints

	if m[4] != "" {
		if err := req.applyMarkers(m[4]); err != nil {
			return Req{}, err
		}
	}

	return req, nil
}

// applyMarkers folds "and"-joined environment markers into the Req.
func (r *Req) applyMarkers(markers string) error {
	for _, clause := range strings.Split(markers, " and ") {
		m := markerRegex.FindStringSubmatch(strings.TrimSpace(clause))
		if m == nil {
			continue // unsupported marker, e.g. implementation_name
		}
		key, op, val := m[1], m[2], m[3]
		switch key {
		case "python_version":
			c, err := pep440.ParseConstraint(op + val)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConstraint, err, "python_version marker")
			}
			r.PythonVersion = append(r.PythonVersion, c)
		case "sys_platform":
			r.SysPlatform = val
		case "extra":
			r.Extra = val
		}
	}
	return nil
}

// ConstraintsString renders the constraint list the way it appears in a
// descriptor, e.g. ">=1.0, <2.0". An empty list renders as "*".
func (r Req) ConstraintsString() string {
	if len(r.Constraints) == 0 {
		return "*"
	}
	parts := make([]string, len(r.Constraints))
	for i, c := range r.Constraints {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// CfgString renders the Req in the native dialect: shorthand when only
// version constraints are present, an inline table otherwise.
func (r Req) CfgString() string {
	if r.Path == "" && r.Git == "" && len(r.InstallWithExtras) == 0 {
		return fmt.Sprintf("%s = %q", r.Name, r.ConstraintsString())
	}

	var fields []string
	if len(r.Constraints) > 0 {
		fields = append(fields, fmt.Sprintf("constrs = %q", r.ConstraintsString()))
	}
	if len(r.InstallWithExtras) > 0 {
		quoted := make([]string, len(r.InstallWithExtras))
		for i, ex := range r.InstallWithExtras {
			quoted[i] = fmt.Sprintf("%q", ex)
		}
		fields = append(fields, fmt.Sprintf("extras = [%s]", strings.Join(quoted, ", ")))
	}
	if r.Path != "" {
		fields = append(fields, fmt.Sprintf("path = %q", r.Path))
	}
	if r.Git != "" {
		fields = append(fields, fmt.Sprintf("git = %q", r.Git))
	}
	return fmt.Sprintf("%s = { %s }", r.Name, strings.Join(fields, ", "))
}
