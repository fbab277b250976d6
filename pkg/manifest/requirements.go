package manifest

import (
	"bufio"
	"os"
	"strings"

	"github.com/pyflow-dev/pyflow/pkg/errors"
)

// Requirements parses plain requirement-list files (requirements.txt).
// Blank lines, comments, pip options and URL/VCS lines are skipped; every
// remaining line must parse as a requirement or the whole load fails.
type Requirements struct{}

func (r *Requirements) Type() string { return "requirements.txt" }

func (r *Requirements) Supports(name string) bool {
	return name == RequirementsFilename ||
		(strings.HasPrefix(name, "requirements") && strings.HasSuffix(name, ".txt"))
}

// Parse reads a requirement list into a Config carrying only Reqs.
// A missing file yields (nil, nil).
func (r *Requirements) Parse(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "reading %s", path)
	}
	defer f.Close()

	cfg := &Config{}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		if strings.Contains(line, "://") || strings.HasPrefix(line, "git+") {
			continue
		}
		req, err := ParseReq(line)
		if err != nil {
			return nil, err
		}
		cfg.Reqs = append(cfg.Reqs, req)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "reading %s", path)
	}

	return cfg, nil
}
