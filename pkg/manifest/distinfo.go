package manifest

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pyflow-dev/pyflow/pkg/errors"
)

// distInfoRegex matches installed-wheel metadata directories,
// e.g. "requests-2.31.0.dist-info".
var distInfoRegex = regexp.MustCompile(`^(.*?)-(.*?)\.dist-info$`)

// WheelMetadata is the requirement-bearing subset of an installed wheel's
// METADATA file.
type WheelMetadata struct {
	Name         string
	Version      string
	RequiresDist []Req
}

// ScanDistInfo inspects dir's immediate children for dist-info folders and
// parses the METADATA file bundled in each. Children whose names do not
// match the dist-info pattern are skipped silently, as are matching
// folders without a METADATA file.
func ScanDistInfo(dir string) ([]WheelMetadata, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scanning %s", dir)
	}

	var result []WheelMetadata
	for _, entry := range entries {
		if !entry.IsDir() || !distInfoRegex.MatchString(entry.Name()) {
			continue
		}
		metadataPath := filepath.Join(dir, entry.Name(), "METADATA")
		if _, err := os.Stat(metadataPath); err != nil {
			continue
		}
		meta, err := ParseMetadataFile(metadataPath)
		if err != nil {
			return nil, err
		}
		result = append(result, *meta)
	}
	return result, nil
}

// ParseMetadataFile parses a METADATA-style file (RFC 822 headers) into a
// WheelMetadata. Only the header block is read; the description body that
// follows the first blank line is ignored.
func ParseMetadataFile(path string) (*WheelMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "reading %s", path)
	}
	defer f.Close()

	meta := &WheelMetadata{}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			break // end of headers
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "Name":
			meta.Name = value
		case "Version":
			meta.Version = value
		case "Requires-Dist":
			req, err := ParseReq(value)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "in %s", path)
			}
			meta.RequiresDist = append(meta.RequiresDist, req)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "reading %s", path)
	}

	return meta, nil
}
