package manifest

import (
	"fmt"
	"os/exec"
	"strings"
)

// GitIdentity returns the local source-control identity as a single
// "Name <email>" entry, used as the authors-field fallback and when
// scaffolding a new project. Returns nil when no identity is configured
// (or git is unavailable); the caller then leaves the project author-less.
func GitIdentity() []string {
	name := gitConfig("user.name")
	if name == "" {
		return nil
	}
	if email := gitConfig("user.email"); email != "" {
		return []string{fmt.Sprintf("%s <%s>", name, email)}
	}
	return []string{name}
}

func gitConfig(key string) string {
	out, err := exec.Command("git", "config", "--get", key).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
