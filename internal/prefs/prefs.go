// Package prefs persists UI preferences in git local config under stagium.*
// keys. Fold and selection state deliberately stay session-local.
package prefs

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Prefs represents persisted UI preferences.
type Prefs struct {
	Theme      string
	ThemeSet   bool
	Syntax     bool
	SyntaxSet  bool
	Commits    int
	CommitsSet bool
}

const (
	keyTheme   = "stagium.theme"
	keySyntax  = "stagium.syntax"
	keyCommits = "stagium.commits"
)

// Load reads preferences from git local config.
func Load(repoRoot string) Prefs {
	var p Prefs
	if s, ok := get(repoRoot, keyTheme); ok && s != "" {
		p.ThemeSet = true
		p.Theme = s
	}
	if s, ok := get(repoRoot, keySyntax); ok {
		p.SyntaxSet = true
		p.Syntax = parseBool(s)
	}
	if s, ok := get(repoRoot, keyCommits); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n > 0 {
			p.CommitsSet = true
			p.Commits = n
		}
	}
	return p
}

// SaveTheme persists the theme name.
func SaveTheme(repoRoot, name string) error {
	return set(repoRoot, keyTheme, name)
}

// SaveSyntax persists the syntax-highlighting toggle.
func SaveSyntax(repoRoot string, v bool) error {
	return set(repoRoot, keySyntax, boolStr(v))
}

// SaveCommits persists the recent-commits limit.
func SaveCommits(repoRoot string, n int) error {
	if n <= 0 {
		return fmt.Errorf("invalid commit limit: %d", n)
	}
	return set(repoRoot, keyCommits, strconv.Itoa(n))
}

func get(repoRoot, key string) (string, bool) {
	cmd := exec.Command("git", "-C", repoRoot, "config", "--get", key)
	b, err := cmd.Output()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(b)), true
}

func set(repoRoot, key, value string) error {
	cmd := exec.Command("git", "-C", repoRoot, "config", "--local", key, value)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git config %s: %w: %s", key, err, string(out))
	}
	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func boolStr(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
