package automation_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/dossier/pkg/automation"
)

func TestDefaultProfile(t *testing.T) {
	p := automation.DefaultProfile()
	assert.Len(t, p.Aliases, 17)
	assert.Equal(t, "text=My Portico", p.Selectors.LoginMarker)
	assert.Equal(t, 1, p.Selectors.ReasonSelectIndex)
	assert.Len(t, p.ReasonRules, 2)
}

func TestResolveAlias(t *testing.T) {
	p := automation.DefaultProfile()

	tests := []struct {
		input    string
		expected string
	}{
		{"ML", "TMSCOMSMCL01"},
		{"ml", "TMSCOMSMCL01"},
		{" SEIOT ", "TMSCOMSEIT01"},
		{"UNKNOWN123", "UNKNOWN123"},
		{"TMSCOMSMCL01", "TMSCOMSMCL01"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.ResolveAlias(tt.input))
		})
	}
}

func TestMatchRow(t *testing.T) {
	rows := []string{
		"12345\tDoe, Jane\tTMSCOMSING01",
		"12345\tDoe, Jane\tTMSCOMSMCL01",
		"99999\tRoe, Rich\tTMSCOMSMCL01",
		"12345\tDoe, Jane\tTMSCOMSMCL01\tsecond application",
	}

	t.Run("first of several matches wins", func(t *testing.T) {
		idx, n := automation.MatchRow(rows, "12345", "TMSCOMSMCL01")
		assert.Equal(t, 1, idx)
		assert.Equal(t, 2, n)
	})

	t.Run("both attributes required", func(t *testing.T) {
		idx, n := automation.MatchRow(rows, "99999", "TMSCOMSING01")
		assert.Equal(t, -1, idx)
		assert.Zero(t, n)
	})

	t.Run("no rows", func(t *testing.T) {
		idx, _ := automation.MatchRow(nil, "12345", "ML")
		assert.Equal(t, -1, idx)
	})
}

func TestMatchReason(t *testing.T) {
	rules := automation.DefaultProfile().ReasonRules

	tests := []struct {
		name     string
		options  []string
		expected int
	}{
		{
			name:     "prefixed option at the end",
			options:  []string{"", "1. Incomplete", "2. Late", "8. Not Competitive"},
			expected: 3,
		},
		{
			name:     "prefixed option first",
			options:  []string{"8. Not Competitive", "1. Incomplete"},
			expected: 0,
		},
		{
			name:     "prefix with space",
			options:  []string{"1. Incomplete", "8 not competitive (high demand)"},
			expected: 1,
		},
		{
			name:     "prefixed option beats an earlier fallback",
			options:  []string{"Not competitive - oversubscribed", "8. Not competitive"},
			expected: 1,
		},
		{
			name:     "fallback needs both keywords",
			options:  []string{"Not competitive", "Programme oversubscribed", "Not competitive; programme oversubscribed"},
			expected: 2,
		},
		{
			name:     "other number with keyword does not count",
			options:  []string{"18. Not competitive", "3. Not competitive"},
			expected: -1,
		},
		{
			name:     "nothing matches",
			options:  []string{"1. Incomplete", "9. Other"},
			expected: -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, automation.MatchReason(tt.options, rules))
		})
	}
}

func TestDownloadPattern(t *testing.T) {
	p := automation.DefaultProfile()

	re := p.DownloadPattern("12345")
	assert.True(t, re.MatchString("12345-01-01-OVERVIEW.PDF"))
	assert.True(t, re.MatchString("12345 overview.pdf"))
	assert.False(t, re.MatchString("54321-01-01-OVERVIEW.PDF"))
	assert.False(t, re.MatchString("OVERVIEW 12345"))

	// Identifiers are matched literally.
	assert.False(t, p.DownloadPattern("1.5").MatchString("105-OVERVIEW"))

	assert.Equal(t, "12345-01-01-OVERVIEW.PDF", p.FallbackFilename("12345"))
}

func TestLoadProfile(t *testing.T) {
	t.Run("empty path is the built-in profile", func(t *testing.T) {
		p, err := automation.LoadProfile("")
		require.NoError(t, err)
		assert.Equal(t, "TMSCOMSMCL01", p.ResolveAlias("ML"))
	})

	t.Run("override file", func(t *testing.T) {
		data, err := os.ReadFile("profile.yaml")
		require.NoError(t, err)
		custom := strings.Replace(string(data), "ML: TMSCOMSMCL01", "ML: TMSCOMSMCL99", 1)

		path := filepath.Join(t.TempDir(), "site.yaml")
		require.NoError(t, os.WriteFile(path, []byte(custom), 0o644))

		p, err := automation.LoadProfile(path)
		require.NoError(t, err)
		assert.Equal(t, "TMSCOMSMCL99", p.ResolveAlias("ml"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := automation.LoadProfile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestParseProfile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"not yaml", "aliases: [", "failed to parse"},
		{"empty", "{}", "is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := automation.ParseProfile([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReasonRule_Matches(t *testing.T) {
	rule := automation.ReasonRule{Prefixes: []string{"8."}, Keywords: []string{"not competitive"}}
	assert.True(t, rule.Matches("  8. NOT COMPETITIVE"))
	assert.False(t, rule.Matches("8. Late"))
	assert.False(t, rule.Matches("Not competitive"))
}
