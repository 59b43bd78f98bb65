package automation

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/dossier/pkg/browser"
)

//go:embed profile.yaml
var defaultProfileYAML []byte

// Selectors names every element the workflows interact with.
type Selectors struct {
	LoginMarker       string   `yaml:"login_marker"`
	LoginButton       string   `yaml:"login_button"`
	EntryLink         string   `yaml:"entry_link"`
	SearchTab         string   `yaml:"search_tab"`
	SearchMode        string   `yaml:"search_mode"`
	SearchInputs      []string `yaml:"search_inputs"`
	SearchButtons     []string `yaml:"search_buttons"`
	ResultsTable      string   `yaml:"results_table"`
	ResultLinks       string   `yaml:"result_links"`
	ActionsTab        string   `yaml:"actions_tab"`
	RecommendLinks    []string `yaml:"recommend_links"`
	OfferChoice       string   `yaml:"offer_choice"`
	DecisionRadios    string   `yaml:"decision_radios"`
	RejectLabel       string   `yaml:"reject_label"`
	ReasonSelects     string   `yaml:"reason_selects"`
	ReasonSelectIndex int      `yaml:"reason_select_index"`
	ProcessButtons    []string `yaml:"process_buttons"`
	DocumentsTab      string   `yaml:"documents_tab"`
	MergeButtons      []string `yaml:"merge_buttons"`
	ConfirmButtons    []string `yaml:"confirm_buttons"`
	DownloadLinks     string   `yaml:"download_links"`
	ExitButtons       []string `yaml:"exit_buttons"`
}

// ReasonRule matches a reject reason option. All keywords must appear
// (case-insensitive); when Prefixes is non-empty the option must also start
// with one of them.
type ReasonRule struct {
	Prefixes []string `yaml:"prefixes"`
	Keywords []string `yaml:"keywords"`
}

// Matches reports whether option satisfies the rule.
func (r ReasonRule) Matches(option string) bool {
	text := strings.TrimSpace(option)
	if len(r.Prefixes) > 0 {
		ok := false
		for _, p := range r.Prefixes {
			if strings.HasPrefix(text, p) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	lower := strings.ToLower(text)
	for _, k := range r.Keywords {
		if !strings.Contains(lower, strings.ToLower(k)) {
			return false
		}
	}
	return true
}

// SiteProfile is the declarative half of the engine: selectors, the alias
// table and the text heuristics. It is read-only once loaded.
type SiteProfile struct {
	Aliases   map[string]string `yaml:"aliases"`
	Selectors Selectors         `yaml:"selectors"`

	Overview struct {
		Tags     string   `yaml:"tags"`
		Triggers []string `yaml:"triggers"`
	} `yaml:"overview"`

	Confirm struct {
		Tags      string `yaml:"tags"`
		WatchTags string `yaml:"watch_tags"`
		Text      string `yaml:"text"`
	} `yaml:"confirm"`

	ReasonRules []ReasonRule `yaml:"reason_rules"`

	Download struct {
		Suffix       string `yaml:"suffix"`
		FallbackName string `yaml:"fallback_name"`
	} `yaml:"download"`

	aliases map[string]string
}

// DefaultProfile returns the built-in profile.
func DefaultProfile() *SiteProfile {
	p, err := ParseProfile(defaultProfileYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded site profile is invalid: %v", err))
	}
	return p
}

// LoadProfile reads a profile from path. An empty path returns the
// built-in profile.
func LoadProfile(path string) (*SiteProfile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read site profile: %w", err)
	}
	p, err := ParseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("site profile %s: %w", path, err)
	}
	return p, nil
}

// ParseProfile decodes and validates a YAML profile.
func ParseProfile(data []byte) (*SiteProfile, error) {
	var p SiteProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse site profile: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	p.aliases = make(map[string]string, len(p.Aliases))
	for short, long := range p.Aliases {
		p.aliases[strings.ToLower(strings.TrimSpace(short))] = long
	}
	return &p, nil
}

func (p *SiteProfile) validate() error {
	s := p.Selectors
	required := map[string]string{
		"selectors.login_marker":    s.LoginMarker,
		"selectors.entry_link":      s.EntryLink,
		"selectors.search_tab":      s.SearchTab,
		"selectors.results_table":   s.ResultsTable,
		"selectors.result_links":    s.ResultLinks,
		"selectors.actions_tab":     s.ActionsTab,
		"selectors.reason_selects":  s.ReasonSelects,
		"selectors.documents_tab":   s.DocumentsTab,
		"selectors.download_links":  s.DownloadLinks,
		"overview.tags":             p.Overview.Tags,
		"confirm.tags":              p.Confirm.Tags,
		"confirm.text":              p.Confirm.Text,
		"download.suffix":           p.Download.Suffix,
		"download.fallback_name":    p.Download.FallbackName,
		"selectors.decision_radios": s.DecisionRadios,
	}
	for field, v := range required {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", field)
		}
	}

	lists := map[string][]string{
		"selectors.search_inputs":   s.SearchInputs,
		"selectors.search_buttons":  s.SearchButtons,
		"selectors.recommend_links": s.RecommendLinks,
		"selectors.process_buttons": s.ProcessButtons,
		"selectors.merge_buttons":   s.MergeButtons,
		"selectors.confirm_buttons": s.ConfirmButtons,
		"selectors.exit_buttons":    s.ExitButtons,
		"overview.triggers":         p.Overview.Triggers,
	}
	for field, v := range lists {
		if len(v) == 0 {
			return fmt.Errorf("%s must list at least one entry", field)
		}
	}

	if s.ReasonSelectIndex < 0 {
		return fmt.Errorf("selectors.reason_select_index must be non-negative, got %d", s.ReasonSelectIndex)
	}
	if len(p.ReasonRules) == 0 {
		return fmt.Errorf("reason_rules must list at least one rule")
	}
	for i, r := range p.ReasonRules {
		if len(r.Keywords) == 0 && len(r.Prefixes) == 0 {
			return fmt.Errorf("reason_rules[%d] has neither prefixes nor keywords", i)
		}
	}
	return nil
}

// ResolveAlias maps a short programme code to its canonical form. Lookup
// ignores case and surrounding whitespace; unknown codes come back trimmed
// but otherwise unchanged.
func (p *SiteProfile) ResolveAlias(code string) string {
	code = strings.TrimSpace(code)
	if long, ok := p.aliases[strings.ToLower(code)]; ok {
		return long
	}
	return code
}

// DownloadPattern matches the link text of the record's overview document.
func (p *SiteProfile) DownloadPattern(identifier string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(identifier) + ".*" + regexp.QuoteMeta(p.Download.Suffix))
}

// FallbackFilename names a download that arrived without a suggested name.
func (p *SiteProfile) FallbackFilename(identifier string) string {
	return strings.ReplaceAll(p.Download.FallbackName, "{id}", identifier)
}

func (p *SiteProfile) overviewScan() browser.TextScan {
	return browser.TextScan{Tags: p.Overview.Tags, Needles: p.Overview.Triggers}
}

func (p *SiteProfile) confirmClickScan() browser.TextScan {
	return browser.TextScan{Tags: p.Confirm.Tags, Needles: []string{p.Confirm.Text}, Exact: true}
}

func (p *SiteProfile) confirmWatchScan() browser.TextScan {
	tags := p.Confirm.WatchTags
	if tags == "" {
		tags = p.Confirm.Tags
	}
	return browser.TextScan{Tags: tags, Needles: []string{p.Confirm.Text}, Exact: true}
}

// MatchRow returns the index of the first row whose text contains both
// identifier and code, and how many rows matched in total. The index is -1
// when none match.
func MatchRow(rows []string, identifier, code string) (index, matches int) {
	index = -1
	for i, row := range rows {
		if strings.Contains(row, identifier) && strings.Contains(row, code) {
			if index < 0 {
				index = i
			}
			matches++
		}
	}
	return index, matches
}

// MatchReason returns the index of the option chosen by the first rule that
// matches any option, trying rules in order. The result is -1 when no rule
// matches.
func MatchReason(options []string, rules []ReasonRule) int {
	for _, rule := range rules {
		for i, opt := range options {
			if rule.Matches(opt) {
				return i
			}
		}
	}
	return -1
}
