// Package scoring implements the multi-factor lead scoring model: six capped
// sub-scores summed into a total, classified into a hotness tier.
package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable parts of the scoring model. Defaults match the
// standard admissions funnel; deployments can override any of it with a YAML
// file so weights can be tuned without a release.
type Config struct {
	// DegreePoints maps a lowercased degree_level to its academic base score.
	DegreePoints map[string]int `yaml:"degree_points"`

	// Hotness tier thresholds on the total score.
	HotThreshold  int `yaml:"hot_threshold"`
	WarmThreshold int `yaml:"warm_threshold"`

	// Geography tiers. Codes are compared uppercased.
	TargetCountries []string `yaml:"target_countries"`
	NearbyCountries []string `yaml:"nearby_countries"`

	// Experience keyword sets, matched as lowercase substrings.
	RelevanceKeywords  []string `yaml:"relevance_keywords"`
	LeadershipKeywords []string `yaml:"leadership_keywords"`
}

// Default returns the built-in scoring configuration.
func Default() Config {
	return Config{
		DegreePoints: map[string]int{
			"phd":       30,
			"masters":   25,
			"bachelors": 20,
			"diploma":   15,
			"hs":        10,
		},
		HotThreshold:    70,
		WarmThreshold:   40,
		TargetCountries: []string{"US", "CA", "GB", "AU", "NZ"},
		NearbyCountries: []string{"MX", "PR", "VI"},
		RelevanceKeywords: []string{
			"manager", "director", "lead", "senior", "executive", "business", "marketing", "sales",
		},
		LeadershipKeywords: []string{
			"manager", "director", "lead", "head", "chief", "executive", "president", "vp", "vice president",
		},
	}
}

// LoadConfig reads a YAML override file on top of the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read scoring config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse scoring config %s: %w", path, err)
	}

	if cfg.WarmThreshold > cfg.HotThreshold {
		return Config{}, fmt.Errorf("scoring config: warm_threshold %d exceeds hot_threshold %d", cfg.WarmThreshold, cfg.HotThreshold)
	}

	return cfg, nil
}
