package sources

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"counciltax/lib/counciltax"
	"counciltax/lib/pipeline"
	"counciltax/lib/scrapers/calculator"
	"counciltax/lib/scrapers/core"
	"counciltax/lib/scrapers/directory"

	"dario.cat/mergo"
)

type Kind string

const (
	KindDirectory  Kind = "directory"
	KindCalculator Kind = "calculator"
)

// Preset is everything needed to scrape one site.
type Preset struct {
	Name           string
	Kind           Kind
	SourceUrl      string
	CalculationUrl string
	YearCode       string
	OutputPath     string
	Authority      string
	Delay          time.Duration

	Timeout          time.Duration
	UserAgent        string
	CloudflareBypass bool
}

var Presets = []Preset{
	{
		Name:       "cherwell",
		Kind:       KindDirectory,
		SourceUrl:  "https://www.cherwell.gov.uk/directory/149/council-tax-charges-202425",
		OutputPath: "CherwellCouncilTax.csv",
		Authority:  "Cherwell District Council",
		Delay:      time.Second,
	},
	{
		Name:           "south-oxfordshire",
		Kind:           KindCalculator,
		SourceUrl:      "https://data.southoxon.gov.uk/ccm/support/Main.jsp?MODULE=Calculator",
		CalculationUrl: "https://data.southoxon.gov.uk/ccm/support/Main.jsp?MODULE=Calculation",
		YearCode:       "23",
		OutputPath:     "southoxon_council_tax_2024_2025.csv",
		Authority:      "South Oxfordshire District Council",
		Delay:          100 * time.Millisecond,
	},
	{
		Name:           "vale-of-white-horse",
		Kind:           KindCalculator,
		SourceUrl:      "https://data.whitehorsedc.gov.uk/java/support/Main.jsp?MODULE=Calculator",
		CalculationUrl: "https://data.whitehorsedc.gov.uk/java/support/Main.jsp?MODULE=Calculation",
		YearCode:       "23",
		OutputPath:     "whitehorsedc_council_tax.csv",
		Authority:      "Vale of White Horse District Council",
		Delay:          100 * time.Millisecond,
	},
}

func Lookup(name string) (Preset, bool) {
	idx := slices.IndexFunc(Presets, func(p Preset) bool {
		return p.Name == strings.ToLower(strings.TrimSpace(name))
	})
	if idx < 0 {
		return Preset{}, false
	}
	return Presets[idx], true
}

func (p Preset) Validate() error {
	switch p.Kind {
	case KindDirectory:
		if p.SourceUrl == "" {
			return fmt.Errorf("directory source needs a listing url")
		}
	case KindCalculator:
		if p.SourceUrl == "" {
			return fmt.Errorf("calculator source needs a form url")
		}
		if p.YearCode == "" {
			return fmt.Errorf("calculator source needs a year code")
		}
	case "":
		return fmt.Errorf("source kind is not set, pick a preset or set kind")
	default:
		return fmt.Errorf("unknown source kind %q", p.Kind)
	}
	if p.OutputPath == "" {
		return fmt.Errorf("output path is not set")
	}
	return nil
}

func (p Preset) Schema() counciltax.Schema {
	if p.Kind == KindDirectory {
		return counciltax.CouncilLast()
	}
	return counciltax.CouncilFirst()
}

func (p Preset) ClientOptions() core.ClientOptions {
	return core.ClientOptions{
		UserAgent:        p.UserAgent,
		Timeout:          p.Timeout,
		Delay:            p.Delay,
		CloudflareBypass: p.CloudflareBypass,
	}
}

func (p Preset) NewSource(client *core.Client) (pipeline.Source, error) {
	err := p.Validate()
	if err != nil {
		return nil, err
	}

	switch p.Kind {
	case KindDirectory:
		source, err := directory.NewSource(client, directory.Options{
			ListingUrl: p.SourceUrl,
			Authority:  p.Authority,
		})
		if err != nil {
			return nil, err
		}
		return source, nil
	case KindCalculator:
		calculationUrl := p.CalculationUrl
		if calculationUrl == "" {
			calculationUrl, err = CalculationUrl(p.SourceUrl)
			if err != nil {
				return nil, err
			}
		}
		source, err := calculator.NewSource(client, calculator.Options{
			FormUrl:        p.SourceUrl,
			CalculationUrl: calculationUrl,
			YearCode:       p.YearCode,
			Authority:      p.Authority,
		})
		if err != nil {
			return nil, err
		}
		return source, nil
	}
	return nil, fmt.Errorf("unknown source kind %q", p.Kind)
}

// CalculationUrl derives the endpoint the band form posts to from the
// calculator form url, they only differ by the MODULE query parameter.
func CalculationUrl(formUrl string) (string, error) {
	u, err := url.Parse(formUrl)
	if err != nil {
		return "", fmt.Errorf("parse form url: %w", err)
	}
	query := u.Query()
	query.Set("MODULE", "Calculation")
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// Config is the on-disk and environment shape of a run, unset fields fall
// back to the named preset.
type Config struct {
	Preset           string   `json:"preset" env:"PRESET"`
	Kind             Kind     `json:"kind" env:"KIND"`
	SourceUrl        string   `json:"source_url" env:"SOURCE_URL"`
	CalculationUrl   string   `json:"calculation_url" env:"CALCULATION_URL"`
	YearCode         string   `json:"year_code" env:"YEAR_CODE"`
	OutputPath       string   `json:"output_path" env:"OUTPUT_PATH"`
	AuthorityName    string   `json:"authority_name" env:"AUTHORITY_NAME"`
	DelaySeconds     *float64 `json:"delay_seconds" env:"DELAY_SECONDS"`
	TimeoutSeconds   float64  `json:"timeout_seconds" env:"TIMEOUT_SECONDS"`
	UserAgent        string   `json:"user_agent" env:"USER_AGENT"`
	CloudflareBypass bool     `json:"cloudflare_bypass" env:"CLOUDFLARE_BYPASS"`
	Archive          string   `json:"archive" env:"ARCHIVE"`
	ArchiveAuthToken string   `json:"archive_auth_token" env:"ARCHIVE_AUTH_TOKEN"`
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Resolve overlays the config onto its preset.
func (c Config) Resolve() (Preset, error) {
	var base Preset
	if c.Preset != "" {
		preset, ok := Lookup(c.Preset)
		if !ok {
			return Preset{}, fmt.Errorf("unknown preset %q", c.Preset)
		}
		base = preset
	}

	override := Preset{
		Kind:             c.Kind,
		SourceUrl:        c.SourceUrl,
		CalculationUrl:   c.CalculationUrl,
		YearCode:         c.YearCode,
		OutputPath:       c.OutputPath,
		Authority:        c.AuthorityName,
		Timeout:          seconds(c.TimeoutSeconds),
		UserAgent:        c.UserAgent,
		CloudflareBypass: c.CloudflareBypass,
	}
	err := mergo.Merge(&base, override, mergo.WithOverride)
	if err != nil {
		return Preset{}, err
	}
	if c.DelaySeconds != nil {
		base.Delay = seconds(*c.DelaySeconds)
	}
	if base.Name == "" {
		base.Name = string(base.Kind)
	}
	if base.OutputPath == "" && base.Name != "" {
		base.OutputPath = fmt.Sprintf("%s.csv", base.Name)
	}

	return base, base.Validate()
}
