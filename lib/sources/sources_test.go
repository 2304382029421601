package sources

import (
	"testing"
	"time"

	"counciltax/lib/counciltax"
	"counciltax/lib/scrapers/calculator"
	"counciltax/lib/scrapers/core"
	"counciltax/lib/scrapers/directory"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestLookup(t *testing.T) {
	preset, ok := Lookup(" Cherwell ")
	require.True(t, ok)
	require.Equal(t, KindDirectory, preset.Kind)
	require.Equal(t, counciltax.CouncilLast(), preset.Schema())

	_, ok = Lookup("oxford")
	require.False(t, ok)

	for _, p := range Presets {
		require.NoError(t, p.Validate(), p.Name)
	}
}

func TestResolve(t *testing.T) {
	testCases := []struct {
		name     string
		config   Config
		expected Preset
		err      string
	}{
		{
			name:   "preset only",
			config: Config{Preset: "vale-of-white-horse"},
			expected: Preset{
				Name:           "vale-of-white-horse",
				Kind:           KindCalculator,
				SourceUrl:      "https://data.whitehorsedc.gov.uk/java/support/Main.jsp?MODULE=Calculator",
				CalculationUrl: "https://data.whitehorsedc.gov.uk/java/support/Main.jsp?MODULE=Calculation",
				YearCode:       "23",
				OutputPath:     "whitehorsedc_council_tax.csv",
				Authority:      "Vale of White Horse District Council",
				Delay:          100 * time.Millisecond,
			},
		},
		{
			name: "overrides preset",
			config: Config{
				Preset:         "south-oxfordshire",
				YearCode:       "24",
				OutputPath:     "out.csv",
				DelaySeconds:   ptr(0.0),
				TimeoutSeconds: 5,
			},
			expected: Preset{
				Name:           "south-oxfordshire",
				Kind:           KindCalculator,
				SourceUrl:      "https://data.southoxon.gov.uk/ccm/support/Main.jsp?MODULE=Calculator",
				CalculationUrl: "https://data.southoxon.gov.uk/ccm/support/Main.jsp?MODULE=Calculation",
				YearCode:       "24",
				OutputPath:     "out.csv",
				Authority:      "South Oxfordshire District Council",
				Timeout:        5 * time.Second,
			},
		},
		{
			name: "no preset",
			config: Config{
				Kind:          KindDirectory,
				SourceUrl:     "https://example.com/directory/1",
				AuthorityName: "Example Council",
				DelaySeconds:  ptr(1.5),
			},
			expected: Preset{
				Name:       "directory",
				Kind:       KindDirectory,
				SourceUrl:  "https://example.com/directory/1",
				OutputPath: "directory.csv",
				Authority:  "Example Council",
				Delay:      1500 * time.Millisecond,
			},
		},
		{
			name:   "unknown preset",
			config: Config{Preset: "oxford"},
			err:    `unknown preset "oxford"`,
		},
		{
			name:   "calculator without year",
			config: Config{Kind: KindCalculator, SourceUrl: "https://example.com/Main.jsp"},
			err:    "calculator source needs a year code",
		},
		{
			name:   "nothing set",
			config: Config{},
			err:    "source kind is not set, pick a preset or set kind",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			preset, err := test.config.Resolve()
			if test.err != "" {
				require.EqualError(t, err, test.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.expected, preset)
		})
	}
}

func TestCalculationUrl(t *testing.T) {
	link, err := CalculationUrl("https://data.southoxon.gov.uk/ccm/support/Main.jsp?MODULE=Calculator")
	require.NoError(t, err)
	require.Equal(t, "https://data.southoxon.gov.uk/ccm/support/Main.jsp?MODULE=Calculation", link)
}

func TestNewSource(t *testing.T) {
	client, err := core.NewClient(core.ClientOptions{})
	require.NoError(t, err)

	cherwell, _ := Lookup("cherwell")
	source, err := cherwell.NewSource(client)
	require.NoError(t, err)
	require.IsType(t, &directory.Source{}, source)

	custom := Preset{
		Kind:       KindCalculator,
		SourceUrl:  "https://example.com/Main.jsp?MODULE=Calculator",
		YearCode:   "23",
		OutputPath: "out.csv",
	}
	source, err = custom.NewSource(client)
	require.NoError(t, err)
	require.IsType(t, &calculator.Source{}, source)
	require.Equal(t, counciltax.CouncilFirst(), source.Schema())
}
