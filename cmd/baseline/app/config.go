package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/radiometer/internal/pipeline"
)

const (
	defaultOutputFile  = "spectrum.png"
	defaultChartWidth  = 1200
	defaultChartHeight = 600

	minChartWidth  = 200
	minChartHeight = 100
)

// Config represents the command configuration. Values come from defaults,
// then the optional YAML file, then explicitly set command line flags.
type Config struct {
	InputFile string          `yaml:"input"`
	Settings  Settings        `yaml:"settings"`
	Pipeline  pipeline.Config `yaml:"pipeline"`
	Chart     ChartConfig     `yaml:"chart"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
	Quiet    bool   `yaml:"quiet"` // Do not print the per-frequency table

	// Optional path of a Prometheus textfile with run metrics
	MetricsFile string `yaml:"metrics"`
}

// ChartConfig represents chart rendering settings
type ChartConfig struct {
	OutputFile string `yaml:"output"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	ShowNoise  bool   `yaml:"showNoise"`
}

func NewConfig() *Config {
	return &Config{
		Settings: Settings{LogLevel: slog.LevelInfo.String()},
		Pipeline: pipeline.DefaultConfig(),
		Chart: ChartConfig{
			OutputFile: defaultOutputFile,
			Width:      defaultChartWidth,
			Height:     defaultChartHeight,
			ShowNoise:  true,
		},
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	c := NewConfig()
	if err := c.load(path); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Settings.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level: %s", c.Settings.LogLevel)
	}
	return level, nil
}

func (c *Config) Validate() error {
	if c.InputFile == "" {
		return errors.New("input file is required")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}
	if c.Chart.OutputFile == "" {
		return errors.New("output file is required")
	}
	if !strings.EqualFold(filepath.Ext(c.Chart.OutputFile), ".png") {
		return fmt.Errorf("invalid output file: %s, only PNG is supported", c.Chart.OutputFile)
	}
	if c.Chart.Width < minChartWidth || c.Chart.Height < minChartHeight {
		return fmt.Errorf("chart size must be at least %dx%d: %dx%d given",
			minChartWidth, minChartHeight, c.Chart.Width, c.Chart.Height)
	}
	return nil
}

// NewConfigFromCLI parses command line arguments. It returns flag.ErrHelp when
// help was requested; usage has been written to output in that case.
func NewConfigFromCLI(args []string, output io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("baseline", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: baseline -i <input file> [options]\n\n")
		fs.PrintDefaults()
	}

	var (
		configPath string
		inputFile  string
		cli        = NewConfig()
		verbose    bool
		noNoise    bool
	)
	fs.StringVar(&configPath, "c", "", "Path to the YAML configuration file")
	fs.StringVar(&inputFile, "i", "", "Path to the radiometer log file")
	fs.StringVar(&inputFile, "input", "", "Path to the radiometer log file")
	fs.IntVar(&cli.Pipeline.Cutoffs.Low, "low", 0, "Number of leading samples used as noise reference")
	fs.IntVar(&cli.Pipeline.Cutoffs.High, "high", 0, "Number of trailing samples used as noise reference")
	fs.IntVar(&cli.Pipeline.Degree, "degree", cli.Pipeline.Degree, "Noise model polynomial degree")
	fs.IntVar(&cli.Pipeline.Channels, "channels", cli.Pipeline.Channels, "Number of temperature readings per line")
	fs.IntVar(&cli.Pipeline.TempOffset, "offset", cli.Pipeline.TempOffset, "Field index of the first temperature reading")
	fs.StringVar(&cli.Chart.OutputFile, "o", cli.Chart.OutputFile, "Path to the output PNG chart")
	fs.IntVar(&cli.Chart.Width, "width", cli.Chart.Width, "Chart plot area width in pixels")
	fs.IntVar(&cli.Chart.Height, "height", cli.Chart.Height, "Chart plot area height in pixels")
	fs.BoolVar(&noNoise, "no-noise", false, "Do not draw the fitted noise curve")
	fs.BoolVar(&cli.Settings.Quiet, "q", false, "Do not print the per-frequency mean table")
	fs.StringVar(&cli.Settings.MetricsFile, "metrics", "", "Path to the Prometheus textfile with run metrics")
	fs.BoolVar(&verbose, "verbose", false, "Enable more verbose output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	c := NewConfig()
	if configPath != "" {
		if err := c.load(configPath); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i", "input":
			c.InputFile = inputFile
		case "low":
			c.Pipeline.Cutoffs.Low = cli.Pipeline.Cutoffs.Low
		case "high":
			c.Pipeline.Cutoffs.High = cli.Pipeline.Cutoffs.High
		case "degree":
			c.Pipeline.Degree = cli.Pipeline.Degree
		case "channels":
			c.Pipeline.Channels = cli.Pipeline.Channels
		case "offset":
			c.Pipeline.TempOffset = cli.Pipeline.TempOffset
		case "o":
			c.Chart.OutputFile = cli.Chart.OutputFile
		case "width":
			c.Chart.Width = cli.Chart.Width
		case "height":
			c.Chart.Height = cli.Chart.Height
		case "no-noise":
			c.Chart.ShowNoise = !noNoise
		case "q":
			c.Settings.Quiet = cli.Settings.Quiet
		case "metrics":
			c.Settings.MetricsFile = cli.Settings.MetricsFile
		case "verbose":
			if verbose {
				c.Settings.LogLevel = slog.LevelDebug.String()
			}
		}
	})

	if err := c.Validate(); err != nil {
		fs.Usage()
		return nil, err
	}

	return c, nil
}
