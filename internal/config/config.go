package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/sepsislab/asewatch/internal/ase"
)

// Config holds all runtime configuration for an asewatch run.
type Config struct {
	DSN        string
	InputDir   string
	OutputPath string
	LogFormat  string // "text" or "json"
	Force      bool
	Workers    int

	OrganWindowDays  int
	QADLookbackDays  int
	QADLookaheadDays int
	RITDays          int

	IncludeLactate       bool
	ApplyRIT             bool
	RITOnlyHospitalOnset bool
}

// yamlConfig is the on-disk YAML structure. Pointer fields distinguish
// an absent key from an explicit zero or false, so a config file only
// overrides what it names.
type yamlConfig struct {
	OrganWindowDays      *int  `yaml:"organ_window_days"`
	QADLookbackDays      *int  `yaml:"qad_lookback_days"`
	QADLookaheadDays     *int  `yaml:"qad_lookahead_days"`
	RITDays              *int  `yaml:"rit_days"`
	IncludeLactate       *bool `yaml:"include_lactate"`
	ApplyRIT             *bool `yaml:"apply_rit"`
	RITOnlyHospitalOnset *bool `yaml:"rit_only_hospital_onset"`
	Workers              *int  `yaml:"workers"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if yc.OrganWindowDays != nil {
		c.OrganWindowDays = *yc.OrganWindowDays
	}
	if yc.QADLookbackDays != nil {
		c.QADLookbackDays = *yc.QADLookbackDays
	}
	if yc.QADLookaheadDays != nil {
		c.QADLookaheadDays = *yc.QADLookaheadDays
	}
	if yc.RITDays != nil {
		c.RITDays = *yc.RITDays
	}
	if yc.IncludeLactate != nil {
		c.IncludeLactate = *yc.IncludeLactate
	}
	if yc.ApplyRIT != nil {
		c.ApplyRIT = *yc.ApplyRIT
	}
	if yc.RITOnlyHospitalOnset != nil {
		c.RITOnlyHospitalOnset = *yc.RITOnlyHospitalOnset
	}
	if yc.Workers != nil {
		c.Workers = *yc.Workers
	}
	return nil
}

// Validate checks required fields, fills window defaults, and returns an
// error if the config is invalid. Zero-valued windows take the standard
// surveillance values; negative ones are rejected.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("--input is required")
	}
	info, err := os.Stat(c.InputDir)
	if err != nil {
		return fmt.Errorf("input dir not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input path %s is not a directory", c.InputDir)
	}

	def := ase.DefaultParams()
	if c.OrganWindowDays == 0 {
		c.OrganWindowDays = def.OrganWindowDays
	}
	if c.QADLookbackDays == 0 {
		c.QADLookbackDays = def.QADLookbackDays
	}
	if c.QADLookaheadDays == 0 {
		c.QADLookaheadDays = def.QADLookaheadDays
	}
	if c.RITDays == 0 {
		c.RITDays = def.RITDays
	}
	if c.OrganWindowDays < 0 || c.QADLookbackDays < 0 || c.QADLookaheadDays < 0 || c.RITDays < 0 {
		return fmt.Errorf("detection windows must not be negative")
	}

	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.OutputPath == "" {
		c.OutputPath = filepath.Join(c.InputDir, "ase_episodes.parquet")
	}
	return nil
}

// Params assembles the detection parameters after Validate has filled
// defaults.
func (c *Config) Params() ase.Params {
	return ase.Params{
		OrganWindowDays:      c.OrganWindowDays,
		QADLookbackDays:      c.QADLookbackDays,
		QADLookaheadDays:     c.QADLookaheadDays,
		RITDays:              c.RITDays,
		IncludeLactate:       c.IncludeLactate,
		ApplyRIT:             c.ApplyRIT,
		RITOnlyHospitalOnset: c.RITOnlyHospitalOnset,
	}
}
