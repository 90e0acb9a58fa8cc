// Package config loads overlay configuration from an optional TOML file
// with LOOTLENS_* environment overrides on top.
package config

import (
	"errors"
	"image"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lootlens/platform/internal/errx"
	"github.com/lootlens/platform/internal/layout"
)

// Config is the fully parsed runtime configuration.
type Config struct {
	HTTP    HTTPConfig
	Capture CaptureConfig
	OCR     OCRConfig
	Market  MarketConfig
	Layouts []layout.Option
}

type HTTPConfig struct {
	Addr string
}

type CaptureConfig struct {
	// RateHz is how often the producer publishes a fresh frame.
	RateHz float64
	// SkipUnchanged drops frames whose perceptual hash matches the
	// previous OCR input.
	SkipUnchanged bool
	// SaveCaptures dumps each OCR crop as a PNG for diagnostics.
	SaveCaptures bool
	SaveDir      string
}

type OCRConfig struct {
	Languages []string
	// GapThreshold is the horizontal pixel gap that splits item columns.
	GapThreshold float32
	// PollInterval paces the orchestrator's tick loop.
	PollInterval time.Duration
}

type MarketConfig struct {
	BaseURL         string
	RequestsPerSec  float64
	RefreshInterval time.Duration
	CachePath       string
	// MaxAge bounds how stale a cached price may be before a refresh.
	MaxAge time.Duration
}

// raw mirrors the file layout before parsing; compound values (colors,
// ratios, probes) are strings there.
type raw struct {
	HTTP struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"http"`
	Capture struct {
		RateHz        float64 `mapstructure:"rate_hz"`
		SkipUnchanged bool    `mapstructure:"skip_unchanged"`
		SaveCaptures  bool    `mapstructure:"save_captures"`
		SaveDir       string  `mapstructure:"save_dir"`
	} `mapstructure:"capture"`
	OCR struct {
		Languages      []string `mapstructure:"languages"`
		GapThreshold   float64  `mapstructure:"gap_threshold"`
		PollIntervalMS int      `mapstructure:"poll_interval_ms"`
	} `mapstructure:"ocr"`
	Market struct {
		BaseURL         string        `mapstructure:"base_url"`
		RequestsPerSec  float64       `mapstructure:"requests_per_sec"`
		RefreshInterval time.Duration `mapstructure:"refresh_interval"`
		CachePath       string        `mapstructure:"cache_path"`
		MaxAge          time.Duration `mapstructure:"max_age"`
	} `mapstructure:"market"`
	Layouts []rawLayout `mapstructure:"layouts"`
}

type rawLayout struct {
	AspectRatio      string   `mapstructure:"aspect_ratio"`
	PixelChecks      []string `mapstructure:"pixel_checks"`
	OffsetX          int      `mapstructure:"offset_x"`
	OffsetY          int      `mapstructure:"offset_y"`
	Width            int      `mapstructure:"width"`
	Height           int      `mapstructure:"height"`
	RefWidth         int      `mapstructure:"ref_width"`
	RefHeight        int      `mapstructure:"ref_height"`
	ThemeTextColor   string   `mapstructure:"theme_text_color"`
	ItemNameDistance int      `mapstructure:"item_name_distance"`
}

// Load reads the config file at path (or ./lootlens.toml when path is
// empty; a missing file is fine), applies environment overrides, and
// parses the result. Errors carry KindConfigInvalid.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("lootlens")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("LOOTLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errx.Wrap(err, errx.KindConfigInvalid, "read config file")
		}
	}

	var r raw
	if err := v.Unmarshal(&r); err != nil {
		return nil, errx.Wrap(err, errx.KindConfigInvalid, "unmarshal config")
	}
	return parse(r)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8000")

	v.SetDefault("capture.rate_hz", 1.0)
	v.SetDefault("capture.skip_unchanged", true)
	v.SetDefault("capture.save_captures", false)
	v.SetDefault("capture.save_dir", "captures")

	v.SetDefault("ocr.languages", []string{"eng"})
	v.SetDefault("ocr.gap_threshold", 15.0)
	v.SetDefault("ocr.poll_interval_ms", 100)

	v.SetDefault("market.base_url", "https://api.warframe.market/v1")
	v.SetDefault("market.requests_per_sec", 3.0)
	v.SetDefault("market.refresh_interval", 8*time.Second)
	v.SetDefault("market.cache_path", "result.json")
	v.SetDefault("market.max_age", 24*time.Hour)
}

func parse(r raw) (*Config, error) {
	cfg := &Config{
		HTTP: HTTPConfig{Addr: r.HTTP.Addr},
		Capture: CaptureConfig{
			RateHz:        r.Capture.RateHz,
			SkipUnchanged: r.Capture.SkipUnchanged,
			SaveCaptures:  r.Capture.SaveCaptures,
			SaveDir:       r.Capture.SaveDir,
		},
		OCR: OCRConfig{
			Languages:    r.OCR.Languages,
			GapThreshold: float32(r.OCR.GapThreshold),
			PollInterval: time.Duration(r.OCR.PollIntervalMS) * time.Millisecond,
		},
		Market: MarketConfig{
			BaseURL:         r.Market.BaseURL,
			RequestsPerSec:  r.Market.RequestsPerSec,
			RefreshInterval: r.Market.RefreshInterval,
			CachePath:       r.Market.CachePath,
			MaxAge:          r.Market.MaxAge,
		},
	}

	if cfg.Capture.RateHz <= 0 {
		return nil, errx.Newf(errx.KindConfigInvalid, "capture.rate_hz %v must be positive", cfg.Capture.RateHz)
	}
	if cfg.OCR.GapThreshold <= 0 {
		return nil, errx.Newf(errx.KindConfigInvalid, "ocr.gap_threshold %v must be positive", cfg.OCR.GapThreshold)
	}
	if cfg.OCR.PollInterval <= 0 {
		return nil, errx.Newf(errx.KindConfigInvalid, "ocr.poll_interval_ms must be positive")
	}
	if cfg.Market.RequestsPerSec <= 0 {
		return nil, errx.Newf(errx.KindConfigInvalid, "market.requests_per_sec %v must be positive", cfg.Market.RequestsPerSec)
	}

	if len(r.Layouts) == 0 {
		cfg.Layouts = []layout.Option{defaultLayout()}
		return cfg, nil
	}
	for i, rl := range r.Layouts {
		opt, err := parseLayout(rl)
		if err != nil {
			return nil, errx.Wrapf(err, errx.KindConfigInvalid, "layouts[%d]", i)
		}
		cfg.Layouts = append(cfg.Layouts, opt)
	}
	return cfg, nil
}

func parseLayout(rl rawLayout) (layout.Option, error) {
	ratio, err := layout.ParseAspectRatio(rl.AspectRatio)
	if err != nil {
		return layout.Option{}, err
	}
	themeColor, err := layout.ParseHexColor(rl.ThemeTextColor)
	if err != nil {
		return layout.Option{}, err
	}
	opt := layout.Option{
		AspectRatio: ratio,
		Layout: layout.Layout{
			Offset:              image.Pt(rl.OffsetX, rl.OffsetY),
			Size:                image.Pt(rl.Width, rl.Height),
			ReferenceResolution: image.Pt(rl.RefWidth, rl.RefHeight),
			ThemeTextColor:      themeColor,
			ItemNameDistance:    rl.ItemNameDistance,
		},
	}
	for _, pc := range rl.PixelChecks {
		check, err := layout.ParsePixelCheck(pc)
		if err != nil {
			return layout.Option{}, err
		}
		opt.PixelChecks = append(opt.PixelChecks, check)
	}
	if opt.Layout.Size.X <= 0 || opt.Layout.Size.Y <= 0 {
		return layout.Option{}, errx.New(errx.KindConfigInvalid, "layout size must be positive")
	}
	if opt.Layout.ReferenceResolution.X <= 0 || opt.Layout.ReferenceResolution.Y <= 0 {
		return layout.Option{}, errx.New(errx.KindConfigInvalid, "layout reference resolution must be positive")
	}
	if opt.Layout.ItemNameDistance <= 0 {
		return layout.Option{}, errx.New(errx.KindConfigInvalid, "item_name_distance must be positive")
	}
	return opt, nil
}

// defaultLayout is the stock 16:9 reward-row template.
func defaultLayout() layout.Option {
	theme, _ := layout.ParseHexColor("#bea966")
	return layout.Option{
		AspectRatio: [2]int{16, 9},
		Layout: layout.Layout{
			Offset:              image.Pt(478, 411),
			Size:                image.Pt(965, 49),
			ReferenceResolution: image.Pt(1920, 1080),
			ThemeTextColor:      theme,
			ItemNameDistance:    90,
		},
	}
}
