package publisher

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

type PDFConfig struct {
	// ChromeBin is optional. Empty lets the launcher find or download a browser.
	ChromeBin string
	// DebuggerURL connects to an already running browser instead of launching one.
	DebuggerURL string
	Timeout     time.Duration
}

// RodConverter prints HTML reports to PDF through headless Chrome.
type RodConverter struct {
	cfg    PDFConfig
	logger zerolog.Logger
}

func NewRodConverter(cfg PDFConfig, logger zerolog.Logger) *RodConverter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &RodConverter{cfg: cfg, logger: logger}
}

func (c *RodConverter) ConvertHTML(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	controlURL := c.cfg.DebuggerURL
	var launch *launcher.Launcher
	if controlURL == "" {
		launch = launcher.New().Context(ctx).Headless(true)
		if c.cfg.ChromeBin != "" {
			launch = launch.Bin(c.cfg.ChromeBin)
		}
		url, err := launch.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = url
		defer func() {
			launch.Kill()
			launch.Cleanup()
		}()
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	defer func() {
		if launch == nil {
			return
		}
		if err := browser.Close(); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to close browser")
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Failed to close page")
		}
	}()

	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for report: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}

	c.logger.Debug().Int("size", len(data)).Msg("Report printed to PDF")
	return data, nil
}
