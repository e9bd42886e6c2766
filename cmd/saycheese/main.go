// Command saycheese starts a camera, waits for the preview, takes a few snapshots and
// writes them to disk together with the rendered page.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pion/saycheese"
	"github.com/pion/saycheese/internal/config"
	"github.com/pion/saycheese/internal/logging"
	"github.com/pion/saycheese/pkg/canvas"
	"github.com/pion/saycheese/pkg/dom"
	"github.com/pion/saycheese/pkg/driver"
	_ "github.com/pion/saycheese/pkg/driver/camera" // This is required to register camera adapter
	_ "github.com/pion/saycheese/pkg/driver/screen" // This is required to register screen adapter
	"github.com/pion/saycheese/pkg/driver/videotest"
	"github.com/pion/saycheese/pkg/prop"
)

var logger = logging.NewLogger("saycheese/cmd")

const blankPage = `<!DOCTYPE html>
<html>
<head><title>Say cheese</title></head>
<body><div id="camera"></div><div id="snapshots"></div></body>
</html>`

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	source := flag.String("source", "", "camera, screen or fake (overrides camera.source)")
	count := flag.Int("count", 0, "number of snapshots (overrides snapshots.count)")
	out := flag.String("out", "", "snapshot directory (overrides snapshots.output_dir)")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *source, *count, *out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func loadConfig(path, source string, count int, out string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if source != "" {
		cfg.Camera.Source = source
	}
	if count > 0 {
		cfg.Snapshots.Count = count
	}
	if out != "" {
		cfg.Snapshots.OutputDir = out
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg *config.Config) error {
	doc, err := loadPage(cfg.Page.Template)
	if err != nil {
		return err
	}

	s, err := saycheese.New(doc, cfg.Page.Selector, sessionOptions(cfg)...)
	if err != nil {
		return err
	}

	started := make(chan struct{}, 1)
	failed := make(chan error, 1)
	s.On(saycheese.EventStart, func(interface{}) {
		select {
		case started <- struct{}{}:
		default:
		}
	})
	s.On(saycheese.EventError, func(data interface{}) {
		err, ok := data.(error)
		if !ok {
			err = fmt.Errorf("%v", data)
		}
		select {
		case failed <- err:
		default:
			logger.Warnf("camera error: %v", err)
		}
	})
	s.On(saycheese.EventSnapshot, func(data interface{}) {
		logger.Infof("snapshot %d taken", len(s.Snapshots()))
	})
	s.On(saycheese.EventStop, func(interface{}) {
		logger.Info("camera stopped")
	})

	if err := s.Start(ctx); err != nil {
		return err
	}

	select {
	case <-started:
	case err := <-failed:
		return fmt.Errorf("failed to start the camera: %w", err)
	case <-time.After(time.Duration(cfg.StartTimeoutMs) * time.Millisecond):
		return fmt.Errorf("camera did not start within %dms", cfg.StartTimeoutMs)
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() {
		if err := s.Stop(); err != nil {
			logger.Warnf("failed to stop the camera: %v", err)
		}
	}()

	if err := os.MkdirAll(cfg.Snapshots.OutputDir, 0o755); err != nil {
		return err
	}

	interval := time.Duration(cfg.Snapshots.IntervalMs) * time.Millisecond
	for i := 0; i < cfg.Snapshots.Count; i++ {
		if i > 0 {
			select {
			case <-time.After(interval):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		snapshot, err := s.TakeSnapshot()
		if err != nil {
			return err
		}
		name := fmt.Sprintf("snapshot-%03d.%s", i+1, cfg.Snapshots.Format)
		if err := writeSnapshot(filepath.Join(cfg.Snapshots.OutputDir, name), snapshot, cfg.Snapshots); err != nil {
			return err
		}
		addToGallery(doc, name)
	}

	if cfg.Page.Output == "" {
		return nil
	}
	f, err := os.Create(cfg.Page.Output)
	if err != nil {
		return err
	}
	defer f.Close()
	return doc.Render(f)
}

func sessionOptions(cfg *config.Config) []saycheese.Option {
	var constraints prop.MediaConstraints
	if cfg.Camera.DeviceID != "" {
		constraints.DeviceID = prop.StringExact(cfg.Camera.DeviceID)
	}
	if cfg.Camera.Width > 0 {
		constraints.Width = prop.Int(cfg.Camera.Width)
	}
	if cfg.Camera.Height > 0 {
		constraints.Height = prop.Int(cfg.Camera.Height)
	}
	if cfg.Camera.FrameRate > 0 {
		constraints.FrameRate = prop.Float(cfg.Camera.FrameRate)
	}

	opts := []saycheese.Option{
		saycheese.WithPreviewWidth(cfg.Preview.Width),
		saycheese.WithConstraints(constraints),
	}
	switch cfg.Camera.Source {
	case config.SourceFake:
		m := driver.NewManager()
		if err := m.Register(videotest.NewAdapter(), driver.Info{
			Label:      videotest.Label,
			DeviceType: driver.Camera,
			Priority:   driver.PriorityNormal,
		}); err != nil {
			panic(err)
		}
		opts = append(opts, saycheese.WithUserMedia(saycheese.NewMediaDevices(saycheese.WithDriverManager(m))))
	case config.SourceScreen:
		opts = append(opts, saycheese.WithDisplayCapture())
	}
	return opts
}

func loadPage(template string) (*dom.Document, error) {
	if template == "" {
		return dom.ParseString(blankPage)
	}
	f, err := os.Open(template)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dom.Parse(f)
}

func writeSnapshot(path string, c *canvas.Canvas, cfg config.SnapshotConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if cfg.Format == config.FormatJPEG {
		err = c.EncodeJPEG(f, cfg.JPEGQuality)
	} else {
		err = c.EncodePNG(f)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Debugf("wrote %s", path)
	return nil
}

// addToGallery links a snapshot file from the #snapshots element, when the page
// has one.
func addToGallery(doc *dom.Document, name string) {
	gallery, err := doc.QuerySelector("#snapshots")
	if err != nil {
		return
	}
	img := doc.CreateElement("img")
	img.SetAttribute("src", name)
	gallery.AppendChild(img)
}
