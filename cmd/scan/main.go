package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"buyfly/internal/capture"
	"buyfly/internal/config"
	"buyfly/internal/gateway"
	"buyfly/internal/logger"
	"buyfly/internal/mode"
	"buyfly/internal/normalize"
	"buyfly/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// scan captures frames from the configured frame directory, normalizes
// them, and submits the batch for scoring. The result lands in the
// local snap stack (buy) or dewey catalog (fly).
func main() {
	_ = godotenv.Load()

	barcode := flag.String("barcode", "", "scanned barcode, if any")
	price := flag.Float64("price", 0, "purchase price per unit")
	quantity := flag.Int("qty", 1, "unit count")
	color := flag.String("color", "", "item color")
	size := flag.String("size", "", "item size")
	sku := flag.String("sku", "", "custom sku")
	flag.Parse()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log, *barcode, *price, *quantity, *color, *size, *sku); err != nil {
		log.Fatal("Scan failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger, barcode string, price float64, quantity int, color, size, sku string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(filepath.Join(cfg.Client.DataDir, "buyfly.db"), log)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer st.Close()

	gw := gateway.New(cfg.Client.APIBaseURL, cfg.Client.APIKey, st, log)
	camera := capture.NewDirCamera(cfg.Client.FramesDir, log)

	ctrl := mode.NewController(camera, st, log)
	defer ctrl.Shutdown()

	if err := ctrl.Enter(ctx, mode.ModeSource); err != nil {
		if errors.Is(err, capture.ErrCameraUnavailable) {
			return fmt.Errorf("no frames available in %q", cfg.Client.FramesDir)
		}
		return err
	}

	// A barcode identifies the item on its own, so fewer angles are
	// needed before submitting.
	threshold := cfg.Capture.PhotoThreshold
	if barcode != "" {
		threshold = cfg.Capture.BarcodeThreshold
	}
	if threshold > cfg.Capture.BatchLimit {
		threshold = cfg.Capture.BatchLimit
	}

	images, err := captureBatch(ctrl.Stream(), threshold, log)
	if err != nil {
		return err
	}

	log.Info("Submitting for analysis",
		zap.Int("images", len(images)),
		zap.Bool("barcode", barcode != ""),
	)

	analysis, err := gw.SubmitForAnalysis(ctx, gateway.SubmitRequest{
		Images:  images,
		Barcode: barcode,
		Meta: gateway.Metadata{
			PurchasePrice: price,
			Quantity:      quantity,
			Color:         color,
			Size:          size,
			SKU:           sku,
		},
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", analysis.IdentifiedProduct)
	fmt.Printf("  recommendation: %s (%s)\n", analysis.Recommendation, analysis.Classification)
	fmt.Printf("  estimated profit: $%.2f  margin: %.0f%%  confidence: %.2f\n",
		analysis.EstimatedProfit, analysis.ProfitMargin*100, analysis.Confidence)
	return nil
}

// captureBatch takes n snapshots and normalizes each. Frames that fail
// to decode are skipped; the batch fails only if nothing usable came
// through.
func captureBatch(stream capture.Stream, n int, log *zap.Logger) ([][]byte, error) {
	if stream == nil {
		return nil, capture.ErrCameraUnavailable
	}

	images := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		raw, err := stream.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("snapshot %d: %w", i, err)
		}

		normalized, err := normalize.Normalize(raw)
		if errors.Is(err, normalize.ErrDecode) {
			log.Warn("Skipping undecodable frame", zap.Int("frame", i))
			continue
		}
		if err != nil {
			return nil, err
		}
		images = append(images, normalized)
	}

	if len(images) == 0 {
		return nil, fmt.Errorf("no usable frames captured")
	}
	return images, nil
}
