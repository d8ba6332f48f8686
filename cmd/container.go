// cmd/container.go
//
// Composition root. Owns the AWS clients and composes the extraction
// pipeline. This is the only place that knows about ALL modules.
package main

import (
	"context"
	"os"
	"strconv"

	"github.com/Abraxas-365/formscan/pkg/analyze"
	"github.com/Abraxas-365/formscan/pkg/blobx"
	"github.com/Abraxas-365/formscan/pkg/convert"
	"github.com/Abraxas-365/formscan/pkg/logx"
	"github.com/Abraxas-365/formscan/pkg/raster"
	"github.com/Abraxas-365/formscan/pkg/textractx"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
)

// Config holds the env-driven service configuration.
type Config struct {
	Port           string
	AWSRegion      string
	Bucket         string
	MaxUploadBytes int
	PageWorkers    int
	RasterDPI      int
}

func LoadConfig() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		AWSRegion: getEnv("AWS_REGION", "us-east-1"),
		Bucket:    getEnv("S3_BUCKET_NAME", "formscan-scratch"),
		// Textract's synchronous API caps documents at 5 MB.
		MaxUploadBytes: getEnvInt("MAX_UPLOAD_BYTES", 5*1024*1024),
		PageWorkers:    getEnvInt("PAGE_WORKERS", 1),
		RasterDPI:      getEnvInt("RASTER_DPI", raster.DefaultDPI),
	}
}

// Container holds shared infrastructure and the composed pipeline.
type Container struct {
	Config *Config

	Blobs     blobx.Store
	OCR       textractx.Client
	Converter convert.Converter
	Analyzer  *analyze.Orchestrator
}

func NewContainer(cfg *Config) *Container {
	logx.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.TODO(), awsConfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logx.Fatalf("Unable to load AWS SDK config: %v", err)
	}

	c.OCR = textractx.New(awsCfg)
	c.Blobs = blobx.NewS3Store(awsCfg, cfg.Bucket)
	c.Converter = &convert.LibreOffice{}
	logx.Infof("  ✅ AWS clients configured (bucket: %s, region: %s)", cfg.Bucket, cfg.AWSRegion)

	c.Analyzer = &analyze.Orchestrator{
		Pages: &analyze.Runner{
			OCR:    c.OCR,
			Blobs:  c.Blobs,
			Raster: &raster.Pdftoppm{},
			DPI:    cfg.RasterDPI,
		},
		Splitter: analyze.PDFSplitter{},
		Workers:  cfg.PageWorkers,
	}

	logx.Info("✅ Application container initialized")
	return c
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logx.Fatalf("Invalid %s: %v", key, err)
	}
	return n
}
