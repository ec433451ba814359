package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Report transports.
const (
	TransportSerial = "serial"
	TransportUDP    = "udp"
	TransportNone   = "none"
)

type Config struct {
	ConfThreshold float32
	IoUThreshold  float32
	ReportEnabled bool

	ModelPath   string
	LabelsPath  string // empty = built-in COCO names
	InputWidth  int
	InputHeight int

	CameraDevice int

	ReportTransport  string
	SerialPort       string
	SerialBaudRate   int
	UDPAddress       string
	ReportBufferSize int // max protocol frame size in bytes

	DisplayWindow bool
	ViewerPort    int // 0 disables the viewer server

	JournalPath   string
	SnapshotDir   string
	SnapshotLimit int
	LogDirectory  string
}

// Load reads the configuration from the environment. Values from a .env file
// in the working directory (or ENV_FILE) are applied first without overriding
// variables that are already set.
func Load() *Config {
	envFile := getEnv("ENV_FILE", ".env")
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	return &Config{
		ConfThreshold:    getEnvAsFloat32("CONF_THRESHOLD", 0.5),
		IoUThreshold:     getEnvAsFloat32("IOU_THRESHOLD", 0.45),
		ReportEnabled:    getEnvAsBool("REPORT_ENABLED", true),
		ModelPath:        getEnv("MODEL_PATH", filepath.Join(".", "models", "yolov5s.onnx")),
		LabelsPath:       getEnv("LABELS_PATH", ""),
		InputWidth:       getEnvAsInt("MODEL_INPUT_WIDTH", 320),
		InputHeight:      getEnvAsInt("MODEL_INPUT_HEIGHT", 224),
		CameraDevice:     getEnvAsInt("CAMERA_DEVICE", 0),
		ReportTransport:  getEnv("REPORT_TRANSPORT", TransportSerial),
		SerialPort:       getEnv("SERIAL_PORT", "/dev/ttyS0"),
		SerialBaudRate:   getEnvAsInt("SERIAL_BAUD", 115200),
		UDPAddress:       getEnv("UDP_ADDR", "127.0.0.1:5005"),
		ReportBufferSize: getEnvAsInt("REPORT_BUFFER_SIZE", 1024),
		DisplayWindow:    getEnvAsBool("DISPLAY_WINDOW", true),
		ViewerPort:       getEnvAsInt("VIEWER_PORT", 0),
		JournalPath:      getEnv("JOURNAL_PATH", ""),
		SnapshotDir:      getEnv("SNAPSHOT_DIR", ""),
		SnapshotLimit:    getEnvAsInt("SNAPSHOT_LIMIT", 7),
		LogDirectory:     getEnv("LOG_DIR", filepath.Join(".", "logs")),
	}
}

// Validate checks value ranges that would otherwise surface mid-loop.
func (c *Config) Validate() error {
	var errs []error

	if c.ConfThreshold < 0 || c.ConfThreshold > 1 {
		errs = append(errs, fmt.Errorf("confidence threshold %v out of range [0,1]", c.ConfThreshold))
	}
	if c.IoUThreshold < 0 || c.IoUThreshold > 1 {
		errs = append(errs, fmt.Errorf("iou threshold %v out of range [0,1]", c.IoUThreshold))
	}
	if c.InputWidth <= 0 || c.InputHeight <= 0 {
		errs = append(errs, fmt.Errorf("model input size %dx%d must be positive", c.InputWidth, c.InputHeight))
	}
	if c.ModelPath == "" {
		errs = append(errs, errors.New("model path is required"))
	}

	switch c.ReportTransport {
	case TransportSerial:
		if c.SerialPort == "" || c.SerialBaudRate <= 0 {
			errs = append(errs, errors.New("serial transport needs a port and a positive baud rate"))
		}
	case TransportUDP:
		if c.UDPAddress == "" {
			errs = append(errs, errors.New("udp transport needs an address"))
		}
	case TransportNone:
	default:
		errs = append(errs, fmt.Errorf("unknown report transport %q", c.ReportTransport))
	}

	if c.SnapshotDir != "" && c.SnapshotLimit <= 0 {
		errs = append(errs, fmt.Errorf("snapshot limit %d must be positive", c.SnapshotLimit))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatValue)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
