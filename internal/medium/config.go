package medium

//
// Startup configuration
//

import (
	"bytes"
	"encoding/json"
	"net"
	"os"

	"github.com/ooni/medium/internal/impair"
	"github.com/pkg/errors"
	"github.com/tailscale/hujson"
)

// ErrInvalidConfig indicates an invalid startup configuration.
var ErrInvalidConfig = errors.New("medium: invalid config")

// Config is the startup configuration of the medium. Configuration
// files use the same JSON field names and may contain comments and
// trailing commas (HuJSON). Construct using [DefaultConfig].
type Config struct {
	// SenderSideAddress is where we receive packets from the sender.
	SenderSideAddress string `json:"sender_side_address"`

	// ReceiverAddress is where we forward the sender's packets.
	ReceiverAddress string `json:"receiver_address"`

	// ReceiverSideAddress is where we receive packets from the receiver.
	ReceiverSideAddress string `json:"receiver_side_address"`

	// SenderAddress is where we forward the receiver's packets.
	SenderAddress string `json:"sender_address"`

	// Mode is either "drop" or "ecn".
	Mode string `json:"mode"`

	// Limit is the number of packets per second after which we impair.
	Limit int64 `json:"limit"`

	// Seed seeds the random source used in drop mode. Zero means
	// seeding from the system entropy.
	Seed uint64 `json:"seed"`

	// Verbose logs the decoded header of each packet.
	Verbose bool `json:"verbose"`

	// Debug logs the raw bytes of each packet.
	Debug bool `json:"debug"`

	// ReportSeconds logs the number of packets received each second.
	ReportSeconds bool `json:"report_seconds"`

	// RecvBufferSize is the OPTIONAL socket receive buffer size.
	RecvBufferSize int `json:"recv_buffer_size"`

	// PCAPFile is the OPTIONAL file where to capture relayed packets.
	PCAPFile string `json:"pcap_file"`

	// PrometheusAddress is the OPTIONAL address where to serve metrics.
	PrometheusAddress string `json:"prometheus_address"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SenderSideAddress:   "127.0.0.1:4444",
		ReceiverAddress:     "127.0.0.1:6666",
		ReceiverSideAddress: "127.0.0.1:5555",
		SenderAddress:       "127.0.0.1:3333",
		Mode:                impair.ModeDrop.String(),
		Limit:               impair.DefaultLimit,
	}
}

// LoadConfig reads the configuration file at path. Fields missing
// from the file keep their default value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	return ParseConfig(data)
}

// ParseConfig parses a HuJSON configuration.
func ParseConfig(data []byte) (*Config, error) {
	data, err := hujson.Standardize(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing hujson")
	}
	config := DefaultConfig()
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(config); err != nil {
		return nil, errors.Wrap(err, "parsing json")
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating")
	}
	return config, nil
}

// Validate returns an error wrapping [ErrInvalidConfig] when the
// configuration cannot be used to start the medium.
func (c *Config) Validate() error {
	if _, err := c.ImpairConfig(); err != nil {
		return err
	}
	addrs := []struct {
		name  string
		value string
	}{
		{"sender_side_address", c.SenderSideAddress},
		{"receiver_address", c.ReceiverAddress},
		{"receiver_side_address", c.ReceiverSideAddress},
		{"sender_address", c.SenderAddress},
	}
	for _, addr := range addrs {
		if _, err := net.ResolveUDPAddr("udp", addr.value); err != nil {
			return errors.Wrapf(ErrInvalidConfig, "%s: %s", addr.name, err.Error())
		}
	}
	if c.RecvBufferSize < 0 {
		return errors.Wrapf(ErrInvalidConfig, "negative recv_buffer_size: %d", c.RecvBufferSize)
	}
	return nil
}

// ImpairConfig returns the corresponding [impair.Config].
func (c *Config) ImpairConfig() (impair.Config, error) {
	mode, err := impair.ParseMode(c.Mode)
	if err != nil {
		return impair.Config{}, errors.Wrap(ErrInvalidConfig, err.Error())
	}
	config := impair.NewConfig(mode, c.Limit)
	if err := config.Validate(); err != nil {
		return impair.Config{}, errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return config, nil
}
