package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type Config struct {
	DBName          string `json:"db-name"`
	HTTPServerPort  uint16 `json:"http-server-port"`
	ReadTimeout     int64  `json:"read-timeout"`
	WriteTimeout    int64  `json:"write-timeout"`
	EnableLogging   bool   `json:"enable-logging"`
	AdminAddress    string `json:"admin-address"`
	BankCap         int64  `json:"bank-cap"`
	WithdrawLimit   int64  `json:"withdraw-limit"`
	TransferURL     string `json:"transfer-url"`     // empty: accept every payout locally
	TransferTimeout int64  `json:"transfer-timeout"` // seconds
	EventsBindAddr  string `json:"events-bind-addr"` // empty: no event publishing
}

func LoadConfig(folderPath string) (*Config, error) {

	file, err := os.OpenFile(folderPath+"/.cfg", os.O_RDONLY, 0755)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	var config *Config = &Config{}
	if err = json.Unmarshal(payload, config); err != nil {
		return nil, err
	}

	if err = config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.DBName == "" {
		return fmt.Errorf("A database name must be configured")
	}
	if c.AdminAddress == "" {
		return fmt.Errorf("An admin address must be configured")
	}
	if c.BankCap < 0 || c.WithdrawLimit < 0 {
		return fmt.Errorf("The bank cap and the withdraw limit must be >= 0")
	}
	return nil
}
