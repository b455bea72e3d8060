package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS,required"`
	Environment   string `env:"ENVIRONMENT,required"`
	Database      DatabaseConfig
	Migration     MigrationConfig
	Workflow      WorkflowConfig
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST,required"`
	Port     int    `env:"DB_PORT,required"`
	User     string `env:"DB_USER,required"`
	Password string `env:"DB_PASSWORD,required"`
	Name     string `env:"DB_NAME,required"`
	Params   string `env:"DB_PARAMS,required"`
}

type MigrationConfig struct {
	Dir string `env:"MIGRATION_DIR"`
}

// WorkflowConfig carries the tunable policy knobs of the loan workflow and
// deduction engines.
type WorkflowConfig struct {
	RequiredQuorum         int     `env:"COMMITTEE_QUORUM"`
	MinMembershipMonths    int     `env:"MIN_MEMBERSHIP_MONTHS"`
	DefaultSavingsMultiple int     `env:"DEFAULT_SAVINGS_MULTIPLIER"`
	MaxDeductionPercent    float64 `env:"MAX_DEDUCTION_PERCENT"`
	GuarantorResponseDays  int     `env:"GUARANTOR_RESPONSE_DAYS"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("COMMITTEE_QUORUM", 3)
	viper.SetDefault("MIN_MEMBERSHIP_MONTHS", 6)
	viper.SetDefault("DEFAULT_SAVINGS_MULTIPLIER", 3)
	viper.SetDefault("MAX_DEDUCTION_PERCENT", 40.0)
	viper.SetDefault("GUARANTOR_RESPONSE_DAYS", 7)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := &Config{
		ServerAddress: viper.GetString("SERVER_ADDRESS"),
		Environment:   viper.GetString("ENVIRONMENT"),
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			Params:   viper.GetString("DB_PARAMS"),
		},
		Migration: MigrationConfig{
			Dir: viper.GetString("MIGRATION_DIR"),
		},
		Workflow: WorkflowConfig{
			RequiredQuorum:         viper.GetInt("COMMITTEE_QUORUM"),
			MinMembershipMonths:    viper.GetInt("MIN_MEMBERSHIP_MONTHS"),
			DefaultSavingsMultiple: viper.GetInt("DEFAULT_SAVINGS_MULTIPLIER"),
			MaxDeductionPercent:    viper.GetFloat64("MAX_DEDUCTION_PERCENT"),
			GuarantorResponseDays:  viper.GetInt("GUARANTOR_RESPONSE_DAYS"),
		},
	}

	return config, nil
}

// GetDSN returns the MySQL DSN string
func (c *Config) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.Params,
	)
}

// GetMigrationDBURL returns the database URL for migrations
func (c *Config) GetMigrationDBURL() string {
	return fmt.Sprintf("mysql://%s:%s@tcp(%s:%d)/%s?%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.Params,
	)
}
