package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/michaelayoade/ontbridge/pkg/cli"
	"github.com/michaelayoade/ontbridge/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.ontbridge/settings.yaml.

Available settings:
  acs              - Default ACS server id for directory fallback
  redis_addr       - Record store address
  redis_db         - Record store database number
  request_timeout  - NBI round-trip bound in seconds
  search_timeout   - Directory fallback-search bound in seconds
  audit_log        - Audit log path

Examples:
  ontbridge settings show
  ontbridge settings set acs <server-id>
  ontbridge settings set redis_addr redis.lab:6379
  ontbridge settings clear`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		fmt.Printf("Settings file: %s\n\n", settings.DefaultSettingsPath())

		t := cli.NewTable("SETTING", "VALUE")

		printSetting := func(name, value string) {
			if value == "" {
				value = "(not set)"
			}
			t.Row(name, value)
		}

		printSetting("acs", s.DefaultAcsServerID)
		printSetting("redis_addr", s.RedisAddr)
		if s.RedisDB != 0 {
			t.Row("redis_db", strconv.Itoa(s.RedisDB))
		} else {
			t.Row("redis_db", "(not set)")
		}
		printSetting("request_timeout", secLabel(s.RequestTimeoutSec))
		printSetting("search_timeout", secLabel(s.SearchTimeoutSec))
		printSetting("audit_log", s.AuditLogPath)

		t.Flush()
		return nil
	},
}

func secLabel(sec int) string {
	if sec == 0 {
		return ""
	}
	return strconv.Itoa(sec) + "s"
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Set a setting value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		setting := args[0]
		value := args[1]

		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}

		switch setting {
		case "acs", "default_acs_server":
			s.SetDefaultACS(value)
			fmt.Printf("Default ACS server set to: %s\n", value)
		case "redis_addr":
			s.RedisAddr = value
			fmt.Printf("Record store address set to: %s\n", value)
		case "redis_db":
			db, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("redis_db must be a number: %q", value)
			}
			s.RedisDB = db
			fmt.Printf("Record store database set to: %d\n", db)
		case "request_timeout":
			sec, err := strconv.Atoi(value)
			if err != nil || sec <= 0 {
				return fmt.Errorf("request_timeout must be a positive number of seconds: %q", value)
			}
			s.RequestTimeoutSec = sec
			fmt.Printf("Request timeout set to: %ds\n", sec)
		case "search_timeout":
			sec, err := strconv.Atoi(value)
			if err != nil || sec <= 0 {
				return fmt.Errorf("search_timeout must be a positive number of seconds: %q", value)
			}
			s.SearchTimeoutSec = sec
			fmt.Printf("Search timeout set to: %ds\n", sec)
		case "audit_log":
			s.AuditLogPath = value
			fmt.Printf("Audit log path set to: %s\n", value)
		default:
			return fmt.Errorf("unknown setting: %s (valid: acs, redis_addr, redis_db, request_timeout, search_timeout, audit_log)", setting)
		}

		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <setting>",
	Short: "Get a setting value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		var value string
		switch args[0] {
		case "acs", "default_acs_server":
			value = s.DefaultAcsServerID
		case "redis_addr":
			value = s.RedisAddr
		case "redis_db":
			value = strconv.Itoa(s.RedisDB)
		case "request_timeout":
			value = secLabel(s.RequestTimeoutSec)
		case "search_timeout":
			value = secLabel(s.SearchTimeoutSec)
		case "audit_log":
			value = s.AuditLogPath
		default:
			return fmt.Errorf("unknown setting: %s (valid: acs, redis_addr, redis_db, request_timeout, search_timeout, audit_log)", args[0])
		}

		if value == "" {
			fmt.Println("(not set)")
		} else {
			fmt.Println(value)
		}
		return nil
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := &settings.Settings{}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Println("All settings cleared.")
		return nil
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show settings file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(settings.DefaultSettingsPath())
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsClearCmd)
	settingsCmd.AddCommand(settingsPathCmd)
}
