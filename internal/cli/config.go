package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/mailprune/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display effective configuration",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file already exists at %s\n", configPath)
		fmt.Println("Use 'mailprune config show' to view current configuration")
		return nil
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Create an OAuth client (Desktop app) in Google Cloud Console")
	fmt.Printf("  2. Save its credentials.json to %s/\n", configDir)
	fmt.Println("  3. Run 'mailprune check' to authenticate")
	fmt.Println("  4. Run 'mailprune preview' before the first 'mailprune run'")

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}

	data, err := cfg.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("# No config file at %s, showing defaults\n\n", configPath)
	} else {
		fmt.Printf("# Config file: %s\n\n", configPath)
	}
	fmt.Println(string(data))
	return nil
}

const defaultConfig = `# mailprune configuration

[gmail]
credentials_path = "~/.config/mailprune/credentials.json"
token_path = "~/.config/mailprune/token.json"
requests_per_second = 10  # API calls per second (0 = unthrottled)
burst = 5

[run]
batch_size = 100           # conversations per page (max 500)
inter_batch_delay = "1s"   # pause after a full page; also the backoff base
safety_limit = 5000        # stop after this many per run (0 = unbounded)
max_retries = 3            # consecutive failures tolerated
older_than_years = 2
older_than_days = 0        # added to older_than_years
keep_starred = true
keep_important = false
extra_query = ""           # extra Gmail search operators, e.g. "-label:keep"

[log]
quiet = false              # hide INFO lines
`
