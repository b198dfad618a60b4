package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dashdoc/webmanager/internal/model"
)

// Version is set at build time
var Version = "v0.3.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "webmanager",
	Short: "Webmanager - marketing website content and sales notes tooling",
	Long: `Webmanager is the internal console for the marketing website.

It groups translated pages of the headless CMS by language, joins them
with web analytics, and turns recorded post-sales notes into CRM fields.

Run 'webmanager serve' for the dashboard, or use the groups, pages and
notes commands from a terminal.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("webmanager " + Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.webmanager/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// secretEnv lists config keys that have no default and must still be
// reachable from the environment. Extra names are accepted as fallbacks.
var secretEnv = map[string][]string{
	"auth.username":              nil,
	"auth.password":              nil,
	"storyblok.management_token": {"STORYBLOK_API_KEY"},
	"storyblok.cdn_token":        nil,
	"plausible.api_key":          {"PLAUSIBLE_API_KEY"},
	"hubspot.api_key":            {"HUBSPOT_API_KEY"},
	"llm.api_key":                {"OPENAI_API_KEY"},
	"llm.base_url":               nil,
	"http.http_proxy":            nil,
	"http.https_proxy":           nil,
	"http.no_proxy":              nil,
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.webmanager")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// WEBMANAGER_STORYBLOK_SPACE_ID maps to storyblok.space_id
	viper.SetEnvPrefix("WEBMANAGER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := registerDefaults(model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}
	for key, fallbacks := range secretEnv {
		names := append([]string{"WEBMANAGER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, fallbacks...)
		_ = viper.BindEnv(append([]string{key}, names...)...)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every default key known to viper so that
// environment overrides apply during Unmarshal
func registerDefaults(cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	setDefaults("", tree)
	return nil
}

func setDefaults(prefix string, tree map[string]any) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			setDefaults(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

// loadConfig resolves the effective configuration and validates it
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
