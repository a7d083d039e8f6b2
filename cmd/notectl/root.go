package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"
)

// Options carries the harness's flags and config-file settings.
type Options struct {
	SchemaPath string `mapstructure:"schema"`
	ScriptPath string `mapstructure:"script"`
	Pretty     bool   `mapstructure:"pretty"`
}

var vip *viper.Viper

// NewCommand builds the root cobra command, the way the teacher's
// app.NewCommand wires a single RunE around its own pipeline.
func NewCommand(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notectl",
		Short: "Drive the notectl document engine from a YAML schema and script",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			opts, err := NewOptions()
			if err != nil {
				return err
			}
			return Run(ctx, opts, cmd.OutOrStdout())
		},
	}

	Configure(cmd)
	klog.InitFlags(nil)

	version := newVersionCmd()
	cmd.AddCommand(version)

	return cmd
}

// Configure registers flags and loads an optional config file, mirroring
// the teacher's split of flag wiring from config-file resolution.
func Configure(cmd *cobra.Command) {
	vip = viper.New()
	configureFlags(cmd)
	configureConfigFile()
}

func configureFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("schema", "s", "", "Path to a YAML file describing the node/mark/inline registry.")
	_ = cmd.MarkFlagRequired("schema")
	_ = vip.BindPFlag("schema", cmd.Flags().Lookup("schema"))

	cmd.Flags().StringP("script", "f", "", "Path to a YAML file describing the initial document and the steps to run against it.")
	_ = cmd.MarkFlagRequired("script")
	_ = vip.BindPFlag("script", cmd.Flags().Lookup("script"))

	cmd.Flags().Bool("pretty", true, "Pretty-print the resulting document as indented JSON.")
	_ = vip.BindPFlag("pretty", cmd.Flags().Lookup("pretty"))
}

func configureConfigFile() {
	vip.AutomaticEnv()
	vip.SetEnvPrefix("notectl")
	cfgFile := os.Getenv("NOTECTL_CONFIG")
	if cfgFile == "" {
		return
	}
	vip.AddConfigPath(filepath.Dir(cfgFile))
	vip.SetConfigName(filepath.Base(cfgFile))
	vip.SetConfigType("yaml")
	if err := vip.ReadInConfig(); err != nil {
		klog.Warningf("non-fatal error loading configuration file %s: %v", cfgFile, err)
		return
	}
	klog.Infof("configuration file %s will be used", cfgFile)
}

// NewOptions builds an Options from bound flags and the optional config
// file, flags taking precedence.
func NewOptions() (*Options, error) {
	opts := &Options{}
	if err := vip.Unmarshal(opts); err != nil {
		return nil, err
	}
	return opts, nil
}
