// cmd/tools/client-generator/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"defect-reporter/internal/codegen"
	"defect-reporter/internal/common/config"
	"defect-reporter/internal/common/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CODEGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "client-generator",
		Short:         "Generate C# service clients from schema descriptions",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("log-level", "info", "log level")
	root.PersistentFlags().String("config", "", "service config file whose codegen section supplies defaults")
	_ = v.BindPFlag("log-level", root.PersistentFlags().Lookup("log-level"))
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			return nil
		}
		return applyConfigDefaults(v, path)
	}

	generate := &cobra.Command{
		Use:   "generate <description.json|yaml>",
		Short: "Render a client file from a description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(v, args[0], cmd.OutOrStdout())
		},
	}
	generate.Flags().String("output-dir", "generated", "directory for the generated file")
	generate.Flags().String("namespace", "", "override the description namespace")
	generate.Flags().String("resource-group", "", "override the description resource group")
	generate.Flags().Bool("stdout", false, "print to stdout instead of writing a file")
	for _, name := range []string{"output-dir", "namespace", "resource-group", "stdout"} {
		_ = v.BindPFlag(name, generate.Flags().Lookup(name))
	}

	validate := &cobra.Command{
		Use:   "validate <description.json|yaml>...",
		Short: "Check descriptions without rendering",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args, cmd.OutOrStdout())
		},
	}

	root.AddCommand(generate, validate)
	return root
}

// applyConfigDefaults reads the codegen section of a service config file.
// Flags and CODEGEN_* variables still take precedence.
func applyConfigDefaults(v *viper.Viper, path string) error {
	fv := viper.New()
	fv.SetConfigFile(path)
	if err := fv.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var cfg config.CodegenConfig
	if err := fv.UnmarshalKey("codegen", &cfg); err != nil {
		return fmt.Errorf("failed to decode codegen config: %w", err)
	}
	if cfg.OutputDir != "" {
		v.SetDefault("output-dir", cfg.OutputDir)
	}
	if cfg.Namespace != "" {
		v.SetDefault("namespace", cfg.Namespace)
	}
	if cfg.ResourceGroup != "" {
		v.SetDefault("resource-group", cfg.ResourceGroup)
	}
	return nil
}

func runGenerate(v *viper.Viper, path string, stdout io.Writer) error {
	log := logger.NewStructured(v.GetString("log-level"), "console")

	desc, err := codegen.LoadDescription(path)
	if err != nil {
		return err
	}
	if ns := v.GetString("namespace"); ns != "" {
		desc.Namespace = ns
	}
	if rg := v.GetString("resource-group"); rg != "" {
		desc.ResourceGroup = rg
	}

	emitter, err := codegen.NewEmitter(log)
	if err != nil {
		return err
	}
	out, err := emitter.Render(desc)
	if err != nil {
		return err
	}

	if v.GetBool("stdout") {
		_, err = stdout.Write(out)
		return err
	}

	target := filepath.Join(v.GetString("output-dir"), codegen.FileName(desc))
	if err := codegen.WriteFile(target, out); err != nil {
		return err
	}
	log.Info("client generated", map[string]interface{}{"file": target, "source": path})
	return nil
}

func runValidate(paths []string, stdout io.Writer) error {
	failed := 0
	for _, path := range paths {
		desc, err := codegen.LoadDescription(path)
		if err == nil {
			err = codegen.ValidateDescription(desc)
		}
		if err != nil {
			failed++
			fmt.Fprintf(stdout, "ERROR in %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(stdout, "OK: %s\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d descriptions invalid", failed, len(paths))
	}
	return nil
}
