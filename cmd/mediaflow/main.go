// =============================================================================
// mediaflow 主入口
// =============================================================================
// 目录与配置检查工具
//
// 使用方法:
//
//	mediaflow models                        # 列出目录中的模型
//	mediaflow schema fal-ai/flux/dev        # 打印模型的节点 schema
//	mediaflow config --config mf.yaml       # 加载并校验配置
//	mediaflow version                       # 显示版本信息
// =============================================================================
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/BaSui01/mediaflow/catalog"
	"github.com/BaSui01/mediaflow/config"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "models":
		runModels()
	case "schema":
		runSchema(os.Args[2:])
	case "config":
		runConfig(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// =============================================================================
// 📚 models / schema 命令
// =============================================================================

func runModels() {
	r := catalog.Default()
	for _, model := range r.List() {
		spec, _ := r.Get(model)
		fmt.Printf("%-50s %-8s %s\n", model, spec.Kind, spec.Name)
	}
}

func runSchema(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mediaflow schema <model>")
		os.Exit(1)
	}

	r := catalog.Default()
	spec, ok := r.Get(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown model: %s\n", args[0])
		os.Exit(1)
	}

	out, err := json.MarshalIndent(spec.SchemaDoc(), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// =============================================================================
// ⚙️ config 命令
// =============================================================================

func runConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config invalid: %v\n", err)
		os.Exit(1)
	}

	// 打印时脱敏密钥。
	sanitized := *cfg
	if sanitized.Provider.APIKey != "" {
		sanitized.Provider.APIKey = "***"
	}
	if sanitized.Cache.Redis.Password != "" {
		sanitized.Cache.Redis.Password = "***"
	}

	out, _ := json.MarshalIndent(sanitized, "", "  ")
	fmt.Println(string(out))
	fmt.Println("Config OK")
}

// =============================================================================
// 🔍 version / usage
// =============================================================================

func printVersion() {
	fmt.Printf("mediaflow %s (built %s, commit %s)\n", Version, BuildTime, GitCommit)
}

func printUsage() {
	fmt.Println(`mediaflow - hosted generative-media node adapters

Usage:
  mediaflow models                  List catalog models
  mediaflow schema <model>          Print a model's node schema as JSON
  mediaflow config [--config path]  Load and validate configuration
  mediaflow version                 Show version information`)
}
