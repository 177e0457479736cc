// Package config 提供 mediaflow 的配置管理功能。
//
// 配置从默认值出发，按 YAML 文件、环境变量的顺序逐层覆盖，
// 宿主进程通常只需要设置 MEDIAFLOW_PROVIDER_API_KEY。
package config
