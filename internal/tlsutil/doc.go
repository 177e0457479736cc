// Package tlsutil 提供集中式 TLS 配置，为访问推理队列与对象存储的
// HTTP 客户端提供安全加固设置（TLS 1.2+，仅 AEAD 密码套件）。
package tlsutil
