package config

import _ "embed"

// DefaultConfigYAML 内置默认配置，编译进二进制，外部配置文件可覆盖
//
//go:embed default.yaml
var DefaultConfigYAML []byte
