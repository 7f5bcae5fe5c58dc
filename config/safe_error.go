package config

// SafeErrorMessage 根据运行模式决定返回的错误信息
// release 模式下返回 fallback，避免向客户端暴露内部错误详情；
// debug/测试环境返回原始错误，便于排查问题
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	return err.Error()
}
