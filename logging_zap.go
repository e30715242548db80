package perdomain

import "go.uber.org/zap"

// ZapLogger logs events through zap: failures at warn level, everything
// else at debug level.
func ZapLogger(logger *zap.Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	named := logger.Named("perdomain")
	return LoggerFunc(func(event LogEvent) {
		fields := make([]zap.Field, 0, 5)
		fields = append(fields, zap.Duration("duration", event.Duration))
		if event.Origin != "" {
			fields = append(fields, zap.String("origin", event.Origin))
		}
		if event.Domain != "" {
			fields = append(fields, zap.String("domain", event.Domain))
		}
		if event.StorageName != "" {
			fields = append(fields, zap.String("storage_name", event.StorageName))
		}
		if event.Err != nil {
			named.Warn(event.Op, append(fields, zap.Error(event.Err))...)
			return
		}
		named.Debug(event.Op, fields...)
	})
}
