package log_service

// NopLogService discards all events. Used in tests.
type NopLogService struct{}

func NewNopLogService() *NopLogService { return &NopLogService{} }

func (*NopLogService) Debug(LogEvent) {}
func (*NopLogService) Info(LogEvent)  {}
func (*NopLogService) Warn(LogEvent)  {}
func (*NopLogService) Error(LogEvent) {}
