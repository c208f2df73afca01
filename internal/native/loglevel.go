package native

// LogLevel is the severity the engine attaches to log records it sends to
// the environment's callbacks.
type LogLevel int32

const (
	LogFatal   LogLevel = 0
	LogError   LogLevel = 1
	LogWarning LogLevel = 2
	LogInfo    LogLevel = 3
	LogDebug   LogLevel = 4
	LogTrace   LogLevel = 5
)

func (l LogLevel) String() string {
	switch l {
	case LogFatal:
		return "fatal"
	case LogError:
		return "error"
	case LogWarning:
		return "warning"
	case LogInfo:
		return "info"
	case LogDebug:
		return "debug"
	case LogTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// Document types accepted by CreateOptions_SetDocumentType.
const (
	DocumentTypeInvalid uint8 = 0
	DocumentTypeImage2d uint8 = 1
	DocumentTypeImage3d uint8 = 2
)
