package logger

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldUserID     = "user_id"
	FieldBackend    = "backend"
)

const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentAuth    = "auth"
	ComponentLedger  = "transactions"
	ComponentStorage = "storage"
)

const (
	OpCreate    = "create"
	OpRead      = "read"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpList      = "list"
	OpSummary   = "summary"
	OpBreakdown = "breakdown"
	OpRegister  = "register"
	OpLogin     = "login"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)

// Fields provides a builder pattern for structured log fields
type Fields map[string]any

func NewFields() Fields {
	return make(Fields)
}

func (f Fields) WithOperation(op string) Fields {
	f[FieldOperation] = op
	return f
}

func (f Fields) WithUserID(id string) Fields {
	if id != "" {
		f[FieldUserID] = id
	}
	return f
}

// WithError adds the error text; a nil error adds nothing.
func (f Fields) WithError(err error) Fields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// Args converts Fields to alternating key/value arguments for slog.
func (f Fields) Args() []any {
	args := make([]any, 0, len(f)*2)
	for k, v := range f {
		args = append(args, k, v)
	}
	return args
}
