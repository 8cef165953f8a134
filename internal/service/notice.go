package service

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notice 操作结果提示（前端的 snackbar）
type Notice struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func Success(msg string) Notice { return Notice{Message: msg, Severity: SeveritySuccess} }
func Failure(msg string) Notice { return Notice{Message: msg, Severity: SeverityError} }

func (n Notice) IsError() bool { return n.Severity == SeverityError }
