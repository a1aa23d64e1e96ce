package models

type Severity int

const (
	Info Severity = iota
	Success
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return "unknown"
}

type Notification struct {
	ID       string
	Text     string
	Severity Severity
}
