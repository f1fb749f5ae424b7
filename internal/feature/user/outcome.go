package user

// Kind 每个操作的结果类型
type Kind int

const (
	KindOK Kind = iota
	KindNotFound
	KindInvalid
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindNotFound:
		return "not_found"
	case KindInvalid:
		return "invalid"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "unknown"
}

// Outcome 预期内的结果（包括失败）；非预期错误走 error 返回值
type Outcome struct {
	Kind    Kind
	Message string
	Data    any
}

func (o Outcome) Success() bool { return o.Kind == KindOK }

func Ok(data any, msg string) Outcome { return Outcome{Kind: KindOK, Message: msg, Data: data} }

func NotFound(msg string) Outcome { return Outcome{Kind: KindNotFound, Message: msg} }

func Invalid(reason string) Outcome { return Outcome{Kind: KindInvalid, Message: reason} }

func Unauthorized(reason string) Outcome { return Outcome{Kind: KindUnauthorized, Message: reason} }
