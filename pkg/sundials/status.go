package sundials

// Status is the three-valued result a callback returns to native code.
type Status int

const (
	StatusSuccess       Status = 0
	StatusRecoverable   Status = 1
	StatusUnrecoverable Status = -1
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRecoverable:
		return "recoverable"
	case StatusUnrecoverable:
		return "unrecoverable"
	}
	return "unknown"
}

// Recoverability says whether a callback slot lets the solver retry after a
// recoverable failure.
type Recoverability bool

const (
	NoRetry  Recoverability = false
	MayRetry Recoverability = true
)

// CallbackKind names a native callback slot.
type CallbackKind int

const (
	KindRHS CallbackKind = iota
	KindRoots
	KindJac
	KindPrecSetup
	KindPrecSolve
	KindProj
	KindMonitor
	KindSys
	KindErrHandler
	KindInfoHandler
)

var kindNames = [...]string{
	KindRHS:         "rhs",
	KindRoots:       "roots",
	KindJac:         "jac",
	KindPrecSetup:   "precsetup",
	KindPrecSolve:   "precsolve",
	KindProj:        "proj",
	KindMonitor:     "monitor",
	KindSys:         "sys",
	KindErrHandler:  "errh",
	KindInfoHandler: "infoh",
}

func (k CallbackKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Recoverability reports whether the solver retries after a recoverable
// failure in this slot. Root functions, monitors and the report handlers
// never retry.
func (k CallbackKind) Recoverability() Recoverability {
	switch k {
	case KindRHS, KindJac, KindPrecSetup, KindPrecSolve, KindProj, KindSys:
		return MayRetry
	}
	return NoRetry
}
