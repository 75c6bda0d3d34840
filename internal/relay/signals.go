package relay

// Response is the success signal for one exchange.
type Response struct {
	Content   string `json:"content"`
	Chat      string `json:"chat"`
	Remaining int    `json:"remaining"`
}

// LimitReached is emitted when the daily quota denies admission.
type LimitReached struct {
	Title         string `json:"title"`
	Message       string `json:"message"`
	FormattedTime string `json:"formattedTime"`
}

// Failed is emitted for classified provider failures.
type Failed struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorSignal is the generic exchange failure after rollback.
type ErrorSignal struct {
	Message string `json:"message"`
}

// Emitter delivers exactly one outbound signal per exchange. The websocket
// layer implements it; tests capture signals with a fake.
type Emitter interface {
	EmitResponse(Response)
	EmitLimitReached(LimitReached)
	EmitFailed(Failed)
	EmitError(ErrorSignal)
}
