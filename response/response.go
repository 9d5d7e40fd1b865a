package response

// Response is the envelope for error bodies and endpoints without a
// dedicated payload type.
type Response struct {
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}
