package models

// Message types of the voice websocket.
const (
	MsgSystem    = "SYSTEM"
	MsgSTTResult = "STT_RESULT"
	MsgAskAgain  = "ASK_AGAIN"
	MsgComplete  = "COMPLETE"
	MsgError     = "ERROR"
)

type SystemMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type STTResultMessage struct {
	Type          string  `json:"type"`
	Attempt       int     `json:"attempt"`
	Transcript    string  `json:"transcript"`
	STTConfidence float64 `json:"stt_confidence"`
}

type AskAgainMessage struct {
	Type       string   `json:"type"`
	Prompt     string   `json:"prompt"`
	Missing    []string `json:"missing"`
	Confidence float64  `json:"confidence"`
}

type CompleteMessage struct {
	Type       string            `json:"type"`
	Message    string            `json:"message"`
	Confidence float64           `json:"confidence"`
	Partial    bool              `json:"partial"`
	Missing    []string          `json:"missing"`
	Fields     map[string]string `json:"fields"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
