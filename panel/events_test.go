package panel

import "testing"

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantOK   bool
		wantErr  bool
		wantType EventType
		wantText string
	}{
		{"user message", `{"type":"userMessage","text":"hello"}`, true, false, EventUserMessage, "hello"},
		{"bot response", `{"type":"botResponse","text":"hi"}`, true, false, EventBotResponse, "hi"},
		{"empty text", `{"type":"userMessage","text":""}`, true, false, EventUserMessage, ""},
		{"unknown tag", `{"type":"ping","text":"x"}`, false, false, "ping", "x"},
		{"missing tag", `{"text":"x"}`, false, false, "", "x"},
		{"invalid json", `{`, false, true, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok, err := DecodeEvent([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ev.Type != tt.wantType || ev.Text != tt.wantText {
				t.Errorf("got %+v, want type %q text %q", ev, tt.wantType, tt.wantText)
			}
		})
	}
}

func TestEventConstructors(t *testing.T) {
	if ev := UserMessage("a"); ev.Type != EventUserMessage || ev.Text != "a" || !ev.Known() {
		t.Errorf("unexpected user message event: %+v", ev)
	}
	if ev := BotResponse("b"); ev.Type != EventBotResponse || ev.Text != "b" || !ev.Known() {
		t.Errorf("unexpected bot response event: %+v", ev)
	}
	if (Event{Type: "other"}).Known() {
		t.Error("unknown tag reported as known")
	}
}
