package hashlink

import (
	"errors"
	"strings"
	"testing"
)

func TestAttemptEncode(t *testing.T) {
	a := Attempt{
		Timestamp: 1706000000000,
		Strategy:  StrategyStandard,
		Padding:   0,
		Skip:      5,
		Outcome:   OutcomeFallthrough,
		Error:     "corrupt compressed stream",
		Err:       ErrCorruptStream,
	}
	data, err := a.encode()
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	if strings.Contains(line, "\n") {
		t.Error("encoded attempt spans lines")
	}
	for _, want := range []string{`"strategy":"standard"`, `"skip":5`, `"pad":0`, `"err":"corrupt compressed stream"`} {
		if !strings.Contains(line, want) {
			t.Errorf("encoded attempt %s missing %s", line, want)
		}
	}
	if strings.Contains(line, "label") {
		t.Errorf("empty version label serialised: %s", line)
	}

	back, err := decodeAttempt(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.Err != nil {
		t.Error("in-process error value survived serialisation")
	}
	if back.Skip != 5 || back.Outcome != OutcomeFallthrough {
		t.Errorf("decoded = %+v", back)
	}
}

func TestDecodeAttemptRejects(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"not json", `{"ts":1,`},
		{"header line", `{"_v":1,"_alg":1,"_ts":1}`},
		{"no outcome", `{"ts":1,"strategy":"legacy"}`},
		{"no strategy", `{"ts":1,"outcome":"success"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeAttempt([]byte(tt.line)); !errors.Is(err, ErrCorruptRecord) {
				t.Errorf("err = %v, want ErrCorruptRecord", err)
			}
		})
	}
}

func TestAttemptFailed(t *testing.T) {
	for outcome, failed := range map[string]bool{
		OutcomeSuccess:     false,
		OutcomeFallthrough: true,
		OutcomeTerminal:    true,
	} {
		if got := (Attempt{Outcome: outcome}).Failed(); got != failed {
			t.Errorf("Failed() for %s = %v, want %v", outcome, got, failed)
		}
	}
}
