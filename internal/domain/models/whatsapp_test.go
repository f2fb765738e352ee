package models

import "testing"

func TestInboundMessageBody(t *testing.T) {
	text := InboundMessage{Text: &TextContent{Body: "/milk"}}
	button := InboundMessage{Interactive: &InteractiveContent{ButtonReply: &ButtonReply{ID: "/stock"}}}
	if text.Body() != "/milk" || button.Body() != "/stock" || (InboundMessage{}).Body() != "" {
		t.Errorf("bodies = %q %q", text.Body(), button.Body())
	}
}

func TestNormalizePhone(t *testing.T) {
	for in, want := range map[string]string{
		"+224 620-00-00-00": "224620000000",
		"224620000000":      "224620000000",
		"  ":                "",
	} {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}
