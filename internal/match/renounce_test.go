package match

import "testing"

func TestRenounces(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"verb", "I renounce all raccoon treaties", true},
		{"past tense verb", "I have abandoned every pact with the raccoons.", true},
		{"negation near agreement", "I have no raccoon treaties", true},
		{"negation after agreement", "raccoon deals? none whatsoever", true},
		{"trash panda synonym", "I hereby tear up my trash panda alliance", true},
		{"missing category", "I renounce all treaties", false},
		{"missing agreement", "I renounce raccoons", false},
		{"no verb and negation too far", "no, I think that raccoons are cute and I like their treaties", false},
		{"contradiction intention", "I have no intention to renounce my raccoon treaty", false},
		{"contradiction beats verb", "I renounce nothing, I won't break my raccoon pact", false},
		{"contradiction keep", "I am keeping all raccoon treaties, renounce them? never", false},
		{"refuse", "I refuse to abandon the raccoon accord", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Renounces(tt.in); got != tt.want {
				t.Errorf("Renounces(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
